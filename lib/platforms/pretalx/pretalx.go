package pretalx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"confdata/lib/restyutil"
	"confdata/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("platforms/pretalx")

var ErrPaginationLoop = errors.New("pagination revisited a page")

type Client struct {
	http  *resty.Client
	pages int
}

type ClientOptions struct {
	// BaseUrl is the event API root, e.g. https://pretalx.com/api/events/<slug>
	BaseUrl string
	// Token is only required for private events.
	Token            string
	Timeout          time.Duration
	CloudflareBypass bool
	// Output receives a dump of every HTTP exchange when set.
	Output restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		return nil, fmt.Errorf("pretalx: event api url is empty")
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.BaseUrl, "/"))
	client.SetHeader("accept", "application/json")
	if opts.Token != "" {
		client.SetHeader("Authorization", authorization(opts.Token))
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	telemetry.InstrumentResty(client, "platform/pretalx/http")
	restyutil.InstrumentClient(client, opts.Output)

	return &Client{http: client}, nil
}

// pretalx expects "Token <token>", a value that already carries a scheme is
// sent as is.
func authorization(token string) string {
	if strings.Contains(token, " ") {
		return token
	}
	return "Token " + token
}

// PagesFetched is the number of result pages retrieved so far.
func (c *Client) PagesFetched() int {
	return c.pages
}

type page[T any] struct {
	Results []T     `json:"results"`
	Next    *string `json:"next"`
}

// paginate follows the `next` cursor starting at path until the API stops
// returning one, results are concatenated in page order.
func paginate[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("paginate:%s", path))
	defer span.End()

	var out []T
	visited := map[string]struct{}{}
	next := path

	for next != "" {
		if _, seen := visited[next]; seen {
			span.SetStatus(codes.Error, "pagination loop")
			return nil, fmt.Errorf("%w: %s", ErrPaginationLoop, next)
		}
		visited[next] = struct{}{}

		res, err := c.http.R().
			SetContext(ctx).
			Get(next)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch")
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		if err := restyutil.CheckStatus(res); err != nil {
			span.SetStatus(codes.Error, "unexpected status")
			return nil, err
		}

		var p page[T]
		err = json.Unmarshal(res.Body(), &p)
		if err != nil {
			span.SetStatus(codes.Error, "failed to parse json response")
			return nil, fmt.Errorf("decode %s: %w", res.Request.URL, err)
		}
		c.pages++

		out = append(out, p.Results...)
		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}

	span.SetAttributes(
		attribute.Int("custom.pages", len(visited)),
		attribute.Int("custom.results", len(out)),
	)
	return out, nil
}
