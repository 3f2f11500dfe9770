package pyconit

import (
	"errors"
	"time"

	"confdata/lib/restyutil"
	"confdata/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("platforms/pyconit")

const DefaultEndpoint = "https://pycon.it/graphql"

// ConferenceName is the directory PyCon Italia documents are stored under.
const ConferenceName = "PyConItalia"

var ErrConferenceNotFound = errors.New("conference not found")

type Client struct {
	http     *resty.Client
	endpoint string
}

type ClientOptions struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
	Timeout  time.Duration
	Output   restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := resty.New()
	client.SetHeader("accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	telemetry.InstrumentResty(client, "platform/pyconit/http")
	restyutil.InstrumentClient(client, opts.Output)

	return &Client{http: client, endpoint: endpoint}
}
