package pretalx

import (
	"context"
	"fmt"

	"confdata/lib/restyutil"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/codes"
)

func (c *Client) SubmissionTypes(ctx context.Context) (map[int64]string, error) {
	ctx, span := tracer.Start(ctx, "client:SubmissionTypes")
	defer span.End()

	types, err := paginate[SubmissionType](ctx, c, "/submission-types/")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make(map[int64]string, len(types))
	for _, t := range types {
		if _, exists := out[t.ID]; exists {
			continue
		}
		out[t.ID] = string(t.Name)
	}
	return out, nil
}

// Speakers returns speaker code -> full name.
func (c *Client) Speakers(ctx context.Context) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:Speakers")
	defer span.End()

	speakers, err := paginate[Speaker](ctx, c, "/speakers/")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make(map[string]string, len(speakers))
	for _, s := range speakers {
		if _, exists := out[s.Code]; exists {
			continue
		}
		out[s.Code] = s.Name
	}
	return out, nil
}

func (c *Client) Submissions(ctx context.Context) ([]Submission, error) {
	ctx, span := tracer.Start(ctx, "client:Submissions")
	defer span.End()

	submissions, err := paginate[Submission](ctx, c, "/submissions/")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return submissions, nil
}

// Event fetches the event root, which carries the conference dates.
func (c *Client) Event(ctx context.Context) (Event, error) {
	ctx, span := tracer.Start(ctx, "client:Event")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch")
		return Event{}, fmt.Errorf("fetch event: %w", err)
	}
	if err := restyutil.CheckStatus(res); err != nil {
		span.SetStatus(codes.Error, "unexpected status")
		return Event{}, err
	}

	var event Event
	err = json.Unmarshal(res.Body(), &event)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse json response")
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

// Catalog is everything the speaker normalization needs from one event.
type Catalog struct {
	Types       map[int64]string
	Speakers    map[string]string
	Submissions []Submission
}

// FetchCatalog retrieves submission types, speakers and submissions, in
// that order.
func (c *Client) FetchCatalog(ctx context.Context) (Catalog, error) {
	types, err := c.SubmissionTypes(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("submission types: %w", err)
	}
	speakers, err := c.Speakers(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("speakers: %w", err)
	}
	submissions, err := c.Submissions(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("submissions: %w", err)
	}
	return Catalog{
		Types:       types,
		Speakers:    speakers,
		Submissions: submissions,
	}, nil
}
