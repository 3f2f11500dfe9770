package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"confdata/internal/records"
	"confdata/internal/runmetrics"
	"confdata/internal/store"
	"confdata/lib/platforms/pretalx"
)

type PretalxOptions struct {
	Client *pretalx.Client
	Policy pretalx.MissingSpeakerPolicy
	// Year overrides the year derived from the event start date when > 0.
	Year    int
	Output  Output
	Metrics *runmetrics.Recorder
	Now     func() time.Time
}

// RunPretalx fetches every confirmed (submission, speaker) pair of one event
// and stores them as a speakers document.
func RunPretalx(ctx context.Context, opts PretalxOptions) (Result, error) {
	err := opts.Output.Validate()
	if err != nil {
		return Result{}, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	year := opts.Year
	if year <= 0 {
		year, err = eventYear(ctx, opts.Client, now)
		if err != nil {
			return Result{}, err
		}
	}

	catalog, err := opts.Client.FetchCatalog(ctx)
	if opts.Metrics != nil {
		opts.Metrics.PagesFetched("pretalx", opts.Client.PagesFetched())
	}
	if err != nil {
		return Result{}, err
	}
	slog.DebugContext(ctx, "fetched pretalx catalog",
		"types", len(catalog.Types),
		"speakers", len(catalog.Speakers),
		"submissions", len(catalog.Submissions),
	)

	speakers, err := pretalx.Normalize(ctx, catalog, opts.Policy)
	if err != nil {
		return Result{}, err
	}
	if speakers == nil {
		speakers = []records.Speaker{}
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordsEmitted(store.KindSpeakers, len(speakers))
	}

	doc := records.SpeakerDocument{Year: year, Speakers: speakers}
	path, err := persist(ctx, opts.Output, store.KindSpeakers, year, doc, opts.Metrics)
	if err != nil {
		return Result{}, err
	}
	succeeded(opts.Metrics, now)

	return Result{Path: path, Year: year, Records: len(speakers)}, nil
}

func eventYear(ctx context.Context, client *pretalx.Client, now func() time.Time) (int, error) {
	event, err := client.Event(ctx)
	if err != nil {
		return 0, fmt.Errorf("event: %w", err)
	}
	if event.DateFrom == "" {
		year := now().Year()
		slog.WarnContext(ctx, "event has no start date, falling back to the current year", "year", year)
		return year, nil
	}
	return records.YearFromStart(event.DateFrom)
}
