package pipeline

import (
	"context"
	"time"

	"confdata/internal/runmetrics"
	"confdata/internal/store"
	"confdata/lib/platforms/pyconit"
)

type PyConItOptions struct {
	Client         *pyconit.Client
	ConferenceCode string
	Output         Output
	Metrics        *runmetrics.Recorder
	Now            func() time.Time
}

func (opts PyConItOptions) output() Output {
	out := opts.Output
	if out.Conference == "" {
		out.Conference = pyconit.ConferenceName
	}
	return out
}

// RunPyConItSponsors stores the sponsors and tier prices of one edition.
func RunPyConItSponsors(ctx context.Context, opts PyConItOptions) (Result, error) {
	out := opts.output()
	err := out.Validate()
	if err != nil {
		return Result{}, err
	}

	conf, err := opts.Client.GetSponsors(ctx, opts.ConferenceCode)
	if err != nil {
		return Result{}, err
	}
	if opts.Metrics != nil {
		opts.Metrics.PagesFetched("pyconit", 1)
	}

	doc, err := pyconit.NormalizeSponsors(ctx, conf)
	if err != nil {
		return Result{}, err
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordsEmitted(store.KindSponsors, len(doc.Sponsors))
	}

	path, err := persist(ctx, out, store.KindSponsors, doc.Year, doc, opts.Metrics)
	if err != nil {
		return Result{}, err
	}
	succeeded(opts.Metrics, opts.Now)

	return Result{Path: path, Year: doc.Year, Records: len(doc.Sponsors)}, nil
}

// RunPyConItSpeakers stores every training, talk and keynote speaker of one
// edition.
func RunPyConItSpeakers(ctx context.Context, opts PyConItOptions) (Result, error) {
	out := opts.output()
	err := out.Validate()
	if err != nil {
		return Result{}, err
	}

	conf, err := opts.Client.GetSchedule(ctx, opts.ConferenceCode)
	if err != nil {
		return Result{}, err
	}
	if opts.Metrics != nil {
		opts.Metrics.PagesFetched("pyconit", 1)
	}

	doc, err := pyconit.NormalizeSpeakers(ctx, conf)
	if err != nil {
		return Result{}, err
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordsEmitted(store.KindSpeakers, len(doc.Speakers))
	}

	path, err := persist(ctx, out, store.KindSpeakers, doc.Year, doc, opts.Metrics)
	if err != nil {
		return Result{}, err
	}
	succeeded(opts.Metrics, opts.Now)

	return Result{Path: path, Year: doc.Year, Records: len(doc.Speakers)}, nil
}
