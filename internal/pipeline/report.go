package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"confdata/internal/aggregate"
	"confdata/internal/archive"
	"confdata/internal/report"
	"confdata/internal/runmetrics"
	"confdata/internal/store"
)

type ReportOptions struct {
	DataDir      string
	Out          string
	TemplatePath string
	Title        string
	Description  string
	// SimilarityThreshold <= 0 uses aggregate.DefaultSimilarityThreshold.
	SimilarityThreshold float64
	// Table receives the grouped leaderboard when set.
	Table   io.Writer
	Archive archive.Config
	Metrics *runmetrics.Recorder
	Now     func() time.Time
}

type ReportResult struct {
	Documents int
	Rows      int
	Groups    int
}

// RunReport rescans every sponsor document under DataDir and renders the
// flat and grouped views.
func RunReport(ctx context.Context, opts ReportOptions) (ReportResult, error) {
	renderer, err := report.NewRenderer(opts.TemplatePath)
	if err != nil {
		return ReportResult{}, err
	}

	docs, err := store.LoadSponsorDocuments(opts.DataDir)
	if err != nil {
		return ReportResult{}, err
	}
	rows := aggregate.Flatten(docs)
	groups := aggregate.GroupByName(rows)
	similar := aggregate.SimilarNames(groups, opts.SimilarityThreshold)
	for _, pair := range similar {
		slog.DebugContext(ctx, "similar sponsor names", "left", pair.Left, "right", pair.Right, "similarity", pair.Similarity)
	}

	out := opts.Out
	if out == "" {
		out = report.DefaultOutput
	}
	contents, err := renderer.RenderBytes(report.Context{
		Title:        opts.Title,
		Description:  opts.Description,
		Sponsors:     rows,
		Grouped:      groups,
		SimilarNames: similar,
	})
	if err != nil {
		return ReportResult{}, fmt.Errorf("render %s: %w", out, err)
	}

	// the page is only replaced once every other output succeeded
	if opts.Archive.Enabled() {
		err = exportArchive(ctx, opts.Archive, rows)
		if err != nil {
			return ReportResult{}, err
		}
	}

	err = store.WriteAtomic(out, contents)
	if err != nil {
		return ReportResult{}, fmt.Errorf("write %s: %w", out, err)
	}
	slog.InfoContext(ctx, "wrote sponsor report", "path", out, "documents", len(docs), "sponsors", len(groups))

	if opts.Table != nil {
		report.PrintTable(opts.Table, groups)
	}

	if opts.Metrics != nil {
		opts.Metrics.RecordsEmitted("sponsor_rows", len(rows))
		opts.Metrics.DocumentWritten()
	}
	succeeded(opts.Metrics, opts.Now)

	return ReportResult{Documents: len(docs), Rows: len(rows), Groups: len(groups)}, nil
}

func exportArchive(ctx context.Context, cfg archive.Config, rows []aggregate.Row) error {
	db, err := cfg.OpenDB()
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	err = archive.Export(ctx, db, rows)
	if err != nil {
		return fmt.Errorf("export archive: %w", err)
	}
	slog.InfoContext(ctx, "exported sponsor rows", "rows", len(rows))
	return nil
}
