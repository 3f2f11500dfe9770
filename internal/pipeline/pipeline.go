// Package pipeline wires the platform clients, normalizers and the store into
// the runs exposed on the command line.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"confdata/internal/runmetrics"
	"confdata/internal/store"
)

// Output decides where a document goes. Path wins, then the default path
// under DataDir when Conference is known, then Stdout.
type Output struct {
	Path       string
	DataDir    string
	Conference string
	Stdout     io.Writer
}

// Validate checks an explicit output path before any fetch happens.
func (o Output) Validate() error {
	if o.Path == "" {
		return nil
	}
	return store.ValidateOutputPath(o.Path)
}

func (o Output) resolve(kind string, year int) string {
	if o.Path != "" {
		return o.Path
	}
	if o.Conference != "" {
		return store.DefaultPath(o.DataDir, kind, o.Conference, year)
	}
	return ""
}

// Result describes a finished fetch run. Path is empty when the document was
// printed instead of written.
type Result struct {
	Path    string
	Year    int
	Records int
}

func persist(ctx context.Context, out Output, kind string, year int, doc any, metrics *runmetrics.Recorder) (string, error) {
	path := out.resolve(kind, year)
	if path == "" {
		if out.Stdout == nil {
			return "", fmt.Errorf("no output path and no conference given")
		}
		contents, err := store.Encode(doc)
		if err != nil {
			return "", err
		}
		_, err = out.Stdout.Write(contents)
		return "", err
	}

	err := store.WriteDocument(path, doc)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if metrics != nil {
		metrics.DocumentWritten()
	}
	slog.InfoContext(ctx, "wrote document", "kind", kind, "year", year, "path", path)
	return path, nil
}

func succeeded(metrics *runmetrics.Recorder, now func() time.Time) {
	if metrics == nil {
		return
	}
	if now == nil {
		now = time.Now
	}
	metrics.Succeeded(now())
}
