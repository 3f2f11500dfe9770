// Package report renders the aggregated sponsor views, either as an HTML page
// or as a terminal table.
package report

import (
	"bytes"
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"confdata/internal/aggregate"
	"confdata/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	DefaultOutput      = "public/sponsors.html"
	DefaultTitle       = "Conference sponsors"
	DefaultDescription = "Sponsors of past conference editions, summed over every year on record."
)

//go:embed templates/sponsors.html.tmpl
var templates embed.FS

// Context is everything substituted into the report template.
type Context struct {
	Title        string
	Description  string
	Sponsors     []aggregate.Row
	Grouped      []aggregate.Group
	SimilarNames []aggregate.NamePair
}

var funcs = template.FuncMap{
	"value": formatValue,
	"years": formatYears,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

func formatValue(v sql.NullInt64) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the template at templatePath, or the built-in sponsor
// template when templatePath is empty.
func NewRenderer(templatePath string) (Renderer, error) {
	var (
		tmpl *template.Template
		err  error
	)
	if templatePath == "" {
		tmpl, err = template.New("sponsors.html.tmpl").Funcs(funcs).ParseFS(templates, "templates/sponsors.html.tmpl")
	} else {
		tmpl, err = template.New(filepath.Base(templatePath)).Funcs(funcs).ParseFiles(templatePath)
	}
	if err != nil {
		return Renderer{}, fmt.Errorf("parse template: %w", err)
	}
	return Renderer{tmpl: tmpl}, nil
}

func (r Renderer) Render(w io.Writer, ctx Context) error {
	if ctx.Title == "" {
		ctx.Title = DefaultTitle
	}
	if ctx.Description == "" {
		ctx.Description = DefaultDescription
	}
	return r.tmpl.Execute(w, ctx)
}

// RenderBytes renders the whole page into memory.
func (r Renderer) RenderBytes(ctx Context) ([]byte, error) {
	var buf bytes.Buffer
	err := r.Render(&buf, ctx)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders into path, creating parent directories. Nothing is
// written when rendering fails.
func (r Renderer) WriteFile(path string, ctx Context) error {
	contents, err := r.RenderBytes(ctx)
	if err != nil {
		return err
	}
	return store.WriteAtomic(path, contents)
}

// PrintTable writes the grouped view as a leaderboard.
func PrintTable(w io.Writer, groups []aggregate.Group) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Sponsor", "Total", "Sponsorships", "Years"})
	for i, g := range groups {
		t.AppendRow(table.Row{i + 1, g.Name, formatValue(g.Total), g.Rows, formatYears(g.Years)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
