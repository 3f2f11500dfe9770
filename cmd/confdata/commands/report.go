package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"confdata/internal/pipeline"
	"confdata/internal/store"

	"github.com/spf13/cobra"
)

var reportFlags struct {
	data     string
	out      string
	template string
	print    bool
	db       string
}

var reportCmd = &cobra.Command{
	Use:   "report [--data <dir>] [--out <file.html>]",
	Short: "Renders the sponsor report from every stored sponsor document.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Report
		data := reportFlags.data
		if data == "" {
			data = filepath.Join(config.DataDir, store.KindSponsors)
		}
		if reportFlags.out != "" {
			cfg.Out = reportFlags.out
		}
		if reportFlags.template != "" {
			cfg.Template = reportFlags.template
		}
		archiveCfg := config.Archive
		if reportFlags.db != "" {
			archiveCfg.File = reportFlags.db
			archiveCfg.Url = ""
		}
		var table io.Writer
		if reportFlags.print {
			table = os.Stdout
		}

		_, err := pipeline.RunReport(cmd.Context(), pipeline.ReportOptions{
			DataDir:             data,
			Out:                 cfg.Out,
			TemplatePath:        cfg.Template,
			Title:               cfg.Title,
			Description:         cfg.Description,
			SimilarityThreshold: cfg.SimilarityThreshold,
			Table:               table,
			Archive:             archiveCfg,
			Metrics:             metrics,
		})
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		return nil
	},
}

func init() {
	flags := reportCmd.Flags()
	flags.StringVar(&reportFlags.data, "data", "", "The sponsor documents root, defaults to <data_dir>/sponsors.")
	flags.StringVar(&reportFlags.out, "out", "", "The HTML file to write.")
	flags.StringVar(&reportFlags.template, "template", "", "A html/template file used instead of the built-in one.")
	flags.BoolVar(&reportFlags.print, "print", false, "Also print the grouped sponsors as a table.")
	flags.StringVar(&reportFlags.db, "db", "", "A SQLite file to export the flat sponsor table to.")
	rootCmd.AddCommand(reportCmd)
}
