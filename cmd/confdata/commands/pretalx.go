package commands

import (
	"fmt"
	"log/slog"
	"os"

	"confdata/internal/pipeline"
	"confdata/lib/platforms/pretalx"

	"github.com/spf13/cobra"
)

var pretalxFlags struct {
	url        string
	token      string
	output     string
	conference string
	year       int
	missing    string
}

var pretalxCmd = &cobra.Command{
	Use:   "pretalx --url <event-api-url> [--output <path.json>]",
	Short: "Fetches the confirmed speakers of a pretalx event.",
	Long: "Fetches the confirmed speakers of a pretalx event.\n\n" +
		"Without --output the document is written to <data_dir>/speakers/<conference>/<year>.json " +
		"when --conference is given, and printed to stdout otherwise.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Pretalx
		if pretalxFlags.url != "" {
			cfg.Url = pretalxFlags.url
		}
		if pretalxFlags.token != "" {
			cfg.Token = pretalxFlags.token
		}
		if pretalxFlags.missing != "" {
			cfg.MissingSpeaker = pretalxFlags.missing
		}

		policy, err := pretalx.ParseMissingSpeakerPolicy(cfg.MissingSpeaker)
		if err != nil {
			return err
		}
		output, err := config.httpOutput(verbose, "pretalx")
		if err != nil {
			return fmt.Errorf("http dump dir: %w", err)
		}

		client, err := pretalx.NewClient(pretalx.ClientOptions{
			BaseUrl:          cfg.Url,
			Token:            cfg.Token,
			Timeout:          config.httpTimeout(),
			CloudflareBypass: cfg.CloudflareBypass,
			Output:           output,
		})
		if err != nil {
			return err
		}

		res, err := pipeline.RunPretalx(cmd.Context(), pipeline.PretalxOptions{
			Client: client,
			Policy: policy,
			Year:   pretalxFlags.year,
			Output: pipeline.Output{
				Path:       pretalxFlags.output,
				DataDir:    config.DataDir,
				Conference: pretalxFlags.conference,
				Stdout:     os.Stdout,
			},
			Metrics: metrics,
		})
		if err != nil {
			return fmt.Errorf("pretalx: %w", err)
		}
		slog.InfoContext(cmd.Context(), "pretalx speakers done", "year", res.Year, "speakers", res.Records, "path", res.Path)
		return nil
	},
}

func init() {
	flags := pretalxCmd.Flags()
	flags.StringVar(&pretalxFlags.url, "url", "", "The event API base url, e.g. https://pretalx.com/api/events/<slug>.")
	flags.StringVar(&pretalxFlags.token, "token", "", "An API token, only needed for private events.")
	flags.StringVarP(&pretalxFlags.output, "output", "o", "", "The .json file to write.")
	flags.StringVar(&pretalxFlags.conference, "conference", "", "The conference directory name used for the default output path.")
	flags.IntVar(&pretalxFlags.year, "year", 0, "Overrides the year taken from the event start date.")
	flags.StringVar(&pretalxFlags.missing, "missing-speaker", "", "What to do with unknown speaker codes: fail, skip or placeholder.")
	rootCmd.AddCommand(pretalxCmd)
}
