package commands

import (
	"fmt"
	"log/slog"

	"confdata/internal/pipeline"
	"confdata/lib/platforms/pyconit"

	"github.com/spf13/cobra"
)

var pyconitFlags struct {
	code   string
	output string
}

var pyconitCmd = &cobra.Command{
	Use:   "pyconit",
	Short: "Fetches data from the PyCon Italia GraphQL API.",
}

func pyconitOptions() (pipeline.PyConItOptions, error) {
	output, err := config.httpOutput(verbose, "pyconit")
	if err != nil {
		return pipeline.PyConItOptions{}, fmt.Errorf("http dump dir: %w", err)
	}
	client := pyconit.NewClient(pyconit.ClientOptions{
		Endpoint: config.PyConIt.Endpoint,
		Timeout:  config.httpTimeout(),
		Output:   output,
	})
	return pipeline.PyConItOptions{
		Client:         client,
		ConferenceCode: pyconitFlags.code,
		Output: pipeline.Output{
			Path:    pyconitFlags.output,
			DataDir: config.DataDir,
		},
		Metrics: metrics,
	}, nil
}

var pyconitSponsorsCmd = &cobra.Command{
	Use:   "sponsors --conference-code <code>",
	Short: "Writes the sponsors and sponsorship levels of one edition.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := pyconitOptions()
		if err != nil {
			return err
		}
		res, err := pipeline.RunPyConItSponsors(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("pyconit sponsors: %w", err)
		}
		slog.InfoContext(cmd.Context(), "pyconit sponsors done", "year", res.Year, "sponsors", res.Records, "path", res.Path)
		return nil
	},
}

var pyconitSpeakersCmd = &cobra.Command{
	Use:   "speakers --conference-code <code>",
	Short: "Writes the training, talk and keynote speakers of one edition.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := pyconitOptions()
		if err != nil {
			return err
		}
		res, err := pipeline.RunPyConItSpeakers(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("pyconit speakers: %w", err)
		}
		slog.InfoContext(cmd.Context(), "pyconit speakers done", "year", res.Year, "speakers", res.Records, "path", res.Path)
		return nil
	},
}

func init() {
	flags := pyconitCmd.PersistentFlags()
	flags.StringVar(&pyconitFlags.code, "conference-code", "", "The conference code, e.g. pycon2024.")
	flags.StringVarP(&pyconitFlags.output, "output", "o", "", "The .json file to write instead of the default path.")
	pyconitCmd.MarkPersistentFlagRequired("conference-code")

	pyconitCmd.AddCommand(pyconitSponsorsCmd)
	pyconitCmd.AddCommand(pyconitSpeakersCmd)
	rootCmd.AddCommand(pyconitCmd)
}
