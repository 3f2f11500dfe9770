package commands

import (
	"context"
	"fmt"
	"log/slog"

	"confdata/internal/runmetrics"
	"confdata/lib/serviceutil"
	"confdata/lib/telemetry"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const serviceName = "confdata"

var (
	configPath string
	verbose    bool

	// populated by the root command before any subcommand runs
	config   Config
	metrics  *runmetrics.Recorder
	shutdown = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:           "confdata",
	Short:         "confdata collects conference speakers and sponsors into yearly JSON documents.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))

		var err error
		config, err = loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		t, err := telemetry.Setup(cmd.Context(), serviceName, config.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		shutdown = t.Shutdown

		metrics = runmetrics.NewRecorder()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		err := metrics.WriteTextfile(config.MetricsTextfile)
		if err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "confdata.json5", "The config file to read, .json5 or .yaml.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level and dump HTTP exchanges to http_dump_dir.")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if shutdownErr := shutdown(context.Background()); shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	if err != nil {
		serviceutil.Fatal("confdata failed", err)
	}
}
