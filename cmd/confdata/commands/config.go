package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"confdata/internal/aggregate"
	"confdata/internal/archive"
	"confdata/internal/report"
	"confdata/lib/configutil"
	"confdata/lib/platforms/pyconit"
	"confdata/lib/restyutil"
	"confdata/lib/telemetry"
)

const envPrefix = "CONFDATA_"

type PretalxConfig struct {
	Url   string `json:"url"`
	Token string `json:"token"`
	// one of fail, skip, placeholder
	MissingSpeaker   string `json:"missing_speaker"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

type PyConItConfig struct {
	Endpoint string `json:"endpoint"`
}

type ReportConfig struct {
	Out                 string  `json:"out"`
	Template            string  `json:"template"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

type Config struct {
	Pretalx            PretalxConfig    `json:"pretalx"`
	PyConIt            PyConItConfig    `json:"pyconit"`
	DataDir            string           `json:"data_dir"`
	Report             ReportConfig     `json:"report"`
	Archive            archive.Config   `json:"archive"`
	MetricsTextfile    string           `json:"metrics_textfile"`
	HttpTimeoutSeconds int              `json:"http_timeout_seconds"`
	HttpDumpDir        string           `json:"http_dump_dir"`
	Telemetry          telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		PyConIt: PyConItConfig{Endpoint: pyconit.DefaultEndpoint},
		DataDir: "data",
		Report: ReportConfig{
			Out:                 report.DefaultOutput,
			Title:               report.DefaultTitle,
			Description:         report.DefaultDescription,
			SimilarityThreshold: aggregate.DefaultSimilarityThreshold,
		},
		HttpTimeoutSeconds: 30,
	}
}

// loadConfig layers the config file (and its .local override) and then
// CONFDATA_* environment variables over the defaults. A missing file is fine.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	err := configutil.ReadConfig(path, &cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	err = configutil.ApplyEnv(envPrefix, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) httpTimeout() time.Duration {
	if c.HttpTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.HttpTimeoutSeconds) * time.Second
}

// httpOutput dumps exchanges of the given client into http_dump_dir, only
// when running verbosely.
func (c Config) httpOutput(verbose bool, client string) (restyutil.InstrumentOutput, error) {
	if !verbose || c.HttpDumpDir == "" {
		return nil, nil
	}
	out, err := restyutil.NewFilesystemOutput(filepath.Join(c.HttpDumpDir, client))
	if err != nil {
		return nil, err
	}
	return out, nil
}
