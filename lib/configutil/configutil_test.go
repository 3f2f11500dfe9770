package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type nested struct {
	Url   string `json:"url"`
	Token string `json:"token"`
}

type testConfig struct {
	DataDir string `json:"data_dir"`
	Timeout int    `json:"timeout"`
	Nested  nested `json:"nested"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "confdata.json5"), `{
		// comments are allowed
		data_dir: "data",
		nested: { url: "https://example.org/api/events/demo" },
	}`)
	writeFile(t, filepath.Join(dir, "confdata.local.json5"), `{ nested: { token: "secret" } }`)

	cfg := testConfig{Timeout: 30}
	err := ReadConfig(filepath.Join(dir, "confdata.json5"), &cfg)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		DataDir: "data",
		Timeout: 30,
		Nested: nested{
			Url:   "https://example.org/api/events/demo",
			Token: "secret",
		},
	}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	cfg := testConfig{Timeout: 30}
	err := ReadConfig(filepath.Join(t.TempDir(), "confdata.json5"), &cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, 30, cfg.Timeout)
}

func TestReadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confdata.json5")
	writeFile(t, path, `{ data_dir: `)

	var cfg testConfig
	err := ReadConfig(path, &cfg)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confdata.yaml")
	writeFile(t, path, "data_dir: archive\nnested:\n  url: https://example.org\n")

	cfg := testConfig{Timeout: 30}
	err := ReadConfig(path, &cfg)
	require.NoError(t, err)
	require.Equal(t, "archive", cfg.DataDir)
	require.Equal(t, "https://example.org", cfg.Nested.Url)
	require.Equal(t, 30, cfg.Timeout)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CONFDATA_TEST_TIMEOUT", "5")
	t.Setenv("CONFDATA_TEST_NESTED__TOKEN", "from-env")

	cfg := testConfig{
		DataDir: "data",
		Timeout: 30,
		Nested:  nested{Url: "https://example.org"},
	}
	err := ApplyEnv("CONFDATA_TEST_", &cfg)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		DataDir: "data",
		Timeout: 5,
		Nested: nested{
			Url:   "https://example.org",
			Token: "from-env",
		},
	}, cfg)
}

func TestApplyEnvWithoutVariables(t *testing.T) {
	cfg := testConfig{DataDir: "data"}
	err := ApplyEnv("CONFDATA_UNUSED_PREFIX_", &cfg)
	require.NoError(t, err)
	require.Equal(t, testConfig{DataDir: "data"}, cfg)
}
