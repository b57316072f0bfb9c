package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Url     string `json:"url"`
	Retries int    `json:"retries"`
	Nested  struct {
		Headless bool `json:"headless"`
	} `json:"nested"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// default config
		url: "https://example.com/orders.csv",
		retries: 3,
		nested: { headless: true },
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		retries: 5,
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://example.com/orders.csv", cfg.Url)
	require.Equal(t, 5, cfg.Retries)
	require.True(t, cfg.Nested.Headless)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ url: "https://local" }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://local", cfg.Url)
}

func TestApplyDefaults(t *testing.T) {
	cfg := testConfig{Retries: 1}
	err := ApplyDefaults(&cfg, testConfig{
		Url:     "https://default",
		Retries: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://default", cfg.Url)
	require.Equal(t, 1, cfg.Retries)
}
