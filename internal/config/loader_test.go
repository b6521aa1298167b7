package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/testmate/internal/config"
)

// writeFile is a test helper that creates a temporary file with the given content.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

// ---------------------------------------------------------------------------
// LoadFile tests
// ---------------------------------------------------------------------------

func TestLoadFileBasicKeyValue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "TESTMATE_API_URL=http://backend:9000\nTESTMATE_TIMEOUT=5\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", m["TESTMATE_API_URL"])
	assert.Equal(t, "5", m["TESTMATE_TIMEOUT"])
}

func TestLoadFileSkipsCommentsAndUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "# comment\nTESTMATE_OUTPUT=json\nNEXT_PUBLIC_API_URL=http://x\n\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Len(t, m, 1)
	assert.Equal(t, "json", m["TESTMATE_OUTPUT"])
}

func TestLoadFileQuotedValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "TESTMATE_LOG_FILE=\"/var/log/test mate.log\"\nexport TESTMATE_VERBOSE=yes\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/test mate.log", m["TESTMATE_LOG_FILE"])
	assert.Equal(t, "yes", m["TESTMATE_VERBOSE"])
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ---------------------------------------------------------------------------
// EnvOverrides tests
// ---------------------------------------------------------------------------

func TestEnvOverridesFiltersWhitelist(t *testing.T) {
	m := config.EnvOverrides([]string{
		"HOME=/root",
		"TESTMATE_API_URL=http://env:8000",
		"TESTMATE_GENERATION_TIMEOUT=300",
		"=broken",
		"TESTMATE_UNKNOWN=1",
	})

	assert.Equal(t, map[string]string{
		"TESTMATE_API_URL":            "http://env:8000",
		"TESTMATE_GENERATION_TIMEOUT": "300",
	}, m)
}

// ---------------------------------------------------------------------------
// LoadWithPrecedence tests
// ---------------------------------------------------------------------------

func TestLoadWithPrecedenceDefaultsOnly(t *testing.T) {
	cfg, err := config.LoadWithPrecedence(config.Sources{})
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}

func TestLoadWithPrecedenceOrder(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global", "TESTMATE_API_URL=http://global:1\nTESTMATE_TIMEOUT=1\nTESTMATE_OUTPUT=yaml\nTESTMATE_LOG_FILE=/g.log\n")
	project := writeFile(t, dir, "project", "TESTMATE_API_URL=http://project:2\nTESTMATE_TIMEOUT=2\nTESTMATE_OUTPUT=json\n")
	explicit := writeFile(t, dir, "explicit", "TESTMATE_API_URL=http://explicit:3\nTESTMATE_TIMEOUT=3\n")

	cfg, err := config.LoadWithPrecedence(config.Sources{
		GlobalPath:   global,
		ProjectPath:  project,
		ExplicitPath: explicit,
		Env:          map[string]string{"TESTMATE_API_URL": "http://env:4/"},
		CLIOverrides: map[string]string{"TESTMATE_TIMEOUT": "5"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://env:4", cfg.APIURL, "env beats files and trailing slash is trimmed")
	assert.Equal(t, 5, cfg.Timeout, "cli beats everything")
	assert.Equal(t, "json", cfg.Output, "project beats global")
	assert.Equal(t, "/g.log", cfg.LogFile, "global value survives when nothing overrides it")
}

func TestLoadWithPrecedenceMissingOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadWithPrecedence(config.Sources{
		GlobalPath:  filepath.Join(dir, "missing-global"),
		ProjectPath: filepath.Join(dir, "missing-project"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
}

func TestLoadWithPrecedenceMissingExplicitFile(t *testing.T) {
	_, err := config.LoadWithPrecedence(config.Sources{
		ExplicitPath: filepath.Join(t.TempDir(), "missing"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explicit config")
}

func TestApplyMapToConfigBadIntegerKeepsPrevious(t *testing.T) {
	cfg := config.NewDefaultConfig()
	config.ApplyMapToConfig(cfg, map[string]string{
		"TESTMATE_TIMEOUT":            "soon",
		"TESTMATE_GENERATION_TIMEOUT": "200",
		"TESTMATE_OPEN_BROWSER":       "no",
		"TESTMATE_VERBOSE":            "TRUE",
		"TESTMATE_OUTPUT":             "YAML",
	})

	assert.Equal(t, 10, cfg.Timeout)
	assert.Equal(t, 200, cfg.GenerationTimeout)
	assert.False(t, cfg.OpenBrowser)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "yaml", cfg.Output)
}
