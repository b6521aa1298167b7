// Package config defines the testmate configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < TESTMATE_* environment < CLI flag overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// WhitelistedVars lists every configuration variable name that may appear in
// config files or the environment. Anything else is silently ignored.
var WhitelistedVars = [9]string{
	"TESTMATE_API_URL",
	"TESTMATE_STATE_DIR",
	"TESTMATE_TIMEOUT",
	"TESTMATE_GENERATION_TIMEOUT",
	"TESTMATE_CALLBACK_ADDR",
	"TESTMATE_LOG_FILE",
	"TESTMATE_OUTPUT",
	"TESTMATE_OPEN_BROWSER",
	"TESTMATE_VERBOSE",
}

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds every configuration field for the testmate CLI.
type Config struct {
	// Backend.
	APIURL            string
	Timeout           int // seconds, metadata/control calls
	GenerationTimeout int // seconds, AI generation calls

	// Local state.
	StateDir string
	LogFile  string

	// Login.
	CallbackAddr string
	OpenBrowser  bool

	// Presentation.
	Output  string
	Verbose bool

	// CLI-only flags (not loaded from config files).
	ConfigFile string
	At         string
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		APIURL:            "http://localhost:8000",
		Timeout:           10,
		GenerationTimeout: 150,
		CallbackAddr:      "localhost:3000",
		OpenBrowser:       true,
		Output:            OutputText,
	}
}

// Validate reports the first invalid field.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url must be http or https, got: %q", cfg.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api url has no host: %q", cfg.APIURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %d", cfg.Timeout)
	}
	if cfg.GenerationTimeout <= 0 {
		return fmt.Errorf("generation timeout must be positive, got: %d", cfg.GenerationTimeout)
	}
	switch cfg.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be text, json or yaml, got: %s", cfg.Output)
	}
	return nil
}

// DefaultStateDir is where the session file lives when --state-dir is unset.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".testmate"), nil
}

// GlobalConfigPath returns the per-user config file path, or "" when the
// user config directory cannot be determined.
func GlobalConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "testmate", "config")
}

// ProjectConfigPath is the config file looked up in the working directory.
const ProjectConfigPath = ".testmate/config"
