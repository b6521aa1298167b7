package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// whitelistSet is a precomputed lookup table for fast whitelist membership checks.
var whitelistSet map[string]bool

func init() {
	whitelistSet = make(map[string]bool, len(WhitelistedVars))
	for _, v := range WhitelistedVars {
		whitelistSet[v] = true
	}
}

// LoadFile parses a dotenv style KEY=VALUE config file at the given path.
//
// Comments, blank lines, quoting and `export` prefixes follow dotenv rules.
// Keys not present in WhitelistedVars are silently ignored.
func LoadFile(path string) (map[string]string, error) {
	raw, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return filter(raw), nil
}

// EnvOverrides extracts whitelisted variables from an environment listing
// in os.Environ form.
func EnvOverrides(environ []string) map[string]string {
	raw := make(map[string]string)
	for _, kv := range environ {
		idx := strings.Index(kv, "=")
		if idx <= 0 {
			continue
		}
		raw[kv[:idx]] = kv[idx+1:]
	}
	return filter(raw)
}

func filter(raw map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range raw {
		if whitelistSet[k] {
			result[k] = strings.TrimSpace(v)
		}
	}
	return result
}

// Sources lists every input of LoadWithPrecedence. Empty paths are skipped.
type Sources struct {
	GlobalPath   string
	ProjectPath  string
	ExplicitPath string
	Env          map[string]string
	CLIOverrides map[string]string
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Global config file
//  3. Project config file
//  4. Explicit config file (must exist if given)
//  5. TESTMATE_* environment variables
//  6. CLI overrides
//
// A missing global or project file is not an error.
func LoadWithPrecedence(src Sources) (*Config, error) {
	cfg := NewDefaultConfig()

	if src.GlobalPath != "" {
		m, err := LoadFile(src.GlobalPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("global config: %w", err)
			}
		} else {
			ApplyMapToConfig(cfg, m)
		}
	}

	if src.ProjectPath != "" {
		m, err := LoadFile(src.ProjectPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("project config: %w", err)
			}
		} else {
			ApplyMapToConfig(cfg, m)
		}
	}

	if src.ExplicitPath != "" {
		m, err := LoadFile(src.ExplicitPath)
		if err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
		ApplyMapToConfig(cfg, m)
	}

	if len(src.Env) > 0 {
		ApplyMapToConfig(cfg, src.Env)
	}

	if len(src.CLIOverrides) > 0 {
		ApplyMapToConfig(cfg, src.CLIOverrides)
	}

	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Unknown keys are ignored. Integer fields that fail to parse keep their
// previous value.
func ApplyMapToConfig(cfg *Config, m map[string]string) {
	for key, value := range m {
		switch key {
		case "TESTMATE_API_URL":
			cfg.APIURL = strings.TrimRight(value, "/")
		case "TESTMATE_STATE_DIR":
			cfg.StateDir = value
		case "TESTMATE_TIMEOUT":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.Timeout = v
			}
		case "TESTMATE_GENERATION_TIMEOUT":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.GenerationTimeout = v
			}
		case "TESTMATE_CALLBACK_ADDR":
			cfg.CallbackAddr = value
		case "TESTMATE_LOG_FILE":
			cfg.LogFile = value
		case "TESTMATE_OUTPUT":
			cfg.Output = strings.ToLower(value)
		case "TESTMATE_OPEN_BROWSER":
			cfg.OpenBrowser = parseBool(value)
		case "TESTMATE_VERBOSE":
			cfg.Verbose = parseBool(value)
		}
	}
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else returns false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
