// Package cli provides flag binding, validation and config resolution for the
// testmate CLI.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/testmate/internal/config"
)

// BindFlags registers the global flags on cmd as persistent flags, so every
// subcommand accepts them. The flags write straight into cfg; call Resolve
// after parsing to merge them with files and the environment.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.PersistentFlags()

	// Backend
	flags.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Base URL of the testmate backend")
	flags.IntVar(&cfg.Timeout, "timeout", cfg.Timeout, "Seconds before a regular backend call times out")
	flags.IntVar(&cfg.GenerationTimeout, "generation-timeout", cfg.GenerationTimeout, "Seconds before an AI generation call times out")

	// Local state
	flags.StringVar(&cfg.StateDir, "state-dir", "", "Directory holding session.json (default: ~/.testmate)")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Write a JSON request log to this file")
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")

	// Login
	flags.StringVar(&cfg.CallbackAddr, "callback-addr", cfg.CallbackAddr, "Address of the local sign-in callback listener")
	var noBrowser bool
	flags.BoolVar(&noBrowser, "no-browser", false, "Print the sign-in URL instead of opening a browser")

	// Presentation
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json or yaml")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Show debug output")
}

// ValidateFlags checks flag values that can be rejected before any config
// file is read.
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}
	if cmd.Flags().Changed("output") {
		switch cfg.Output {
		case config.OutputText, config.OutputJSON, config.OutputYAML:
		default:
			return fmt.Errorf("--output must be text, json or yaml, got: %s", cfg.Output)
		}
	}
	return nil
}

// Overrides returns the config keys of the flags the user explicitly set, so
// defaults never mask values from config files or the environment.
func Overrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)
	flags := cmd.Flags()

	stringFlags := map[string]struct {
		key string
		val string
	}{
		"api-url":       {"TESTMATE_API_URL", cfg.APIURL},
		"state-dir":     {"TESTMATE_STATE_DIR", cfg.StateDir},
		"log-file":      {"TESTMATE_LOG_FILE", cfg.LogFile},
		"callback-addr": {"TESTMATE_CALLBACK_ADDR", cfg.CallbackAddr},
		"output":        {"TESTMATE_OUTPUT", cfg.Output},
	}
	for flag, mapping := range stringFlags {
		if flags.Changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	intFlags := map[string]struct {
		key string
		val int
	}{
		"timeout":            {"TESTMATE_TIMEOUT", cfg.Timeout},
		"generation-timeout": {"TESTMATE_GENERATION_TIMEOUT", cfg.GenerationTimeout},
	}
	for flag, mapping := range intFlags {
		if flags.Changed(flag) {
			overrides[mapping.key] = strconv.Itoa(mapping.val)
		}
	}

	if flags.Changed("verbose") {
		overrides["TESTMATE_VERBOSE"] = strconv.FormatBool(cfg.Verbose)
	}
	if flags.Changed("no-browser") {
		overrides["TESTMATE_OPEN_BROWSER"] = "false"
	}
	return overrides
}

// Resolve merges the parsed flags with defaults, config files and the
// environment, and validates the result.
func Resolve(cmd *cobra.Command, flagged *config.Config) (*config.Config, error) {
	if err := ValidateFlags(cmd, flagged); err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithPrecedence(config.Sources{
		GlobalPath:   config.GlobalConfigPath(),
		ProjectPath:  config.ProjectConfigPath,
		ExplicitPath: flagged.ConfigFile,
		Env:          config.EnvOverrides(os.Environ()),
		CLIOverrides: Overrides(cmd, flagged),
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI-only fields.
	cfg.ConfigFile = flagged.ConfigFile
	cfg.At = flagged.At

	if cfg.StateDir == "" {
		dir, err := config.DefaultStateDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
