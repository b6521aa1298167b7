package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 10, cfg.Timeout)
	assert.Equal(t, 150, cfg.GenerationTimeout)
	assert.Equal(t, "localhost:3000", cfg.CallbackAddr)
	assert.Equal(t, OutputText, cfg.Output)
	assert.True(t, cfg.OpenBrowser)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.StateDir)
}

func TestWhitelistedVarsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range WhitelistedVars {
		assert.False(t, seen[v], "duplicate whitelist entry %s", v)
		seen[v] = true
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"https url", func(c *Config) { c.APIURL = "https://testmate.example.com" }, ""},
		{"non http scheme", func(c *Config) { c.APIURL = "ftp://host" }, "http or https"},
		{"missing host", func(c *Config) { c.APIURL = "http://" }, "no host"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout must be positive"},
		{"negative generation timeout", func(c *Config) { c.GenerationTimeout = -1 }, "generation timeout"},
		{"unknown output", func(c *Config) { c.Output = "xml" }, "output must be"},
		{"yaml output", func(c *Config) { c.Output = OutputYAML }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
