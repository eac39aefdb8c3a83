package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"bad output", func(c *Config) { c.Output = "syslog" }, true},
		{"file without name", func(c *Config) { c.Output = "file"; c.File.Filename = "" }, true},
		{"file without size", func(c *Config) { c.Output = "both"; c.File.MaxSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.Level = "DEBUG"
	cfg.File.Filename = filepath.Join(t.TempDir(), "nested", "app.log")

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("search finished")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.File.Filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"search finished"`)
}

func TestNew_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "yaml"

	_, err := New(cfg)
	assert.Error(t, err)
}
