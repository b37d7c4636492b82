package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(10<<20), cfg.Parser.MaxFileSize)
	assert.Equal(t, 100, cfg.Inference.SampleSize)
	assert.Equal(t, 30, cfg.Inference.CategoryMaxUnique)
	assert.NotEmpty(t, cfg.Quality.MissingVocabulary)
	assert.NotEmpty(t, cfg.Roles.SalesHints)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(10485760), cfg.Parser.MaxFileSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TABLEDASH_INFERENCE_SAMPLE_SIZE", "25")
	t.Setenv("TABLEDASH_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Inference.SampleSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
parser:
  max_file_size: 1024
inference:
  category_max_unique: 10
logging:
  level: warn
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), cfg.Parser.MaxFileSize)
	assert.Equal(t, 10, cfg.Inference.CategoryMaxUnique)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Values the file does not mention keep their defaults.
	assert.Equal(t, 100, cfg.Inference.SampleSize)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max file size", func(c *Config) { c.Parser.MaxFileSize = 0 }},
		{"negative sample size", func(c *Config) { c.Inference.SampleSize = -1 }},
		{"zero category ceiling", func(c *Config) { c.Inference.CategoryMaxUnique = 0 }},
		{"missing ratio above one", func(c *Config) { c.Quality.HighMissingRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
