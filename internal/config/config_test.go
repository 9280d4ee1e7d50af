package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000", cfg.Server.PublicURL)
	assert.Equal(t, int64(200*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, "video", cfg.Upload.FieldName)
	assert.Equal(t, GeneratorModeSimulated, cfg.Generator.Mode)
	assert.Equal(t, 5*time.Second, cfg.Generator.BaseOffset)
	assert.Equal(t, 7*time.Second, cfg.Generator.Stride)
	assert.Equal(t, 3*time.Second, cfg.Generator.MinDelay)
	assert.Equal(t, 6*time.Second, cfg.Generator.MaxDelay)
	assert.Zero(t, cfg.Generator.Timeout)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
server:
  port: 6000
generator:
  workers: 4
  timeout: 30s
  max_attempts: 2
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))
	t.Setenv("PUBLIC_URL", "https://videos.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, "https://videos.example.com", cfg.Server.PublicURL)
	assert.Equal(t, 4, cfg.Generator.Workers)
	assert.Equal(t, 30*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 2, cfg.Generator.MaxAttempts)
}

func TestValidateRejectsOpenAIWithoutKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AI_MODE", GeneratorModeOpenAI)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.api_key")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Upload:    UploadConfig{MaxBytes: 1},
			Storage:   StorageConfig{Type: "local", LocalDir: "uploads"},
			Generator: GeneratorConfig{Mode: GeneratorModeSimulated, Workers: 1, MaxAttempts: 1, Stride: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Generator.Mode = "magic" }},
		{"no workers", func(c *Config) { c.Generator.Workers = 0 }},
		{"no attempts", func(c *Config) { c.Generator.MaxAttempts = 0 }},
		{"negative timeout", func(c *Config) { c.Generator.Timeout = -time.Second }},
		{"inverted delay", func(c *Config) { c.Generator.MinDelay = 2 * time.Second }},
		{"zero stride", func(c *Config) { c.Generator.Stride = 0 }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }},
	}

	ok := base()
	require.NoError(t, ok.Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
