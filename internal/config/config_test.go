package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "kanban.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvDataDir, "")

	path := writeConfig(t, `version: "1.0"
storage:
  data_dir: /tmp/kanban-data
remote:
  enabled: true
  url: redis://cache:6380/2
  namespace: team
  save_timeout: 250ms
clipboard:
  enabled: false
log:
  level: debug
  format: json
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kanban-data", config.Storage.DataDir)
	assert.Equal(t, "redis://cache:6380/2", config.Remote.URL)
	assert.Equal(t, "team", config.Remote.Namespace)
	assert.Equal(t, 250*time.Millisecond, config.Remote.SaveTimeout)
	assert.False(t, config.Clipboard.Enabled)
	assert.Equal(t, "json", config.Log.Format)
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvDataDir, "")

	config, err := Load(writeConfig(t, "version: \"1.0\"\nremote:\n  namespace: solo\n"))
	require.NoError(t, err)
	assert.Equal(t, "solo", config.Remote.Namespace)
	assert.Equal(t, Default().Remote.URL, config.Remote.URL)
	assert.Equal(t, 5*time.Second, config.Remote.SaveTimeout)
	assert.True(t, config.Clipboard.Enabled)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/kanban.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, "version: \"1.0\"\nremote:\n  - not\n   a map\n"))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvDataDir, "")

	config, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".kanban"), config.Storage.DataDir)
	assert.True(t, config.Remote.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://override:6379/1")
	t.Setenv(EnvDataDir, "/srv/kanban")
	t.Setenv(EnvJWTSecret, "s3cret")

	config, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "redis://override:6379/1", config.Remote.URL)
	assert.Equal(t, "/srv/kanban", config.Storage.DataDir)
	assert.Equal(t, "s3cret", config.Remote.JWTSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"wrong version", func(c *Config) { c.Version = "2.0" }, "unsupported version"},
		{"missing data dir", func(c *Config) { c.Storage.DataDir = "" }, "DataDir"},
		{"missing namespace", func(c *Config) { c.Remote.Namespace = "" }, "Namespace"},
		{"namespace with colon", func(c *Config) { c.Remote.Namespace = "a:b" }, "Namespace"},
		{"zero timeout", func(c *Config) { c.Remote.SaveTimeout = 0 }, "SaveTimeout"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "Format"},
		{"bad redis url", func(c *Config) { c.Remote.URL = "http://nope" }, "not a valid Redis URL"},
		{"url required when enabled", func(c *Config) { c.Remote.URL = "" }, "URL"},
		{"url ignored when disabled", func(c *Config) {
			c.Remote.Enabled = false
			c.Remote.URL = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
