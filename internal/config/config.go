package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "kanban.yml"

// Environment overrides, applied after the file is read.
const (
	EnvRedisURL  = "KANBAN_REDIS_URL"
	EnvDataDir   = "KANBAN_DATA_DIR"
	EnvJWTSecret = "KANBAN_JWT_SECRET"
)

// Config represents the top-level kanban.yml configuration
type Config struct {
	Version   string          `yaml:"version" validate:"required"`
	Storage   StorageConfig   `yaml:"storage"`
	Remote    RemoteConfig    `yaml:"remote"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Log       LogConfig       `yaml:"log"`
}

// StorageConfig locates the local working copy and credentials
type StorageConfig struct {
	DataDir string `yaml:"data_dir" validate:"required"`
}

// RemoteConfig configures the Redis snapshot store
type RemoteConfig struct {
	Enabled     bool          `yaml:"enabled"`
	URL         string        `yaml:"url" validate:"required_if=Enabled true"`
	Namespace   string        `yaml:"namespace" validate:"required,max=64,excludesall=:"`
	SaveTimeout time.Duration `yaml:"save_timeout" validate:"gt=0"`

	// JWTSecret verifies login tokens when set. Only read from the environment.
	JWTSecret string `yaml:"-"`
}

// ClipboardConfig toggles the system clipboard
type ClipboardConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig configures the logrus logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=panic fatal error warn warning info debug trace"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Storage: StorageConfig{DataDir: "~/.kanban"},
		Remote: RemoteConfig{
			Enabled:     true,
			URL:         "redis://localhost:6379/0",
			Namespace:   "default",
			SaveTimeout: 5 * time.Second,
		},
		Clipboard: ClipboardConfig{Enabled: true},
		Log:       LogConfig{Level: "warn", Format: "text"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid value for %s: failed '%s' check", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if c.Remote.Enabled {
		if _, err := redis.ParseURL(c.Remote.URL); err != nil {
			return fmt.Errorf("remote.url is not a valid Redis URL: %w", err)
		}
	}

	return nil
}

// Load reads and validates kanban.yml from the specified path.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return finish(config)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return finish(Default())
	}
	return Load(path)
}

func finish(config *Config) (*Config, error) {
	config.applyEnv()

	dir, err := expandHome(config.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	config.Storage.DataDir = dir

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *Config) applyEnv() {
	if url := strings.TrimSpace(os.Getenv(EnvRedisURL)); url != "" {
		c.Remote.URL = url
	}
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		c.Storage.DataDir = dir
	}
	c.Remote.JWTSecret = os.Getenv(EnvJWTSecret)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
