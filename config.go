package docsection

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for extraction and the front ends.
type Config struct {
	// DefaultBackend is used when a request selects no backend.
	// Any registered backend name or SelectAll. Defaults to "Plain".
	DefaultBackend string `json:"default_backend" yaml:"default_backend"`

	// MaxFileSize is the largest document accepted, in bytes. Zero means
	// the 100 MB default.
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// CacheSize is the number of single-backend extraction results kept in
	// memory. Zero disables the cache.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// DocumentRoot limits which server-side paths the HTTP API reads. Empty
	// means the API accepts uploads only.
	DocumentRoot string `json:"document_root" yaml:"document_root"`

	// Log configures the binaries' logger.
	Log LogConfig `json:"log" yaml:"log"`

	// Logger for library debug messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// LogConfig configures logging output and rotation.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format     string `json:"format" yaml:"format"` // text or json
	File       string `json:"file" yaml:"file"`     // empty = stderr
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultBackend: "Plain",
		MaxFileSize:    100 * 1024 * 1024,
		CacheSize:      32,
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: config file must be .yaml, .yml or .json: %s", ErrInvalidConfig, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}

	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from DOCSECTION_* environment variables.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DOCSECTION_DEFAULT_BACKEND"); v != "" {
		c.DefaultBackend = v
	}
	if v := getenv("DOCSECTION_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: DOCSECTION_MAX_FILE_SIZE: %v", ErrInvalidConfig, err)
		}
		c.MaxFileSize = n
	}
	if v := getenv("DOCSECTION_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DOCSECTION_CACHE_SIZE: %v", ErrInvalidConfig, err)
		}
		c.CacheSize = n
	}
	if v := getenv("DOCSECTION_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("DOCSECTION_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("DOCSECTION_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := getenv("DOCSECTION_DOCUMENT_ROOT"); v != "" {
		c.DocumentRoot = v
	}
	return c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size must not be negative", ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func (c *Config) defaults() {
	if c.DefaultBackend == "" {
		c.DefaultBackend = "Plain"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
