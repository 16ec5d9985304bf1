// Package config loads application settings from an optional YAML file.
//
// Settings resolve in three layers: compiled-in defaults, then the YAML
// file (partial files are fine, only the keys present override), then a
// couple of environment variables for deploy-time knobs.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultPort        = 8080
	DefaultDataFile    = "data/catalog.json"
	DefaultAssetDir    = "data/images"
	DefaultTemplateDir = "web/templates"
	DefaultStaticDir   = "web/static"
	DefaultLogLevel    = "info"
)

// Config holds all server settings.
type Config struct {
	Port        int    `yaml:"port"`
	DataFile    string `yaml:"data_file"`    // path to the catalog JSON document
	AssetDir    string `yaml:"asset_dir"`    // directory for uploaded images
	TemplateDir string `yaml:"template_dir"` // HTML templates
	StaticDir   string `yaml:"static_dir"`   // css and friends
	LogLevel    string `yaml:"log_level"`    // debug | info | warn | error

	// JWTSecret signs admin session tokens. AdminPasswordHash is a bcrypt
	// hash of the admin password (generate with `htpasswd -nbB`). If
	// either is empty, auth is disabled and mutating routes are open.
	// Acceptable for a catalog running on localhost, not for anything
	// exposed to a network.
	JWTSecret         string `yaml:"jwt_secret"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Port:        DefaultPort,
		DataFile:    DefaultDataFile,
		AssetDir:    DefaultAssetDir,
		TemplateDir: DefaultTemplateDir,
		StaticDir:   DefaultStaticDir,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads the config file at path if it exists, otherwise returns
// defaults. Partial files are merged with defaults. PORT overrides the
// port either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config: file %s not found", path)
			}
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT value %q", portStr)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// AuthEnabled reports whether the admin guard should be active.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.AdminPasswordHash != ""
}

// SlogLevel translates the configured level name. Unknown names fall
// back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
