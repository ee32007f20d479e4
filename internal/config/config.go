package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Canvas   CanvasConfig   `yaml:"canvas"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// everything in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// CanvasConfig sizes new editing sessions.
type CanvasConfig struct {
	ViewportWidth   float64 `yaml:"viewport_width"`
	ViewportHeight  float64 `yaml:"viewport_height"`
	MiniMapWidth    float64 `yaml:"minimap_width"`
	MiniMapHeight   float64 `yaml:"minimap_height"`
	ThumbnailWidth  float64 `yaml:"thumbnail_width"`
	ThumbnailHeight float64 `yaml:"thumbnail_height"`
	// Workflows are YAML definition files opened at startup.
	Workflows []string `yaml:"workflows"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Canvas: CanvasConfig{
			ViewportWidth:   1280,
			ViewportHeight:  800,
			MiniMapWidth:    200,
			MiniMapHeight:   150,
			ThumbnailWidth:  320,
			ThumbnailHeight: 180,
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
// Environment overrides are applied on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Canvas.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects sizes the viewport, minimap and thumbnail cannot be
// scaled to.
func (c CanvasConfig) validate() error {
	sizes := []struct {
		name string
		v    float64
	}{
		{"viewport_width", c.ViewportWidth},
		{"viewport_height", c.ViewportHeight},
		{"minimap_width", c.MiniMapWidth},
		{"minimap_height", c.MiniMapHeight},
		{"thumbnail_width", c.ThumbnailWidth},
		{"thumbnail_height", c.ThumbnailHeight},
	}
	for _, s := range sizes {
		if !(s.v > 0) {
			return fmt.Errorf("invalid canvas.%s %v: must be positive", s.name, s.v)
		}
	}
	return nil
}

// LoadDefault loads ".env" if present, then "config.yaml" from the current
// directory. A missing config file yields defaults; any other error
// (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			if err := cfg.applyEnv(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from FLOWBOARD_HOST, FLOWBOARD_PORT and
// FLOWBOARD_DATABASE_URL.
func (c *Config) applyEnv() error {
	if v := os.Getenv("FLOWBOARD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("FLOWBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FLOWBOARD_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("FLOWBOARD_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	return nil
}
