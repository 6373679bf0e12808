// Package config builds the single configuration object every component is
// constructed from. Precedence: built-in defaults, then an optional YAML
// file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingNewsAPIKey = errors.New("news.api_key is required (set GNEWS_API_KEY)")
	ErrUnknownGeocoder   = errors.New("geocoder.provider must be one of: gsi, gsi-muni, bigdatacloud, nominatim")
	ErrInvalidMaxResults = errors.New("news.max_results must be between 1 and 10")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	News     NewsConfig     `yaml:"news"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GeocoderConfig selects one reverse-geocoding provider per deployment.
// BaseURL overrides the provider default, which the tests rely on.
type GeocoderConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

type NewsConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// AuthConfig points at the hosted identity provider. JWTSecret is optional:
// when set, bearer tokens are verified locally instead of via the provider's
// user endpoint.
type AuthConfig struct {
	URL       string `yaml:"url"`
	AnonKey   string `yaml:"anon_key"`
	JWTSecret string `yaml:"jwt_secret"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080"},
		Geocoder: GeocoderConfig{Provider: "gsi"},
		News:     NewsConfig{BaseURL: "https://gnews.io/api/v4", MaxResults: 10},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load builds the config. path may be empty, in which case GEONEWS_CONFIG is
// consulted; a missing file is not an error, only an unreadable or invalid
// one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GEONEWS_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfEnv(&c.HTTP.Addr, "GEONEWS_ADDR")
	setIfEnv(&c.Database.Path, "GEONEWS_DB_PATH")
	setIfEnv(&c.Geocoder.Provider, "GEONEWS_GEOCODER")
	setIfEnv(&c.Geocoder.BaseURL, "GEONEWS_GEOCODER_URL")
	setIfEnv(&c.Geocoder.APIKey, "GEONEWS_GEOCODER_KEY")
	setIfEnv(&c.News.APIKey, "GNEWS_API_KEY")
	setIfEnv(&c.News.BaseURL, "GNEWS_BASE_URL")
	setIfEnv(&c.Auth.URL, "SUPABASE_URL")
	setIfEnv(&c.Auth.AnonKey, "SUPABASE_ANON_KEY")
	setIfEnv(&c.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	setIfEnv(&c.Logging.Level, "GEONEWS_LOG_LEVEL")

	if v := os.Getenv("GNEWS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.News.MaxResults = n
		}
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	switch c.Geocoder.Provider {
	case "gsi", "gsi-muni", "bigdatacloud", "nominatim":
	default:
		return ErrUnknownGeocoder
	}

	if c.News.APIKey == "" {
		return ErrMissingNewsAPIKey
	}
	if c.News.MaxResults < 1 || c.News.MaxResults > 10 {
		return ErrInvalidMaxResults
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
