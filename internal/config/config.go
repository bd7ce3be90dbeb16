// Package config provides configuration management for the pipeline.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Provider names selectable via configuration.
const (
	ProviderRaw = "raw"
	ProviderRTC = "rtc"
	ProviderCOG = "cog"
)

// Config holds the complete application configuration loaded from
// environment variables.
type Config struct {
	Pipeline PipelineConfig `envPrefix:"PIPELINE_"`
	STAC     STACConfig     `envPrefix:"STAC_"`
	OData    ODataConfig    `envPrefix:"ODATA_"`
	Auth     AuthConfig     `envPrefix:"CDSE_"`
	S3       S3Config       `envPrefix:"S3_"`
	Geocode  GeocodeConfig  `envPrefix:"GEOCODE_"`
	Logging  LoggingConfig  `envPrefix:"LOG_"`
}

// PipelineConfig selects the band provider variant and run output location.
type PipelineConfig struct {
	// Provider specifies which band provider to use: "raw", "rtc" or "cog".
	Provider   string `env:"PROVIDER" envDefault:"raw"`
	OutputRoot string `env:"OUTPUT_ROOT" envDefault:"."`

	// MatchTop is how many candidates a product-resolution query requests.
	MatchTop int `env:"MATCH_TOP" envDefault:"10"`
}

// STACConfig contains discovery-catalog client configuration.
type STACConfig struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://stac.dataspace.copernicus.eu/v1"`
	Collection string        `env:"COLLECTION" envDefault:"sentinel-1-grd"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// ODataConfig contains product-catalog client configuration.
type ODataConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://catalogue.dataspace.copernicus.eu/odata/v1"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// AuthConfig contains catalog account credentials and the download service
// endpoints that require them.
type AuthConfig struct {
	Username        string        `env:"USERNAME" envDefault:""`
	Password        string        `env:"PASSWORD" envDefault:""`
	TokenURL        string        `env:"TOKEN_URL" envDefault:"https://identity.dataspace.copernicus.eu/auth/realms/CDSE/protocol/openid-connect/token"`
	DownloadURL     string        `env:"DOWNLOAD_URL" envDefault:"https://zipper.dataspace.copernicus.eu/odata/v1"`
	TokenTimeout    time.Duration `env:"TOKEN_TIMEOUT" envDefault:"60s"`
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"30m"`
}

// S3Config contains object-store access for cloud-optimized assets.
type S3Config struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"eodata.dataspace.copernicus.eu"`
	Bucket    string `env:"BUCKET" envDefault:"eodata"`
	AccessKey string `env:"ACCESS_KEY" envDefault:""`
	SecretKey string `env:"SECRET_KEY" envDefault:""`
	UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
}

// GeocodeConfig contains the external geocoding engine invocation.
type GeocodeConfig struct {
	Command string   `env:"COMMAND" envDefault:""`
	Args    []string `env:"ARGS" envSeparator:" " envDefault:""`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables.
// It returns an error if required fields are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{
		RequiredIfNoDef: true,
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Pipeline.Provider {
	case ProviderRaw, ProviderRTC, ProviderCOG:
	default:
		return fmt.Errorf("pipeline provider must be %q, %q or %q, got %q",
			ProviderRaw, ProviderRTC, ProviderCOG, c.Pipeline.Provider)
	}

	if c.Pipeline.MatchTop < 1 {
		return fmt.Errorf("match top must be at least 1, got %d", c.Pipeline.MatchTop)
	}

	if c.STAC.BaseURL == "" {
		return fmt.Errorf("STAC base URL is required")
	}
	if c.STAC.Collection == "" {
		return fmt.Errorf("STAC collection is required")
	}
	if c.STAC.Timeout <= 0 {
		return fmt.Errorf("STAC timeout must be positive, got %s", c.STAC.Timeout)
	}

	switch c.Pipeline.Provider {
	case ProviderRaw, ProviderRTC:
		if c.OData.BaseURL == "" {
			return fmt.Errorf("OData base URL is required")
		}
		if c.Auth.Username == "" || c.Auth.Password == "" {
			return fmt.Errorf("catalog credentials (CDSE_USERNAME, CDSE_PASSWORD) are required for the %s provider", c.Pipeline.Provider)
		}
	case ProviderCOG:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("S3 endpoint and bucket are required for the cog provider")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("S3 credentials (S3_ACCESS_KEY, S3_SECRET_KEY) are required for the cog provider")
		}
	}

	if c.Pipeline.Provider == ProviderRTC && c.Geocode.Command == "" {
		return fmt.Errorf("a geocoding engine command (GEOCODE_COMMAND) is required for the rtc provider")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, text", c.Logging.Format)
	}

	return nil
}
