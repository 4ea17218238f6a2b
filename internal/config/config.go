package config

import (
	"fmt"

	"github.com/spf13/viper"

	"astrostamps/internal/hsc"
	"astrostamps/internal/sdss"
	"astrostamps/internal/skyview"
)

// Config holds all configuration for the stamp fetcher application.
type Config struct {
	// HSC credentials. The username is required only when the HSC
	// service is wanted; the password may be left empty to trigger an
	// interactive prompt.
	HSCUsername string `mapstructure:"hsc_username"`
	HSCPassword string `mapstructure:"hsc_password"`

	// Base URLs for the service endpoints (configurable for testing)
	SDSSBaseURL    string `mapstructure:"sdss_base_url"`
	HSCBaseURL     string `mapstructure:"hsc_base_url"`
	SkyViewBaseURL string `mapstructure:"skyview_base_url"`

	// SDSSScale is the SDSS pixel scale in arcseconds per pixel
	SDSSScale float64 `mapstructure:"sdss_scale"`

	// Bands selects HSC filters in R, G, B order
	Bands string `mapstructure:"bands"`

	// Surveys lists the SkyView surveys to register, one fetcher each
	Surveys []string `mapstructure:"surveys"`

	// StampArcsec is the requested stamp size in arcseconds; the SDSS
	// client converts it to pixels through its pixel scale
	StampArcsec float64 `mapstructure:"stamp_arcsec"`

	// Target coordinate in degrees
	RA  float64 `mapstructure:"ra"`
	Dec float64 `mapstructure:"dec"`

	// OutputDir is where the CLI driver saves fetched stamps
	OutputDir string `mapstructure:"output_dir"`

	// LogLevel is a zerolog level name (debug, info, warn, error)
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file
// values.
//
// Expected environment variables:
//   - HSC_USERNAME (optional; HSC is skipped without it)
//   - HSC_PASSWORD (optional; prompted for when missing)
//   - SDSS_BASE_URL, HSC_BASE_URL, SKYVIEW_BASE_URL (optional, default to production)
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("sdss_base_url", sdss.DefaultBaseURL)
	v.SetDefault("hsc_base_url", hsc.DefaultBaseURL)
	v.SetDefault("skyview_base_url", skyview.DefaultBaseURL)
	v.SetDefault("sdss_scale", sdss.DefaultScale)
	v.SetDefault("bands", hsc.DefaultBands)
	v.SetDefault("surveys", []string{"DSS2 Red"})
	v.SetDefault("stamp_arcsec", 30)
	// M51 makes a good smoke-test target: covered by all three services
	v.SetDefault("ra", 202.4696)
	v.SetDefault("dec", 47.1952)
	v.SetDefault("output_dir", "stamps")
	v.SetDefault("log_level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.astrostamps")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("hsc_username", "HSC_USERNAME")
	v.BindEnv("hsc_password", "HSC_PASSWORD")
	v.BindEnv("sdss_base_url", "SDSS_BASE_URL")
	v.BindEnv("hsc_base_url", "HSC_BASE_URL")
	v.BindEnv("skyview_base_url", "SKYVIEW_BASE_URL")
	v.BindEnv("ra", "RA")
	v.BindEnv("dec", "DEC")
	v.BindEnv("output_dir", "OUTPUT_DIR")
	v.BindEnv("log_level", "LOG_LEVEL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.StampArcsec <= 0 {
		return nil, fmt.Errorf("stamp size must be positive, got %v asec", config.StampArcsec)
	}

	return config, nil
}
