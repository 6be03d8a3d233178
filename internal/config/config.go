package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Voice provider
	VAPIBaseURL        string `mapstructure:"VAPI_BASE_URL"`
	VAPIAPIKey         string `mapstructure:"VAPI_API_KEY"`
	VAPIAssistantID    string `mapstructure:"VAPI_ASSISTANT_ID"`
	VAPIPhoneNumberID  string `mapstructure:"VAPI_PHONE_NUMBER_ID"`
	VAPITimeoutSeconds int    `mapstructure:"VAPI_TIMEOUT_SECONDS"`

	// Scheduler
	PollIntervalSeconds int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	ScheduleMaxAttempts int    `mapstructure:"SCHEDULE_MAX_ATTEMPTS"`
	DefaultTimezone     string `mapstructure:"DEFAULT_TIMEZONE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("VAPI_BASE_URL", "https://api.vapi.ai")
	v.SetDefault("VAPI_TIMEOUT_SECONDS", 15)
	v.SetDefault("POLL_INTERVAL_SECONDS", 30)
	v.SetDefault("SCHEDULE_MAX_ATTEMPTS", 5)
	v.SetDefault("DEFAULT_TIMEZONE", "UTC")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("VAPI_BASE_URL")
	v.BindEnv("VAPI_API_KEY")
	v.BindEnv("VAPI_ASSISTANT_ID")
	v.BindEnv("VAPI_PHONE_NUMBER_ID")
	v.BindEnv("VAPI_TIMEOUT_SECONDS")
	v.BindEnv("POLL_INTERVAL_SECONDS")
	v.BindEnv("SCHEDULE_MAX_ATTEMPTS")
	v.BindEnv("DEFAULT_TIMEZONE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PollInterval returns the poller interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// VAPITimeout returns the provider HTTP timeout as a duration.
func (c *Config) VAPITimeout() time.Duration {
	return time.Duration(c.VAPITimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. Outbound calls
// cannot be placed without provider credentials, so production refuses to
// start without them. Development may run without credentials; initiation
// then fails at the provider boundary and is surfaced per schedule.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.VAPIAPIKey == "" {
			return fmt.Errorf("VAPI_API_KEY is required in production")
		}
		if c.VAPIAssistantID == "" {
			return fmt.Errorf("VAPI_ASSISTANT_ID is required in production")
		}
		if c.VAPIPhoneNumberID == "" {
			return fmt.Errorf("VAPI_PHONE_NUMBER_ID is required in production")
		}
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.ScheduleMaxAttempts <= 0 {
		return fmt.Errorf("SCHEDULE_MAX_ATTEMPTS must be positive, got %d", c.ScheduleMaxAttempts)
	}
	if c.VAPITimeoutSeconds <= 0 {
		return fmt.Errorf("VAPI_TIMEOUT_SECONDS must be positive, got %d", c.VAPITimeoutSeconds)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE %q is not a valid IANA zone: %w", c.DefaultTimezone, err)
	}
	return nil
}
