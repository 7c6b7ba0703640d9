package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string
	// CheckInLocation is the timezone "today" is computed in for the
	// ledger's calendar-date key. It is explicit configuration, never
	// implicit server-local time.
	CheckInLocation *time.Location
	StatsCacheTTL   time.Duration
	RegistryBaseURL string
	RegistryAPIKey  string
	RegistryTimeout time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsDevelopment reports whether the service runs with development error detail.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHECKIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Check-In API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("checkin.timezone", "UTC")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("registry.timeout", "10s")

	location, err := time.LoadLocation(v.GetString("checkin.timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid check-in timezone: %w", err)
	}

	ttl, err := time.ParseDuration(v.GetString("stats.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	registryTimeout, err := time.ParseDuration(v.GetString("registry.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid registry timeout: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		CheckInLocation: location,
		StatsCacheTTL:   ttl,
		RegistryBaseURL: v.GetString("registry.base_url"),
		RegistryAPIKey:  v.GetString("registry.api_key"),
		RegistryTimeout: registryTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
