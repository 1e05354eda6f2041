package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the address resolver.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the resolver monitoring server.
// - ProviderType: The geocoding provider to use (mapquest, google, nominatim).
// - APIKey: The API key for the provider (required for MapQuest and Google).
// - Secure: Whether to talk to the provider over https.
// - Country: Optional country hint attached to every query.
// - Workers: The number of concurrent workers for single-address providers.
// - Interval: The duration between queue polls.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env          string         // Env is the current environment: local, development, production.
	Port         int            // Port is the resolver monitoring server port.
	ProviderType string         // ProviderType specifies which geocoding provider to use.
	APIKey       string         // The API key for the configured provider.
	Secure       bool           // Use https towards the provider.
	Country      string         // Country hint for more accurate geocoding.
	Workers      int            // The number of concurrent workers for processing requests.
	Interval     time.Duration  // The duration between processing intervals.
	Database     PostgresConfig // Database holds the postgres database configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the configuration from the environment, with an optional
// .env file in the working directory. It panics when a numeric or duration
// value does not parse; missing values fall back to defaults.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PINPOINT")
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("health_port", "8080")
	v.SetDefault("provider_type", "mapquest")
	v.SetDefault("secure", true)
	v.SetDefault("workers", "10")
	v.SetDefault("interval", "10m")

	interval, err := time.ParseDuration(v.GetString("interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	healthPort, err := strconv.Atoi(v.GetString("health_port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer type")
	}

	return &Config{
		Env:          v.GetString("env"),
		Port:         healthPort,
		ProviderType: v.GetString("provider_type"),
		APIKey:       v.GetString("provider_key"),
		Secure:       v.GetBool("secure"),
		Country:      v.GetString("country"),
		Workers:      workers,
		Interval:     interval,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}
