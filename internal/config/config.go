package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	LogLevel       string
	ServerAddress  string
	StoreDriver    string
	DatabaseURL    string
	MigrationsPath string
	StoreTimeout   time.Duration
	Location       *time.Location
	JWTSecret      string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string
	MQTTClientID  string

	AuthRatePerSec float64
	AuthRateBurst  int

	// optional first administrator, created at startup when missing
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment, after applying an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:    os.Getenv("APP_ENV"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		StoreDriver:    getenv("STORE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddress:   os.Getenv("REDIS_ADDRESS"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:  os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:   getenv("MQTT_CLIENT_ID", "memo-server"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	timeout, err := time.ParseDuration(getenv("STORE_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %q", os.Getenv("STORE_TIMEOUT"))
	}
	cfg.StoreTimeout = timeout

	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	rps, err := strconv.ParseFloat(getenv("AUTH_RATE_PER_SEC", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_PER_SEC")
	}
	burst, err := strconv.Atoi(getenv("AUTH_RATE_BURST", "10"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	cfg.AuthRatePerSec = rps
	cfg.AuthRateBurst = burst

	return cfg, nil
}

// Development reports whether the process runs with APP_ENV=development.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
