package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "PortfolioAPI"
	defaultAppEnv         = "development"
	defaultPort           = "5000"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultConvertTimeout = 60 * time.Second
	defaultUploadDir      = "uploads"
	shutdownSecondsEnvVar = "SHUTDOWN_TIMEOUT_SECONDS"
	convertTimeoutEnvVar  = "CONVERT_TIMEOUT_SECONDS"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	CORSOrigins    string
	UploadDir      string
	ShutdownPeriod time.Duration
	ConvertTimeout time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CORSOrigins:    os.Getenv("CORS_ORIGINS"),
		UploadDir:      getEnv("UPLOAD_DIR", defaultUploadDir),
		ShutdownPeriod: defaultShutdownDelay,
		ConvertTimeout: defaultConvertTimeout,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv(convertTimeoutEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", convertTimeoutEnvVar, err)
		}
		cfg.ConvertTimeout = time.Duration(seconds) * time.Second
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	// REDIS_URL is optional: without it the OTP rate limiter is a no-op and
	// the health check only probes Postgres.

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
