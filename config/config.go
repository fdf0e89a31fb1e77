// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Mail   MailConfig
	Limits LimitConfig
}

type AppConfig struct {
	Environment string
	LogLevel    string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         string
	PublicURL    string // base URL used in verification links
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

// MailConfig holds outbound SMTP credentials. An empty Host disables delivery.
type MailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// LimitConfig holds the per-IP rate limit applied to /register and /login.
type LimitConfig struct {
	RPS   float64
	Burst int
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Load reads envFile (if it exists) and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// a missing .env is fine, the environment may carry everything
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:        getEnv("HOST", ""),
			Port:        strings.TrimPrefix(getEnv("PORT", "3000"), ":"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "fitshare"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Auth: AuthConfig{
			JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
		},
	}

	var err error
	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"TOKEN_TTL", "72h", &cfg.Auth.TokenTTL},
		{"DB_TIMEOUT", "5s", &cfg.Mongo.Timeout},
		{"SERVER_READ_TIMEOUT", "7s", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "120s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getEnv(d.key, d.def)
		if *d.dest, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
	}

	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Limits.Burst, err = getInt("RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}
	rps := getEnv("RATE_LIMIT_RPS", "1")
	if cfg.Limits.RPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", rps, err)
	}

	cfg.Server.PublicURL = getEnv("PUBLIC_URL", "http://localhost:"+cfg.Server.Port)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required values are present and sane.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) == 0 {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.App.LogLevel)
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return errors.New("MONGO_URI and MONGO_DB are required")
	}
	if c.Limits.RPS <= 0 || c.Limits.Burst < 1 {
		return errors.New("rate limit must allow at least one request")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
