package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"min=0"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string `env:"JWT_SECRET,required" validate:"required,min=32"`
	ResendAPIKey string `env:"RESEND_API_KEY"      validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"         validate:"required_if=Env production,required_if=Env staging"`
	BaseURL      string `env:"BASE_URL"            envDefault:"http://localhost:8080"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	RateLimitReadPerWindow  int64 `env:"RATE_LIMIT_READ"       envDefault:"5" validate:"min=1"`
	RateLimitWritePerWindow int64 `env:"RATE_LIMIT_WRITE"      envDefault:"2" validate:"min=1"`
	RateLimitWindowSec      int   `env:"RATE_LIMIT_WINDOW_SEC" envDefault:"30" validate:"min=1,max=3600"`

	ReminderCron       string `env:"REMINDER_CRON" envDefault:"0 8 * * *" validate:"required"`
	ReminderWindowDays int    `env:"REMINDER_WINDOW_DAYS" envDefault:"7" validate:"min=1,max=366"`

	S3Region    string `env:"S3_REGION"   envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"   envDefault:"contacts-avatars"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY" validate:"required_if=Env production"`
	S3SecretKey string `env:"S3_SECRET_KEY" validate:"required_if=Env production"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// RateLimitWindow returns the fixed-window duration for rate limiting.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

// SlogLevel maps the LOG_LEVEL string onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
