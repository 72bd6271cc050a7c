package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	TransportLog     = "log"
	TransportRedis   = "redis"
	TransportWebhook = "webhook"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	Storage           string        `mapstructure:"STORAGE"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32         `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir     string        `mapstructure:"MIGRATIONS_DIR"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	ReminderTransport string        `mapstructure:"REMINDER_TRANSPORT"`
	ReminderQueue     string        `mapstructure:"REMINDER_QUEUE"`
	WebhookURL        string        `mapstructure:"REMINDER_WEBHOOK_URL"`
	WebhookSecret     string        `mapstructure:"REMINDER_WEBHOOK_SECRET"`
	RosterFile        string        `mapstructure:"ROSTER_FILE"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
	Timezone          string        `mapstructure:"TIMEZONE"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit         string        `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "STORAGE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"MIGRATIONS_DIR", "REDIS_URL", "REMINDER_TRANSPORT", "REMINDER_QUEUE",
	"REMINDER_WEBHOOK_URL", "REMINDER_WEBHOOK_SECRET",
	"ROSTER_FILE", "CORS_ORIGINS", "TIMEZONE", "REQUEST_TIMEOUT", "BODY_LIMIT",
}

// Load reads the environment and an optional .env file in the working
// directory. Call Validate before using the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE", StorageMemory)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REMINDER_TRANSPORT", TransportLog)
	v.SetDefault("REMINDER_QUEUE", "clinic:reminders")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.Storage = strings.ToLower(cfg.Storage)
	cfg.ReminderTransport = strings.ToLower(cfg.ReminderTransport)

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) UsePostgres() bool {
	return c.Storage == StoragePostgres
}

// Location resolves TIMEZONE. Reference instants without an offset are read
// in this location.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE is %q", StoragePostgres)
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage)
	}

	switch c.ReminderTransport {
	case TransportLog:
	case TransportRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when REMINDER_TRANSPORT is %q", TransportRedis)
		}
	case TransportWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("REMINDER_WEBHOOK_URL is required when REMINDER_TRANSPORT is %q", TransportWebhook)
		}
	default:
		return fmt.Errorf("REMINDER_TRANSPORT must be one of %q, %q, %q; got %q", TransportLog, TransportRedis, TransportWebhook, c.ReminderTransport)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}
