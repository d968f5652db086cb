// Package config loads application configuration from a YAML file with
// environment variable overrides, applies defaults, and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port" validate:"gt=0,lte=65535"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host" validate:"required"`
		Port     int    `yaml:"port" validate:"gt=0"`
		User     string `yaml:"user" validate:"required"`
		Password string `yaml:"password"`
		Name     string `yaml:"name" validate:"required"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`

	Fetch struct {
		BaseURL           string `yaml:"base_url" validate:"required,url"`
		UserAgent         string `yaml:"user_agent" validate:"required"`
		TimeoutSeconds    int    `yaml:"timeout_seconds" validate:"gt=0"`
		MaxRetries        int    `yaml:"max_retries" validate:"gte=0"`
		RetryDelaySeconds int    `yaml:"retry_delay_seconds" validate:"gt=0"`
		PageSize          int    `yaml:"page_size" validate:"gt=0"`
		CacheTTLMinutes   int    `yaml:"cache_ttl_minutes" validate:"gt=0"`
		HistoryDays       int    `yaml:"history_days" validate:"gt=0"`
		RateLimit         struct {
			MaxRequests   int `yaml:"max_requests" validate:"gt=0"`
			WindowSeconds int `yaml:"window_seconds" validate:"gt=0"`
		} `yaml:"rate_limit"`
	} `yaml:"fetch"`

	Dirs struct {
		Raw        string `yaml:"raw" validate:"required"`
		Parsed     string `yaml:"parsed" validate:"required"`
		DeadLetter string `yaml:"deadletter" validate:"required"`
		Cache      string `yaml:"cache" validate:"required"`
	} `yaml:"dirs"`

	Schedule struct {
		UpdateMinutes      int `yaml:"update_minutes" validate:"gt=0"`
		FileProcessMinutes int `yaml:"file_process_minutes" validate:"gt=0"`
		DeadLetterHours    int `yaml:"dead_letter_hours" validate:"gt=0"`
	} `yaml:"schedule"`

	Cache struct {
		Backend   string `yaml:"backend" validate:"oneof=fs redis"`
		RedisAddr string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	} `yaml:"cache"`

	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic   string   `yaml:"topic" validate:"required_if=Enabled true"`
	} `yaml:"kafka"`

	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file (absence is fine), applies environment
// variable overrides and defaults, then validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("FETCH_BASE_URL"); v != "" {
		c.Fetch.BaseURL = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Name == "" {
		c.Database.Name = "creampie"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Fetch.BaseURL == "" {
		c.Fetch.BaseURL = "https://finance.yahoo.com"
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (compatible; creampie/1.0)"
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = 30
	}
	if c.Fetch.MaxRetries == 0 {
		c.Fetch.MaxRetries = 3
	}
	if c.Fetch.RetryDelaySeconds == 0 {
		c.Fetch.RetryDelaySeconds = 2
	}
	if c.Fetch.PageSize == 0 {
		c.Fetch.PageSize = 100
	}
	if c.Fetch.CacheTTLMinutes == 0 {
		c.Fetch.CacheTTLMinutes = 60
	}
	if c.Fetch.HistoryDays == 0 {
		c.Fetch.HistoryDays = 30
	}
	if c.Fetch.RateLimit.MaxRequests == 0 {
		c.Fetch.RateLimit.MaxRequests = 10
	}
	if c.Fetch.RateLimit.WindowSeconds == 0 {
		c.Fetch.RateLimit.WindowSeconds = 60
	}
	if c.Dirs.Raw == "" {
		c.Dirs.Raw = "data/raw"
	}
	if c.Dirs.Parsed == "" {
		c.Dirs.Parsed = "data/parsed"
	}
	if c.Dirs.DeadLetter == "" {
		c.Dirs.DeadLetter = "data/deadletter"
	}
	if c.Dirs.Cache == "" {
		c.Dirs.Cache = "data/cache"
	}
	if c.Schedule.UpdateMinutes == 0 {
		c.Schedule.UpdateMinutes = 5
	}
	if c.Schedule.FileProcessMinutes == 0 {
		c.Schedule.FileProcessMinutes = 10
	}
	if c.Schedule.DeadLetterHours == 0 {
		c.Schedule.DeadLetterHours = 24
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "fs"
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		c.Kafka.Topic = "price-batches"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Fetch.RetryDelaySeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Fetch.CacheTTLMinutes) * time.Minute
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Fetch.RateLimit.WindowSeconds) * time.Second
}

func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.Schedule.UpdateMinutes) * time.Minute
}

func (c *Config) FileProcessInterval() time.Duration {
	return time.Duration(c.Schedule.FileProcessMinutes) * time.Minute
}

func (c *Config) DeadLetterInterval() time.Duration {
	return time.Duration(c.Schedule.DeadLetterHours) * time.Hour
}
