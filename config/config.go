package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Hub        HubConfig        `yaml:"hub"`
	Retry      RetryConfig      `yaml:"retry"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	ETA        ETAConfig        `yaml:"eta"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTLHours int           `yaml:"token_ttl_hours"`
	TokenTTL      time.Duration `yaml:"-"` // Ignored by YAML parser
}

// HubConfig holds the real-time hub timings.
type HubConfig struct {
	WriteTimeoutSeconds int           `yaml:"write_timeout_seconds"`
	PongTimeoutSeconds  int           `yaml:"pong_timeout_seconds"`
	SendBuffer          int           `yaml:"send_buffer"`
	WriteTimeout        time.Duration `yaml:"-"`
	PongTimeout         time.Duration `yaml:"-"`
}

// RetryConfig bounds retries of transient database failures.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	BackoffSeconds int           `yaml:"backoff_seconds"`
	Backoff        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the push notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// ETAConfig holds arrival-estimate parameters.
type ETAConfig struct {
	AvgSpeedKmh float64 `yaml:"avg_speed_kmh"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 168 // 7 days
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	if cfg.Hub.WriteTimeoutSeconds <= 0 {
		cfg.Hub.WriteTimeoutSeconds = 10
	}
	if cfg.Hub.PongTimeoutSeconds <= 0 {
		cfg.Hub.PongTimeoutSeconds = 60
	}
	if cfg.Hub.SendBuffer <= 0 {
		cfg.Hub.SendBuffer = 256
	}
	cfg.Hub.WriteTimeout = time.Duration(cfg.Hub.WriteTimeoutSeconds) * time.Second
	cfg.Hub.PongTimeout = time.Duration(cfg.Hub.PongTimeoutSeconds) * time.Second

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BackoffSeconds <= 0 {
		cfg.Retry.BackoffSeconds = 1
	}
	cfg.Retry.Backoff = time.Duration(cfg.Retry.BackoffSeconds) * time.Second

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.ETA.AvgSpeedKmh <= 0 {
		cfg.ETA.AvgSpeedKmh = 30 // assumed city driving speed
	}

	return &cfg, nil
}
