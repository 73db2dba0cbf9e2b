package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Adaptation AdaptationConfig `mapstructure:"adaptation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// RequestTimeout bounds each HTTP request. Zero disables it.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains authentication settings. Tokens are issued elsewhere;
// the secret is only used to verify them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetime bounds tokens minted by `recallctl token` for local use.
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// RedisConfig configures the distributed lock for the daily batch. An empty
// URL selects the in-process lock.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AdaptationConfig controls the daily adaptive retuning job.
type AdaptationConfig struct {
	// Schedule enables the in-process daily trigger in the server. Disable it
	// when an external cron runs `recallctl adapt` instead.
	Schedule    bool          `mapstructure:"schedule"`
	RunAt       string        `mapstructure:"run_at" validate:"required,datetime=15:04"`
	WorkerCount int           `mapstructure:"worker_count" validate:"gte=1,lte=64"`
	LockTTL     time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
}
