package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. RECALL_SERVER_PORT.
const EnvPrefix = "RECALL"

var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.shutdown_timeout": "15s",
	"server.request_timeout":  "30s",
	"database.max_open_conns": 25,
	"database.max_idle_conns": 5,
	"auth.token_lifetime":     "1h",
	"redis.url":               "",
	"adaptation.schedule":     true,
	"adaptation.run_at":       "03:00",
	"adaptation.worker_count": 4,
	"adaptation.lock_ttl":     "30m",
}

// Keys without defaults still need binding so Unmarshal sees them.
var envOnly = []string{
	"database.url",
	"auth.jwt_secret",
}

// Load reads configuration from an optional config file and the environment.
// Environment variables take precedence over the file. An empty configFile
// searches for config.yaml in the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
