// Package config loads runtime configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"molliebridge/internal/shared/config"
)

// Config is the full runtime configuration tree.
type Config struct {
	Server   config.ServerConfig   `mapstructure:"server"`
	Database config.DatabaseConfig `mapstructure:"database"`
	Logger   config.LoggerConfig   `mapstructure:"logger"`
	Redis    config.RedisConfig    `mapstructure:"redis"`
	Email    config.EmailConfig    `mapstructure:"email"`
	Gateway  config.GatewayConfig  `mapstructure:"gateway"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads config.yaml from the given path (or the working directory when
// empty) and overlays MOLLIEBRIDGE_* environment variables.
func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		v.SetEnvPrefix("MOLLIEBRIDGE")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		setDefaults(v)

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				loadErr = fmt.Errorf("failed to read config file: %w", err)
				return
			}
		}

		c := &Config{}
		if err := v.Unmarshal(c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}

		cfg = c
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return cfg, nil
}

// Get returns the loaded configuration. Load must have been called first.
func Get() *Config {
	if cfg == nil {
		panic("config: Load must be called before Get")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.database", "molliebridge")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("email.smtp_port", 587)

	v.SetDefault("gateway.name", "mollierecurring")
	v.SetDefault("gateway.locale", "en")
	v.SetDefault("gateway.nonce_ttl_seconds", 900)
}
