package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is assembled once at startup and handed to the app explicitly; no
// package-level registry is consulted afterwards.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"` // gin mode: debug, release, test
	} `mapstructure:"server"`
	Database struct {
		Driver string `mapstructure:"driver"` // postgres or sqlite
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	JWT struct {
		Secret         string `mapstructure:"secret"`
		AccessTTLMin   int    `mapstructure:"access_ttl_min"`
		RefreshTTLDays int    `mapstructure:"refresh_ttl_days"`
	} `mapstructure:"jwt"`
	Upload struct {
		BaseDir string `mapstructure:"base_dir"`
	} `mapstructure:"upload"`
}

// loadConfig reads config.yaml if present and applies ECONO_* environment
// overrides (e.g. ECONO_DATABASE_DSN, ECONO_JWT_SECRET).
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl_min", 60)
	v.SetDefault("jwt.refresh_ttl_days", 30)
	v.SetDefault("upload.base_dir", "uploads")

	v.SetEnvPrefix("ECONO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// the config file is optional; env and defaults may be enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-insecure-secret-change" // development fallback
	}
	return &cfg, nil
}
