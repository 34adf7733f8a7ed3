package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig reads config.{APP_ENV}.yaml (or CONFIG_PATH) and merges
// AUTH_-prefixed environment variables over it.
func LoadConfig() (*Config, error) {
	setDefaults()

	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(fmt.Sprintf("config.%s", env))
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/auth-service")
	}

	viper.SetEnvPrefix("AUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine, environment variables take over.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Environment = env

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
	viper.SetDefault("server.shutdown_timeout", 15*time.Second)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("mfa.totp_issuer_name", "ShopLite")
	viper.SetDefault("mfa.code_ttl", 15*time.Minute)
	viper.SetDefault("mfa.store_timeout", 5*time.Second)
	viper.SetDefault("jwt.elevation_ttl", 24*time.Hour)
	viper.SetDefault("security.rate_limiting.enabled", true)
	viper.SetDefault("security.rate_limiting.verify_per_user.enabled", true)
	viper.SetDefault("security.rate_limiting.verify_per_user.limit", 5)
	viper.SetDefault("security.rate_limiting.verify_per_user.window", 15*time.Minute)
	viper.SetDefault("security.rate_limiting.send_per_user.enabled", true)
	viper.SetDefault("security.rate_limiting.send_per_user.limit", 3)
	viper.SetDefault("security.rate_limiting.send_per_user.window", 15*time.Minute)
}
