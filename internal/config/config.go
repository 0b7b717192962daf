package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	BackendURL    string        `mapstructure:"BACKEND_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("BACKEND_URL", "http://localhost:8000/api")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CACHE_TTL", "1h")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
