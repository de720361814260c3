package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	AuthConfig      *AuthConfig
	DatabaseConfig  *DatabaseConfig
	RateLimitConfig *RateLimitConfig
	CronConfig      *CronConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		AuthConfig:      &AuthConfig{},
		DatabaseConfig:  &DatabaseConfig{},
		RateLimitConfig: &RateLimitConfig{},
		CronConfig:      &CronConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
