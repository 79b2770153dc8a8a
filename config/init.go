package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

type Config struct {
	AppConfig          *AppConfig
	Logger             *logger.Config
	Tracing            *tracing.JaegerConfig
	AWSConfig          *AWSConfig
	OpenRouterConfig   *OpenRouterConfig
	NotificationConfig *NotificationConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:          &AppConfig{},
		Logger:             &logger.Config{},
		Tracing:            &tracing.JaegerConfig{},
		AWSConfig:          &AWSConfig{},
		OpenRouterConfig:   &OpenRouterConfig{},
		NotificationConfig: &NotificationConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading receipt-processor config: %v", err)
	}

	return config, nil
}
