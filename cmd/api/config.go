package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/wagerledger/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"API_PORT" default:"8080"`
	ShutdownTimeout time.Duration `env:"API_SHUTDOWN_TIMEOUT" default:"15s"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	AppEnv          string        `env:"APP_ENV" default:"PROD"`

	Postgres config.PostgresConfig
	Redis    config.RedisConfig
	Kafka    config.KafkaConfig
	Metrics  config.MetricsConfig
	Wagering config.WageringConfig
}
