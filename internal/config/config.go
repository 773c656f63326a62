package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

// RedisConfig enables the odds cache and the pub/sub notifier. An empty
// Addr disables both.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" default:""`
	Password string        `env:"REDIS_PASSWORD" default:""`
	DB       int           `env:"REDIS_DB" default:"0"`
	OddsTTL  time.Duration `env:"REDIS_ODDS_TTL" default:"10m"`
}

// KafkaConfig enables the event publisher. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" default:""`
	Topic   string   `env:"KAFKA_TOPIC" default:"wagerledger.events"`
}

type MetricsConfig struct {
	Port uint16 `env:"METRICS_PORT" default:"9090"`
}

// WageringConfig bounds the retries of contended ledger transactions.
type WageringConfig struct {
	RetryAttempts  int           `env:"WAGER_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `env:"WAGER_RETRY_BASE_DELAY" default:"20ms"`
	RetryMaxDelay  time.Duration `env:"WAGER_RETRY_MAX_DELAY" default:"500ms"`
}
