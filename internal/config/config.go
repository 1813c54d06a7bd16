// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr string       `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel logrus.Level `env:"LOG_LEVEL" envDefault:"info"`

	// Store backend: sqlite, postgres, redis or memory.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"quizboard.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisURL     string `env:"REDIS_URL"`

	// Action log. Publishing is off when REDIS_URL is empty.
	ActionLogQueue     string        `env:"ACTION_LOG_QUEUE" envDefault:"quizboard_actions"`
	HistorianBatchSize int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlush     time.Duration `env:"HISTORIAN_FLUSH" envDefault:"500ms"`

	// Host console. An empty hash leaves the console open.
	HostPasswordHash string        `env:"HOST_PASSWORD_HASH"`
	TokenExpireTime  time.Duration `env:"TOKEN_EXPIRE_TIME" envDefault:"72h"`

	// RandomSeed fixes round generation when non-zero.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
