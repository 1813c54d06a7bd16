// cmd/historian/main.go drains the board action queue into Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/quizboard/internal/cache"
	"github.com/jason-s-yu/quizboard/internal/config"
	"github.com/jason-s-yu/quizboard/internal/historian"
	"github.com/jason-s-yu/quizboard/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.RedisURL == "" || cfg.DatabaseURL == "" {
		return fmt.Errorf("historian needs both REDIS_URL and DATABASE_URL")
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()

	// OpenPostgres also applies the board_actions migration.
	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pg.Close()

	hs := historian.NewService(
		historian.NewRedisQueue(rdb, cfg.ActionLogQueue),
		historian.NewPostgresSink(pg.Pool()),
		cfg.HistorianBatchSize,
		cfg.HistorianFlush,
		logger.WithField("component", "historian"),
	)
	return hs.Run(ctx)
}
