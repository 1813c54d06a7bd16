// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/quizboard/internal/auth"
	"github.com/jason-s-yu/quizboard/internal/cache"
	"github.com/jason-s-yu/quizboard/internal/config"
	"github.com/jason-s-yu/quizboard/internal/game"
	"github.com/jason-s-yu/quizboard/internal/handlers"
	"github.com/jason-s-yu/quizboard/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(stdout)
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	st, err := store.Open(ctx, store.Settings{
		Backend:     cfg.StoreBackend,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer st.Close()
	logger.WithField("backend", cfg.StoreBackend).Info("store ready")

	opts := game.Options{Store: st, Logger: logger}
	if cfg.RandomSeed != 0 {
		opts.Rand = rand.New(rand.NewSource(cfg.RandomSeed))
	}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		opts.Actions = cache.NewActionLog(rdb, cfg.ActionLogQueue)
		logger.WithField("queue", cfg.ActionLogQueue).Info("publishing board actions")
	}

	sess := game.NewSession(opts)
	if _, err := sess.Load(ctx); err != nil {
		return fmt.Errorf("loading board: %w", err)
	}

	hostAuth, err := auth.NewHostAuth(cfg.HostPasswordHash, cfg.TokenExpireTime)
	if err != nil {
		return fmt.Errorf("setting up host auth: %w", err)
	}
	if !hostAuth.Enabled() {
		logger.Warn("HOST_PASSWORD_HASH is empty, host console is open")
	}

	bs := handlers.NewBoardServer(sess, hostAuth, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           bs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
