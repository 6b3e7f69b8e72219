package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"

	"github.com/smukkama/weather-summary/internal/api"
	"github.com/smukkama/weather-summary/internal/database"
	"github.com/smukkama/weather-summary/internal/index"
	"github.com/smukkama/weather-summary/internal/logging"
	"github.com/smukkama/weather-summary/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, "api")
	slog.SetDefault(logger)

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DataSourceName())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsDir()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var idx api.IndexReader
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, index endpoints disabled", "addr", cfg.Redis.Addr, "error", err)
	} else {
		idx = index.NewStore(rdb, cfg.Redis.IndexKey)
	}
	cancel()

	router := api.NewRouter(api.NewHandler(db, idx, logger))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           handlers.LoggingHandler(os.Stdout, router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
