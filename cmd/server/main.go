package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"roomrelay/internal/app"
	"roomrelay/internal/relay"
	"roomrelay/internal/server"
	"roomrelay/internal/storage"
)

func main() {
	// Local .env for development; production reads the real environment.
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	ctx := context.Background()

	var listStore relay.ListStore
	if cfg.RedisAddr != "" {
		rl, err := storage.NewRedisList(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey, logger)
		if err != nil {
			logger.Error("redis connect", "addr", cfg.RedisAddr, "err", err)
			log.Fatal(err)
		}
		defer rl.Close()
		listStore = rl
		logger.Info("room persistence enabled", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
	} else {
		logger.Info("room persistence disabled")
	}

	rooms, err := relay.NewStore(ctx, logger, cfg.MaxHistory, listStore)
	if err != nil {
		logger.Error("init room store", "err", err)
		log.Fatal(err)
	}
	defer rooms.Close()

	registry := relay.NewRegistry(logger)
	fanout := relay.NewFanout(logger, registry, rooms)
	disp := server.NewDispatcher(logger, registry, rooms, fanout)

	srv := server.New(cfg.Addr, disp, registry, rooms)

	// Graceful shutdown on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("roomrelay listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "err", err)
			log.Fatal(err)
		}
	}()

	<-stop
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("server stopped")
}
