// Command nestegg runs the planner daemon: the goal store, its file-backed
// state, and the local JSON API the mobile UI talks to. When an AMQP broker
// is configured, every goal change is also published for the backend mirror.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nestegg/internal/amqp"
	"nestegg/internal/config"
	nhttp "nestegg/internal/http"
	"nestegg/internal/kv"
	"nestegg/internal/log"
	"nestegg/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	stateFile, err := kv.OpenFile(filepath.Join(cfg.DataDir, "nestegg.json"))
	if err != nil {
		logger.Error("Failed to open state file", log.FieldError, err)
		os.Exit(1)
	}

	// The broker is optional: without it the planner runs standalone and
	// the backend mirror simply receives nothing.
	var pub store.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Broker unavailable, running without mirror sync", log.FieldError, err)
		} else {
			defer client.Close()
			pub = amqp.NewGoalPublisher(client, cfg.SyncUserID)
			logger.Info("Connected to broker", "exchange", cfg.AMQPExchange)
		}
	}

	goals := store.New(stateFile, pub)
	snap, err := goals.Load(context.Background())
	if err != nil {
		logger.Error("Failed to load saved state", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("State loaded", "goals", len(snap.Goals), log.FieldIncome, snap.Income)

	srv := nhttp.NewServer(":"+cfg.Port, goals, stateFile, cfg.AllowedOrigins)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting planner", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Planner stopped gracefully")
}
