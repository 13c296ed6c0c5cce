// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Dtheapp/lockerroomlink/internal/config"
	"github.com/Dtheapp/lockerroomlink/internal/maintenance"
	"github.com/Dtheapp/lockerroomlink/internal/store"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	st, err := store.Open(cfg.Database.Filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer st.Close()

	server := newServer(cfg, st)

	var sweeper *maintenance.Sweeper
	if cfg.Maintenance.Enabled {
		interval, err := cfg.SweepEvery()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid sweep interval")
		}
		sweeper, err = maintenance.New(st, interval)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create maintenance sweeper")
		}
		sweeper.Start()
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if sweeper != nil {
			if err := sweeper.Stop(); err != nil {
				log.Error().Err(err).Msg("Sweeper shutdown error")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
