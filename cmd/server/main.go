// Package main is the entry point for the quantum entanglement simulation
// service. It wires the measurement core behind an HTTP API consumed by the
// display layer, plus a periodic re-preparation tick and a live event feed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azimonti/quantum-entanglement-simulation/internal/config"
	"github.com/azimonti/quantum-entanglement-simulation/internal/events"
	"github.com/azimonti/quantum-entanglement-simulation/internal/scheduler"
	"github.com/azimonti/quantum-entanglement-simulation/internal/server"
	"github.com/azimonti/quantum-entanglement-simulation/internal/session"
	"github.com/azimonti/quantum-entanglement-simulation/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting quantum entanglement simulation service")

	// Event bus connecting the core to the live feed.
	bus := events.NewBus(log)

	// Session registry; sessions own their engine, RNG and statistics.
	sessions := session.NewManager(log, bus)

	// Periodic re-preparation tick for continuous single-qubit sessions.
	sched := scheduler.New(sessions, log)
	if err := sched.SchedulePreparation(cfg.PrepareInterval); err != nil {
		log.Fatal().Err(err).Msg("Failed to register preparation tick")
	}
	sched.Start()

	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Cfg:      cfg,
		Sessions: sessions,
		Bus:      bus,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop scheduling further ticks; in-flight jobs finish first.
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
