package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"activitytracker/internal/auth"
	"activitytracker/internal/config"
	"activitytracker/internal/db"
	"activitytracker/internal/gui"
	"activitytracker/internal/logger"
	"activitytracker/internal/tracker"

	"github.com/joho/godotenv"
)

func main() {
	log := logger.NewConsole(os.Getenv("LOG_LEVEL"))

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	// Load configuration; missing backend credentials abort here with a
	// message naming them.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = logger.NewConsole(cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	database, err := db.New(ctx, cfg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to backend")
	}
	defer database.Close()

	// Open the local credential store
	credPath, err := auth.DefaultPath()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve credential path")
	}
	creds, err := auth.NewStore(credPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open credential store")
	}

	svc := tracker.NewService(database, cfg.Location(), log)
	application := gui.New(ctx, cfg, svc, creds, log)

	// finalize closes any running session, bounded so shutdown never hangs
	// on a dead network.
	finalize := func(timeout time.Duration) {
		finalizeCtx, finalizeCancel := context.WithTimeout(context.Background(), timeout)
		defer finalizeCancel()
		if _, err := svc.FinishAllOpen(finalizeCtx); err != nil {
			log.Warn().Err(err).Msg("could not close all running sessions")
		}
	}

	// Closing the window finalizes first, then quits.
	application.Window().SetCloseIntercept(func() {
		go func() {
			finalize(5 * time.Second)
			application.Quit()
		}()
	})

	// Set up signal handling
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-signals
		log.Info().Str("signal", s.String()).Msg("received signal")
		finalize(3 * time.Second)
		cancel()
		application.Quit()
	}()

	// Run the UI (blocking)
	application.Run()

	log.Info().Msg("application shutdown complete")
}
