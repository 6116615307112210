package main

import (
	"context"
	"os"

	"activitytracker/internal/config"
	"activitytracker/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	log := logger.NewConsole(os.Getenv("LOG_LEVEL"))

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer pool.Close()

	// Read and execute migration file
	migration, err := os.ReadFile("migrations/001_initial_schema.sql")
	if err != nil {
		log.Fatal().Err(err).Msg("error reading migration file")
	}

	if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
		log.Fatal().Err(err).Msg("error executing migration")
	}

	log.Info().Msg("migration completed successfully")
}
