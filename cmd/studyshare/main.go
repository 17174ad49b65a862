package main

import (
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/adrp/studyshare/internal/cli"
	"github.com/adrp/studyshare/internal/config"
	"github.com/adrp/studyshare/internal/db"
	"github.com/adrp/studyshare/internal/schema"
	"github.com/adrp/studyshare/internal/services"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	store := db.NewManager(cfg.DatabasePath, log)
	store.BusyTimeout = time.Duration(cfg.BusyTimeoutMS) * time.Millisecond
	store.MaxRetries = cfg.AcquireRetries
	store.RetryUnit = time.Duration(cfg.RetryUnitSeconds) * time.Second

	err = store.With(func(handle *sqlx.DB) error {
		return schema.Ensure(handle, cfg, log)
	})
	if err != nil {
		log.Error().Err(err).Msg("store initialization failed")
		os.Exit(1)
	}

	rec := services.NewRecorder(cfg.DatabasePath, log)
	cli.New(os.Stdin, os.Stdout, store, cfg, rec, log).Run()
}
