package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"stockwise/internal/config"
	"stockwise/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// loadConfig reads the environment and sets up the global logger.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	setupLogger(cfg)
	return cfg, nil
}

// setupLogger writes JSON in production and a console format elsewhere.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// openDatabase connects and, when AUTO_MIGRATE is on or force is set,
// brings the schema up to date.
func openDatabase(cfg *config.Config, force bool) (*gorm.DB, error) {
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DatabaseDriver, err)
	}
	if cfg.AutoMigrate || force {
		if err := infra.RunMigrations(db); err != nil {
			closeDatabase(db)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
