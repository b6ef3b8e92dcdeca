package infra

import (
	"fmt"
	"strings"
	"time"

	"stockwise/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection for the given driver ("postgres" or
// "sqlite") and applies the connection pool settings for that driver.
func NewDatabase(driver, dsn, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection: in-memory databases live per connection, and
		// SQLite serializes writers anyway.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("database: enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

func gormLogger(level string) logger.Interface {
	mode := logger.Silent
	switch strings.ToLower(level) {
	case "debug", "trace":
		mode = logger.Info
	case "warn":
		mode = logger.Warn
	case "error":
		mode = logger.Error
	}
	return logger.New(&log.Logger, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  mode,
		IgnoreRecordNotFoundError: true,
	})
}

// RunMigrations creates or updates every table the application uses.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockTransaction{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}

// ClearData removes every row, children first so foreign keys hold.
func ClearData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&model.SaleItem{},
			&model.Sale{},
			&model.StockTransaction{},
			&model.Product{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}
