// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for the
// supported dialects (SQLite via a pure Go driver, PostgreSQL, MySQL),
// connection pool tuning, schema migrations and demo seed data.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-kennel-backend/internal/config"
	"github.com/tbourn/go-kennel-backend/internal/domain"
)

// sqlitePragmas run on every new pooled connection.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// OpenDB opens the database selected by cfg.Driver, tunes the pool and
// installs the OpenTelemetry GORM plugin.
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("gorm tracing plugin: %w", err)
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database with the pragmas the
// service relies on (foreign keys on, WAL, busy timeout).
func OpenSQLite(path string) (*gorm.DB, error) {
	return OpenDB(config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            path,
		MaxOpenConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
	})
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite", "":
		// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// sqliteDSN appends _pragma parameters so every pooled connection gets them,
// not only the one that happened to run a PRAGMA statement.
func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// AutoMigrate creates or updates the kennel schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Person{},
		&domain.Dog{},
		&domain.Idempotency{},
	)
}

// Ping runs the configured validation query against the pool.
func Ping(ctx context.Context, db *gorm.DB, query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("empty validation query")
	}
	var v any
	err := db.WithContext(ctx).Raw(query).Row().Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		// e.g. "SELECT 1 FROM people" on an empty table still proves connectivity.
		return nil
	}
	return err
}

// Seed inserts the demo owner Coda and her dog Raf. Existing rows are kept.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, email := "Coda", "coda@example.com"
		birthday := time.Date(1979, time.January, 2, 0, 22, 0, 0, time.UTC)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.Person{Name: owner, Email: &email, Birthday: &birthday}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(&domain.Dog{Name: "Raf", OwnerName: &owner}).Error
	})
}
