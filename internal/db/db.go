// Package db owns the Postgres connection used for review history and keeps
// its schema at the version embedded in the binary.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/code-reviewer/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const pingTimeout = 5 * time.Second

// ErrDirtySchema means an earlier migration stopped halfway. The reviews and
// issues tables are left alone until someone runs "migrate force".
var ErrDirtySchema = errors.New("review schema is dirty")

// DB is the review history connection pool.
type DB struct {
	*sqlx.DB
}

// DSN builds a lib/pq connection string from cfg. TLS is off unless sslmode is set.
func DSN(cfg *config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslMode)
}

// Open connects to the review database and brings its schema up to date.
// The returned func closes the pool.
func Open(cfg *config.DBConfig, logger *slog.Logger) (*DB, func(), error) {
	conn, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open review database: %w", err)
	}
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, func() {}, fmt.Errorf("review database at %s:%d is unreachable: %w", cfg.Host, cfg.Port, err)
	}

	db := &DB{DB: conn}
	if err := db.Migrate(logger); err != nil {
		_ = conn.Close()
		return nil, func() {}, err
	}

	return db, func() {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close review database", "error", err)
		}
	}, nil
}

// Migrate applies the embedded reviews/issues migrations that are not yet applied.
func (db *DB) Migrate(logger *slog.Logger) error {
	m, err := db.migrator()
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err := checkVersion(dirty, err); err != nil {
		return err
	}
	logger.Debug("review schema", "version", version)

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		return nil
	case err != nil:
		return fmt.Errorf("failed to migrate review schema: %w", err)
	}
	after, _, _ := m.Version()
	logger.Info("migrated review schema", "from", version, "to", after)
	return nil
}

// checkVersion accepts an empty database and rejects a dirty one.
func checkVersion(dirty bool, err error) error {
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read review schema version: %w", err)
	}
	if dirty {
		return ErrDirtySchema
	}
	return nil
}

func (db *DB) migrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	target, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
