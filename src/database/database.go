package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/username/bankconv/src/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the audit database opened by InitDB. It stays nil when auditing is disabled.
var DB *sql.DB

// Open connects to the SQLite file at databasePath with WAL mode and a busy timeout.
func Open(databasePath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}

	// Limit open connections to 1 for SQLite to avoid locking issues
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// InitDB opens the database, applies migrations and stores the handle in DB.
func InitDB(databasePath string) error {
	db, err := Open(databasePath)
	if err != nil {
		return err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return err
	}
	DB = db
	logger.FromContext(context.TODO()).Info("Audit database ready", "path", databasePath)
	return nil
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	log := logger.FromContext(context.TODO())
	log.Info("Applying database migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No new database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("Database migrations applied successfully.")
	return nil
}
