package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir = "pkg/migrate/migrations"

	// The SQL files target postgres; sqlite databases are prepared with
	// AutoMigrate instead.
	DialectPostgres = "postgres"
)

var (
	dialectOnce sync.Once
	dialectErr  error
)

func useDialect() error {
	dialectOnce.Do(func() {
		dialectErr = goose.SetDialect(DialectPostgres)
	})
	if dialectErr != nil {
		return fmt.Errorf("set goose dialect: %w", dialectErr)
	}
	return nil
}

// Run executes a goose command (up, down, status, ...) against db.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	switch {
	case db == nil:
		return fmt.Errorf("db is required")
	case dir == "":
		return fmt.Errorf("dir is required")
	}
	if err := useDialect(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// CurrentVersion reports the version recorded in the goose version table.
func CurrentVersion(db *sql.DB) (int64, error) {
	if err := useDialect(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read db version: %w", err)
	}
	return version, nil
}

// ParseVersion accepts a YYYYMMDDHHMMSS migration version.
func ParseVersion(raw string) (int64, error) {
	if len(raw) != len(versionLayout) {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", raw, err)
	}
	return version, nil
}

// MigrateToVersion moves the schema up or down until it reaches target.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, target string) error {
	version, err := ParseVersion(target)
	if err != nil {
		return err
	}
	current, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	switch {
	case current < version:
		err = goose.UpToContext(ctx, db, dir, version)
	case current > version:
		err = goose.DownToContext(ctx, db, dir, version)
	}
	if err != nil {
		return fmt.Errorf("migrate from %d to %d: %w", current, version, err)
	}
	return nil
}
