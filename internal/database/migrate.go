package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every pending migration embedded in the binary. The
// schema version is tracked by goose in goose_db_version.
func (db *DB) Migrate(ctx context.Context) (err error) {
	defer recoverMigrationAbort(&err)

	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	slog.Info("database schema migrated", "version", version)
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "migrations")
}

// Fatalf must not return: goose keeps going after it otherwise. The panic
// unwinds to Migrate, which turns it back into an error.
func (gooseLogger) Fatalf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	slog.Error(msg, "component", "migrations")
	panic(migrationAbort{msg: msg})
}

type migrationAbort struct {
	msg string
}

func recoverMigrationAbort(err *error) {
	r := recover()
	if r == nil {
		return
	}
	abort, ok := r.(migrationAbort)
	if !ok {
		panic(r)
	}
	*err = fmt.Errorf("migration aborted: %s", abort.msg)
}
