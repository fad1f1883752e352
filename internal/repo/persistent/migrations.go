package persistent

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/fiapx/video-orchestrator/pkg/postgres"
	"github.com/fiapx/video-orchestrator/pkg/sqlite"
)

//go:embed migrations
var migrationFS embed.FS

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

type migration struct {
	version string
	sql     string
}

func loadMigrations(dialect string) ([]migration, error) {
	dir := path.Join("migrations", dialect)

	entries, err := migrationFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loadMigrations - migrationFS.ReadDir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loadMigrations - migrationFS.ReadFile %s: %w", name, err)
		}
		migrations = append(migrations, migration{
			version: strings.TrimSuffix(name, ".sql"),
			sql:     string(data),
		})
	}

	return migrations, nil
}

// MigratePostgres applies pending migrations in a single transaction and
// returns the versions it applied.
func MigratePostgres(ctx context.Context, pg *postgres.Postgres) ([]string, error) {
	migrations, err := loadMigrations(dialectPostgres)
	if err != nil {
		return nil, fmt.Errorf("MigratePostgres: %w", err)
	}

	var applied []string

	err = pg.WithinTransaction(ctx, func(ctx context.Context) error {
		executor := pg.GetExecutor(ctx)

		_, err := executor.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
		if err != nil {
			return fmt.Errorf("ensure schema_migrations: %w", err)
		}

		for _, m := range migrations {
			var count int
			err = executor.QueryRow(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = $1", m.version).Scan(&count)
			if err != nil {
				return fmt.Errorf("check migration %s: %w", m.version, err)
			}
			if count > 0 {
				continue
			}

			if _, err = executor.Exec(ctx, m.sql); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.version, err)
			}
			if _, err = executor.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
				return fmt.Errorf("record migration %s: %w", m.version, err)
			}
			applied = append(applied, m.version)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("MigratePostgres - pg.WithinTransaction: %w", err)
	}

	return applied, nil
}

// MigrateSQLite applies pending migrations in a single transaction.
func MigrateSQLite(ctx context.Context, db *sqlite.SQLite) ([]string, error) {
	migrations, err := loadMigrations(dialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("MigrateSQLite: %w", err)
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("MigrateSQLite - db.BeginTx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return nil, fmt.Errorf("MigrateSQLite - ensure schema_migrations: %w", err)
	}

	var applied []string
	for _, m := range migrations {
		var version string
		err = tx.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = ?", m.version).Scan(&version)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("MigrateSQLite - check migration %s: %w", m.version, err)
		}

		if _, err = tx.ExecContext(ctx, m.sql); err != nil {
			return nil, fmt.Errorf("MigrateSQLite - apply migration %s: %w", m.version, err)
		}
		if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return nil, fmt.Errorf("MigrateSQLite - record migration %s: %w", m.version, err)
		}
		applied = append(applied, m.version)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("MigrateSQLite - tx.Commit: %w", err)
	}

	return applied, nil
}
