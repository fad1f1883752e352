package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

type SQLite struct {
	Builder squirrel.StatementBuilderType
	DB      *sql.DB
}

func New(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite - New - os.MkdirAll: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite - New - sql.Open: %w", err)
	}

	// a single writer avoids SQLITE_BUSY between the consumer loops
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite - New - apply %q: %w", pragma, err)
		}
	}

	return &SQLite{
		Builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		DB:      db,
	}, nil
}

func (s *SQLite) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}

	return nil
}
