// Package sqlite writes a cleaned table into a SQLite database using the pure-Go
// modernc driver. Each Write runs in a single transaction: the table is
// (re)created and every record inserted, or nothing changes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ecomclean/internal/storage"
	"ecomclean/internal/table"
)

// Config holds SQLite sink configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.
	//   "file:cleaned.db?_pragma=busy_timeout(5000)"
	//   "cleaned.db"
	DSN string

	// Table is the destination table. "main.orders" style names are accepted.
	Table string

	// Append inserts into an existing table instead of replacing it.
	Append bool
}

// Sink is a SQLite-backed storage.Sink.
type Sink struct {
	db  *sql.DB
	cfg Config
}

// Open connects to cfg.DSN and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Sink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, errors.New("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across statements.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db, cfg: cfg}, nil
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Append: cfg.Append})
	})
}

// DB exposes the underlying handle.
func (s *Sink) DB() *sql.DB { return s.db }

// Write stores t in the configured table.
func (s *Sink) Write(ctx context.Context, t *table.Table) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, errors.New("sqlite: table has no columns")
	}
	create, err := BuildCreateTableSQL(s.cfg.Table, t.Columns)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if !s.cfg.Append {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteFQN(s.cfg.Table)); err != nil {
			return 0, fmt.Errorf("sqlite: drop: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("sqlite: create: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertSQL(s.cfg.Table, t.Columns))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	var inserted int64
	for _, r := range t.Rows {
		for i, v := range r {
			args[i] = bind(v, t.Columns[i].Type)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert row %d: %w", inserted+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close closes the database handle.
func (s *Sink) Close() error { return s.db.Close() }

func bind(v table.Value, typ table.ColumnType) any {
	switch v.Kind() {
	case table.KindString:
		s, _ := v.Str()
		return s
	case table.KindNumber:
		if typ == table.TypeInteger {
			if i, ok := v.Int(); ok {
				return i
			}
		}
		n, _ := v.Num()
		return n
	default:
		return nil
	}
}
