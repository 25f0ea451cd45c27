// Package csvfile writes a cleaned table as delimited text. The file is written
// to a temporary sibling and renamed into place, so readers never observe a
// partial output and a failed run leaves any previous file untouched.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ecomclean/internal/storage"
	"ecomclean/internal/table"
)

// Sink writes one file per Write call.
type Sink struct {
	path  string
	comma rune
}

// New returns a sink writing to path with the given delimiter (',' when zero).
func New(path string, comma rune) (*Sink, error) {
	if path == "" {
		return nil, errors.New("csvfile: path must not be empty")
	}
	if comma == 0 {
		comma = ','
	}
	return &Sink{path: path, comma: comma}, nil
}

func init() {
	storage.Register("csv", func(_ context.Context, cfg storage.Config) (storage.Sink, error) {
		return New(cfg.Path, cfg.Comma)
	})
}

// Path returns the destination file.
func (s *Sink) Path() string { return s.path }

// Write emits the header row followed by every record in order. Absent cells
// are written empty; numbers use the column's storage type.
func (s *Sink) Write(ctx context.Context, t *table.Table) (n int64, err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("csvfile: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("csvfile: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	w.Comma = s.comma
	if err := w.Write(t.Names()); err != nil {
		return 0, fmt.Errorf("csvfile: write header: %w", err)
	}

	line := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		for j, v := range r {
			line[j] = v.Format(t.Columns[j].Type)
		}
		if err := w.Write(line); err != nil {
			return 0, fmt.Errorf("csvfile: write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("csvfile: flush: %w", err)
	}
	// CreateTemp makes the file owner-only; the output is a regular data file.
	if err := tmp.Chmod(0o644); err != nil {
		return 0, fmt.Errorf("csvfile: chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("csvfile: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("csvfile: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return 0, fmt.Errorf("csvfile: rename: %w", err)
	}
	return int64(t.Len()), nil
}

// Close is a no-op; files are closed by Write.
func (s *Sink) Close() error { return nil }
