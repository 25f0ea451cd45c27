// Package rejectlog writes the records removed by cleaning stages to a CSV
// file, one line per record, prefixed with the stage and the reason.
package rejectlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ecomclean/internal/table"
	"ecomclean/internal/transformer/builtin"
)

// Writer collects rejected records during a run and writes them on Commit.
// Nothing touches the filesystem before Commit, so a run that fails earlier
// leaves no rejects file behind.
//
// The header (stage, reason, then the record's column names) is taken from
// the first record added; an empty log holds only "stage,reason".
type Writer struct {
	path   string
	rows   []builtin.RejectedRow
	counts map[string]int
}

// New returns a Writer for path.
func New(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("rejectlog: path is required")
	}
	return &Writer{path: path, counts: make(map[string]int)}, nil
}

// Path returns the file written by Commit.
func (w *Writer) Path() string { return w.path }

// Add records one rejected row. It fits builtin stage Reject hooks.
func (w *Writer) Add(r builtin.RejectedRow) {
	w.counts[r.Stage+": "+r.Reason]++
	w.rows = append(w.rows, r)
}

// Total returns the number of rows added.
func (w *Writer) Total() int { return len(w.rows) }

// Reason is a count of rejected rows for one "stage: reason" key.
type Reason struct {
	Key   string
	Count int
}

// Reasons returns per-reason counts, most frequent first.
func (w *Writer) Reasons() []Reason {
	out := make([]Reason, 0, len(w.counts))
	for k, n := range w.counts {
		out = append(out, Reason{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Commit writes every added record to Path through a temporary file in the
// same directory, replacing any previous file in one rename.
func (w *Writer) Commit() (err error) {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("rejectlog: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("rejectlog: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := csv.NewWriter(tmp)
	if err := cw.Write(w.header()); err != nil {
		return fmt.Errorf("rejectlog: write header: %w", err)
	}
	for i, r := range w.rows {
		if err := cw.Write(line(r)); err != nil {
			return fmt.Errorf("rejectlog: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("rejectlog: flush %s: %w", w.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("rejectlog: chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("rejectlog: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("rejectlog: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rejectlog: rename: %w", err)
	}
	return nil
}

func (w *Writer) header() []string {
	h := []string{"stage", "reason"}
	if len(w.rows) == 0 {
		return h
	}
	for _, c := range w.rows[0].Columns {
		h = append(h, c.Name)
	}
	return h
}

func line(r builtin.RejectedRow) []string {
	out := make([]string, 0, len(r.Record)+2)
	out = append(out, r.Stage, r.Reason)
	for i, v := range r.Record {
		typ := table.TypeText
		if i < len(r.Columns) {
			typ = r.Columns[i].Type
		}
		out = append(out, v.Format(typ))
	}
	return out
}
