// Package csv loads delimited text into a table.Table. Cells that match one
// of the missing-value markers load as absent; columns declared numeric by the
// schema policy are parsed as numbers, and a cell that does not parse fails
// the load with a *SchemaError. All other columns load as text untouched.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ecomclean/internal/schema"
	"ecomclean/internal/table"
)

// DefaultMissingMarkers are the cell spellings read as absent.
var DefaultMissingMarkers = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Options configures the Loader. The zero value reads comma-separated input
// without a header row; use DefaultOptions for the usual setup.
type Options struct {
	// HasHeader indicates whether the first row contains column identifiers.
	// Without a header, columns are named col_0, col_1, ...
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Policy declares which columns are numeric. Header cells are matched
	// against role names in canonical form, so "Price" finds the price role.
	Policy schema.Policy

	// MissingMarkers overrides DefaultMissingMarkers when non-nil.
	MissingMarkers []string
}

// DefaultOptions returns header-aware, comma-separated options bound to the
// e-commerce policy.
func DefaultOptions() Options {
	return Options{HasHeader: true, Comma: ',', Policy: schema.ECommerce}
}

// Loader reads delimited text into a table. It is safe to reuse across
// inputs but not for concurrent use.
type Loader struct {
	opt     Options
	missing map[string]struct{}
}

// NewLoader constructs a Loader with the provided Options.
func NewLoader(opt Options) *Loader {
	markers := opt.MissingMarkers
	if markers == nil {
		markers = DefaultMissingMarkers
	}
	m := make(map[string]struct{}, len(markers))
	for _, s := range markers {
		m[s] = struct{}{}
	}
	return &Loader{opt: opt, missing: m}
}

// Load consumes r and returns the loaded table. A leading byte-order mark is
// honored and removed. Rows shorter than the header are padded with absent
// cells; longer rows fail with ErrMalformed.
func (l *Loader) Load(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	if l.opt.Comma != 0 {
		cr.Comma = l.opt.Comma
	}
	cr.FieldsPerRecord = -1

	var (
		names []string
		raw   [][]string
		line  int
	)

	if l.opt.HasHeader {
		h, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		if err != nil {
			return nil, readError("read csv header", err)
		}
		line++
		names = append([]string(nil), h...)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError("read csv row", err)
		}
		line++
		if names == nil {
			names = make([]string, len(row))
			for i := range names {
				names[i] = fmt.Sprintf("col_%d", i)
			}
		}
		if len(row) > len(names) {
			return nil, fmt.Errorf("line %d: %w: expected %d fields, got %d", line, ErrMalformed, len(names), len(row))
		}
		raw = append(raw, append([]string(nil), row...))
	}

	return l.build(names, raw)
}

// readError marks syntax errors as ErrMalformed and passes I/O errors through.
func readError(op string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// build converts raw string rows into typed cells, column by column, so that
// each numeric column can settle on integer or float storage.
func (l *Loader) build(names []string, raw [][]string) (*table.Table, error) {
	cols := make([]table.Column, len(names))
	numeric := make([]bool, len(names))
	// Blank cells of imputed columns load as absent. Trimming would otherwise
	// turn them into empty strings that only a second run fills.
	blankAbsent := make([]bool, len(names))
	for i, n := range names {
		cols[i] = table.Column{Name: n, Type: table.TypeText}
		role, ok := l.opt.Policy.Role(schema.CanonicalName(n))
		if !ok {
			continue
		}
		blankAbsent[i] = role.Impute != schema.ImputeNone
		if role.Numeric() {
			numeric[i] = true
			cols[i].Type = table.TypeInteger
		}
	}

	t := table.New(cols)
	t.Rows = make([]table.Record, len(raw))
	for r, row := range raw {
		rec := make(table.Record, len(names))
		for i := range names {
			if i >= len(row) {
				continue // padded with absent
			}
			s := row[i]
			if _, ok := l.missing[s]; ok {
				continue
			}
			if blankAbsent[i] && strings.TrimSpace(s) == "" {
				continue
			}
			if !numeric[i] {
				rec[i] = table.String(s)
				continue
			}
			v, integral, err := parseNumber(s)
			if err != nil {
				lineNo := r + 1
				if l.opt.HasHeader {
					lineNo++
				}
				return nil, &SchemaError{Line: lineNo, Column: names[i], Value: s, Err: err}
			}
			if !integral {
				t.Columns[i].Type = table.TypeFloat
			}
			rec[i] = v
		}
		t.Rows[r] = rec
	}

	// A numeric column with gaps is stored as float, matching how it is
	// rendered after imputation.
	for i := range cols {
		if numeric[i] && t.CountAbsent(i) > 0 {
			t.Columns[i].Type = table.TypeFloat
		}
	}
	return t, nil
}

// parseNumber parses s as a decimal number. integral reports whether the
// literal was written without a fraction or exponent. Integers too large for
// an exact float64 keep their exact value.
func parseNumber(s string) (v table.Value, integral bool, err error) {
	s = strings.TrimSpace(s)
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return table.Absent(), false, err
	}
	integral = !strings.ContainsAny(s, ".eEnN")
	if integral && math.Abs(f) >= 1<<53 {
		// strconv rather than cast: cast reads a leading 0 as octal.
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return table.Int(i), true, nil
		}
	}
	return table.Number(f), integral, nil
}
