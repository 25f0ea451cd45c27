package builtin

import (
	"fmt"
	"testing"

	"ecomclean/internal/table"
)

// tbl builds a text/float table from literal rows: nil is absent, strings are
// string cells, ints and floats are numbers.
func tbl(t testing.TB, cols []string, rows ...[]any) *table.Table {
	t.Helper()
	cs := make([]table.Column, len(cols))
	for i, c := range cols {
		cs[i] = table.Column{Name: c, Type: table.TypeFloat}
	}
	out := table.New(cs)
	for _, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("row %v has %d cells, want %d", row, len(row), len(cols))
		}
		out.Append(rec(row...))
	}
	return out
}

func rec(cells ...any) table.Record {
	r := make(table.Record, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case nil:
			r[i] = table.Absent()
		case string:
			r[i] = table.String(v)
		case int:
			r[i] = table.Number(float64(v))
		case float64:
			r[i] = table.Number(v)
		default:
			panic(fmt.Sprintf("unsupported cell %T", c))
		}
	}
	return r
}

// column returns the cells of column name.
func column(t *testing.T, tb *table.Table, name string) []table.Value {
	t.Helper()
	idx := tb.Index(name)
	if idx < 0 {
		t.Fatalf("no column %q in %v", name, tb.Names())
	}
	out := make([]table.Value, tb.Len())
	for i, r := range tb.Rows {
		out[i] = r[idx]
	}
	return out
}

func values(cells ...any) []table.Value {
	return []table.Value(rec(cells...))
}
