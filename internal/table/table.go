package table

// ColumnType is the storage type of a column. It only affects how numbers are
// rendered on output; cells carry their own Kind.
type ColumnType uint8

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeFloat
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	default:
		return "text"
	}
}

// Column is a named, typed column.
type Column struct {
	Name string
	Type ColumnType
}

// Record is a positional row aligned with Table.Columns.
type Record []Value

// Equal reports whether r and o are cell-wise identical.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Table is an ordered collection of records sharing Columns. Stages either
// mutate a Table in place or return a new one; a Table is never shared across
// pipeline runs.
type Table struct {
	Columns []Column
	Rows    []Record
}

// New returns an empty table with a copy of cols.
func New(cols []Column) *Table {
	c := make([]Column, len(cols))
	copy(c, cols)
	return &Table{Columns: c}
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Rows) }

// Names returns the column identifiers in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the first column named name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether a column named name exists.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Append adds a record. The record must have len(t.Columns) cells.
func (t *Table) Append(r Record) { t.Rows = append(t.Rows, r) }

// Filter keeps the records for which keep returns true, preserving order, and
// returns the number removed. The backing array is reused.
func (t *Table) Filter(keep func(Record) bool) int {
	out := t.Rows[:0]
	for _, r := range t.Rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	removed := len(t.Rows) - len(out)
	for i := len(out); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = out
	return removed
}

// CountAbsent returns the number of absent cells in column idx.
func (t *Table) CountAbsent(idx int) int {
	n := 0
	for _, r := range t.Rows {
		if r[idx].IsAbsent() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := New(t.Columns)
	c.Rows = make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		rr := make(Record, len(r))
		copy(rr, r)
		c.Rows[i] = rr
	}
	return c
}
