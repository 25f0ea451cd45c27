package pipeline

import (
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ecomclean/internal/table"
)

// Profile is a dataset summary taken before and after cleaning.
type Profile struct {
	Rows          int
	Columns       int
	AbsentCells   map[string]int // per column, only columns with absent cells
	DuplicateRows int            // rows equal to an earlier row
}

// TotalAbsent sums AbsentCells.
func (p Profile) TotalAbsent() int {
	n := 0
	for _, c := range p.AbsentCells {
		n += c
	}
	return n
}

// MarshalLogObject lets a Profile be logged with zap.Object.
func (p Profile) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("rows", p.Rows)
	enc.AddInt("columns", p.Columns)
	enc.AddInt("absent_cells", p.TotalAbsent())
	enc.AddInt("duplicate_rows", p.DuplicateRows)
	return enc.AddObject("absent_by_column", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		for col, n := range p.AbsentCells {
			enc.AddInt(col, n)
		}
		return nil
	}))
}

// Describe profiles t without modifying it.
func Describe(t *table.Table) Profile {
	p := Profile{Rows: t.Len(), Columns: len(t.Columns), AbsentCells: map[string]int{}}
	for i, c := range t.Columns {
		if n := t.CountAbsent(i); n > 0 {
			p.AbsentCells[c.Name] += n
		}
	}

	seen := make(map[uint64][]table.Record, t.Len())
	var buf []byte
	for _, r := range t.Rows {
		buf = appendRecord(buf[:0], r)
		h := xxh3.Hash(buf)
		dup := false
		for _, prev := range seen[h] {
			if prev.Equal(r) {
				dup = true
				break
			}
		}
		if dup {
			p.DuplicateRows++
			continue
		}
		seen[h] = append(seen[h], r)
	}
	return p
}

func appendRecord(buf []byte, r table.Record) []byte {
	for _, v := range r {
		buf = append(buf, byte(v.Kind()))
		buf = append(buf, v.Format(table.TypeFloat)...)
		buf = append(buf, 0)
	}
	return buf
}

var _ zapcore.ObjectMarshaler = Profile{}

func logProfile(log *zap.Logger, msg string, p Profile) {
	log.Info(msg, zap.Object("profile", p))
}
