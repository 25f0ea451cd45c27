// Package table holds the in-memory tabular model that flows through the
// cleaning pipeline: an ordered set of columns and an ordered slice of
// positional records whose cells are string, number, or absent.
package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a Value holds.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Value is a single cell. The zero Value is absent.
type Value struct {
	kind Kind
	s    string
	n    float64
	// i holds the exact value of an integer that float64 cannot represent;
	// wide marks it as set.
	i    int64
	wide bool
}

// maxExact is the largest magnitude below which every integer is exact in a
// float64.
const maxExact = 1 << 53

// Absent returns the absent marker.
func Absent() Value { return Value{} }

// String returns a string cell.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, n: f} }

// Int returns a numeric cell holding i exactly. Integers within ±2^53 are
// plain Numbers; larger ones keep their exact value next to the rounded float.
func Int(i int64) Value {
	if i >= -maxExact && i <= maxExact {
		return Number(float64(i))
	}
	return Value{kind: KindNumber, n: float64(i), i: i, wide: true}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string payload and whether v is a string cell.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Num returns the numeric payload and whether v is a numeric cell.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// Int returns the exact integer payload and whether v is an integral number
// in int64 range.
func (v Value) Int() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.wide {
		return v.i, true
	}
	if v.n != math.Trunc(v.n) || v.n < math.MinInt64 || v.n >= math.MaxInt64 {
		return 0, false
	}
	return int64(v.n), true
}

// Equal reports cell-wise equality. Absent equals absent; numbers compare by
// value; strings compare byte-wise. Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		if v.wide || o.wide {
			a, aok := v.Int()
			b, bok := o.Int()
			return aok && bok && a == b
		}
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	default:
		return true
	}
}

// Format renders the cell for a delimited-text sink using the column's storage
// type. Absent renders as the empty string.
func (v Value) Format(t ColumnType) string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		if v.wide {
			return strconv.FormatInt(v.i, 10)
		}
		if t == TypeInteger && v.n == math.Trunc(v.n) && !math.IsInf(v.n, 0) {
			return strconv.FormatFloat(v.n, 'f', 0, 64)
		}
		return FormatFloat(v.n)
	default:
		return ""
	}
}

// FormatFloat writes f in its shortest round-trip form and keeps a trailing
// ".0" on integral values so a float column stays recognizable on reload.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// GoString is used by %#v in test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return "table.String(" + strconv.Quote(v.s) + ")"
	case KindNumber:
		if v.wide {
			return "table.Int(" + strconv.FormatInt(v.i, 10) + ")"
		}
		return "table.Number(" + FormatFloat(v.n) + ")"
	default:
		return "table.Absent()"
	}
}
