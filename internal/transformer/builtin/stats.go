package builtin

import (
	"math"
	"sort"

	"ecomclean/internal/table"
)

// numbers returns the present numeric cells of column idx.
func numbers(t *table.Table, idx int) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if n, ok := r[idx].Num(); ok && !math.IsNaN(n) {
			out = append(out, n)
		}
	}
	return out
}

// Median returns the median of xs: the middle value of the sorted values, or
// the mean of the two middle values for an even count. ok is false when xs is
// empty. xs is not modified.
func Median(xs []float64) (m float64, ok bool) {
	if len(xs) == 0 {
		return 0, false
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}

// Quantile returns the q-th quantile (0 <= q <= 1) of xs using linear
// interpolation between the closest ranks: position (n-1)*q in the sorted
// values. ok is false when xs is empty. xs is not modified.
func Quantile(xs []float64, q float64) (v float64, ok bool) {
	if len(xs) == 0 {
		return 0, false
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	pos := float64(len(s)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > len(s)-1 {
		hi = len(s) - 1
	}
	frac := pos - float64(lo)
	return s[lo] + (s[hi]-s[lo])*frac, true
}

// Mode returns the most frequent present cell of column idx. Ties resolve to
// the smallest value (numbers before strings, then by value) so the result
// is stable for a given input. ok is false when the column has no present
// cell.
func Mode(t *table.Table, idx int) (v table.Value, ok bool) {
	type entry struct {
		v     table.Value
		count int
	}
	counts := make(map[table.Value]*entry)
	for _, r := range t.Rows {
		c := r[idx]
		if c.IsAbsent() {
			continue
		}
		if e, seen := counts[c]; seen {
			e.count++
			continue
		}
		counts[c] = &entry{v: c, count: 1}
	}

	var best *entry
	for _, e := range counts {
		if best == nil || e.count > best.count || (e.count == best.count && less(e.v, best.v)) {
			best = e
		}
	}
	if best == nil {
		return table.Absent(), false
	}
	return best.v, true
}

// less orders present values: numbers before strings, then by value.
func less(a, b table.Value) bool {
	an, aNum := a.Num()
	bn, bNum := b.Num()
	switch {
	case aNum && bNum:
		return an < bn
	case aNum != bNum:
		return aNum
	}
	as, _ := a.Str()
	bs, _ := b.Str()
	return as < bs
}
