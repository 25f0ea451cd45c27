package builtin

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"ecomclean/internal/table"
)

// DeDup removes records that repeat an earlier record cell for cell, keeping
// the first occurrence and the relative order of the survivors.
//
// Records are bucketed by an xxh3 hash of their cells and compared cell by
// cell inside a bucket, so hash collisions cannot merge distinct records.
type DeDup struct {
	Log    *zap.Logger
	Reject func(RejectedRow)
}

func (DeDup) Name() string { return StageDedup }

func (d DeDup) Apply(t *table.Table) *table.Table {
	log := nopIfNil(d.Log)
	initial := t.Len()

	buckets := make(map[uint64][]table.Record, t.Len())
	var buf []byte
	removed := filter(t, StageDedup, "duplicate row", func(r table.Record) bool {
		buf = appendRecord(buf[:0], r)
		h := xxh3.Hash(buf)
		for _, prev := range buckets[h] {
			if prev.Equal(r) {
				return false
			}
		}
		buckets[h] = append(buckets[h], r)
		return true
	}, d.Reject)

	if removed > 0 {
		log.Info("duplicates removed (kept first occurrence)",
			zap.Int("duplicates", removed),
			zap.Int("rows_before", initial),
			zap.Int("rows_after", t.Len()),
		)
	} else {
		log.Info("no duplicates found", zap.Int("rows", t.Len()))
	}
	return t
}

func appendRecord(buf []byte, r table.Record) []byte {
	for _, v := range r {
		buf = appendValue(buf, v)
	}
	return buf
}

// appendValue encodes v as a kind tag followed by a length-prefixed payload,
// which keeps the encoding of distinct records distinct.
func appendValue(buf []byte, v table.Value) []byte {
	buf = append(buf, byte(v.Kind()))
	switch v.Kind() {
	case table.KindString:
		s, _ := v.Str()
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	case table.KindNumber:
		n, _ := v.Num()
		if n == 0 {
			n = 0 // -0 and +0 compare equal; hash them alike
		}
		if math.IsNaN(n) {
			n = math.NaN()
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(n))
	}
	return buf
}
