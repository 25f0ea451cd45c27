// Package builtin contains the cleaning stages of the pipeline:
//
//   - NormalizeColumns: canonical column identifiers
//   - FillMissing:      per-column imputation or record removal
//   - NormalizeText:    trimmed, case-normalized text columns
//   - Validate:         domain filters plus an informational outlier report
//   - DeDup:            exact-duplicate removal, first occurrence kept
//
// Stages read their per-column rules from a schema.Policy. Columns the table
// does not have are skipped. Removed records can be observed through each
// stage's Reject callback.
package builtin

import (
	"go.uber.org/zap"

	"ecomclean/internal/table"
)

// Stage names, also used as metric labels and in the rejects file.
const (
	StageColumns  = "clean_column_names"
	StageMissing  = "handle_missing_values"
	StageText     = "normalize_text"
	StageValidate = "remove_invalid"
	StageDedup    = "remove_duplicates"
)

// RejectedRow is a record removed by a stage.
type RejectedRow struct {
	Stage   string
	Reason  string
	Columns []table.Column // aligned with Record
	Record  table.Record
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// filter removes records failing keep and reports each one to reject.
func filter(t *table.Table, stage, reason string, keep func(table.Record) bool, reject func(RejectedRow)) int {
	var cols []table.Column
	if reject != nil {
		cols = append([]table.Column(nil), t.Columns...)
	}
	return t.Filter(func(r table.Record) bool {
		if keep(r) {
			return true
		}
		if reject != nil {
			reject(RejectedRow{Stage: stage, Reason: reason, Columns: cols, Record: r})
		}
		return false
	})
}
