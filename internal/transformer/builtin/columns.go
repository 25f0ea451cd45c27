package builtin

import (
	"go.uber.org/zap"

	"ecomclean/internal/schema"
	"ecomclean/internal/table"
)

// NormalizeColumns rewrites every column identifier to canonical form:
// lowercase, spaces replaced by underscores. Cells are untouched.
type NormalizeColumns struct {
	Log *zap.Logger
}

func (NormalizeColumns) Name() string { return StageColumns }

func (n NormalizeColumns) Apply(t *table.Table) *table.Table {
	before := t.Names()
	for i := range t.Columns {
		t.Columns[i].Name = schema.CanonicalName(t.Columns[i].Name)
	}
	nopIfNil(n.Log).Info("column names cleaned",
		zap.Strings("original", before),
		zap.Strings("cleaned", t.Names()),
	)
	return t
}
