package builtin

import (
	"go.uber.org/zap"

	"ecomclean/internal/schema"
	"ecomclean/internal/table"
)

// Fill describes one column-level imputation or drop performed by FillMissing.
type Fill struct {
	Column   string
	Strategy schema.Imputation
	Count    int         // absent cells found (records removed for ImputeDrop)
	Value    table.Value // fill value; absent for ImputeDrop
}

// FillMissing resolves absent cells column by column in policy order: median,
// mode and constant columns are filled, critical columns drop the record.
// Each column sees the table as left by the previous one, so counts for a
// column are taken after earlier drops.
type FillMissing struct {
	Policy schema.Policy
	Log    *zap.Logger
	Reject func(RejectedRow)
	OnFill func(Fill)
}

func (FillMissing) Name() string { return StageMissing }

func (f FillMissing) Apply(t *table.Table) *table.Table {
	log := nopIfNil(f.Log)
	initial := t.Len()

	for _, role := range f.Policy.Roles {
		if role.Impute == schema.ImputeNone {
			continue
		}
		idx := t.Index(role.Name)
		if idx < 0 {
			continue
		}
		missing := t.CountAbsent(idx)
		if missing == 0 {
			continue
		}

		fill := Fill{Column: role.Name, Strategy: role.Impute, Count: missing}
		switch role.Impute {
		case schema.ImputeMedian:
			m, ok := Median(numbers(t, idx))
			if !ok {
				log.Warn("no values to compute median; column left as is",
					zap.String("column", role.Name), zap.Int("missing", missing))
				continue
			}
			fill.Value = table.Number(m)
		case schema.ImputeMode:
			v, ok := Mode(t, idx)
			if !ok {
				log.Warn("no values to compute mode; column left as is",
					zap.String("column", role.Name), zap.Int("missing", missing))
				continue
			}
			fill.Value = v
		case schema.ImputeConstant:
			fill.Value = table.String(role.Fill)
		case schema.ImputeDrop:
			filter(t, StageMissing, role.Name+" missing", func(r table.Record) bool {
				return !r[idx].IsAbsent()
			}, f.Reject)
			log.Info("dropped rows with missing critical field",
				zap.String("column", role.Name), zap.Int("dropped", missing))
			f.notify(fill)
			continue
		}

		for _, r := range t.Rows {
			if r[idx].IsAbsent() {
				r[idx] = fill.Value
			}
		}
		log.Info("filled missing values",
			zap.String("column", role.Name),
			zap.Stringer("strategy", role.Impute),
			zap.Int("filled", missing),
			zap.String("value", fill.Value.Format(table.TypeFloat)),
		)
		f.notify(fill)
	}

	log.Info("missing values handled",
		zap.Int("rows_before", initial),
		zap.Int("rows_after", t.Len()),
		zap.Int("rows_dropped", initial-t.Len()),
	)
	return t
}

func (f FillMissing) notify(fill Fill) {
	if f.OnFill != nil {
		f.OnFill(fill)
	}
}
