package builtin

import (
	"go.uber.org/zap"

	"ecomclean/internal/schema"
	"ecomclean/internal/table"
)

// Outliers is the informational upper-tail report produced by Validate.
type Outliers struct {
	Column    string
	Quantile  float64
	Threshold float64
	Count     int // records strictly above Threshold; they are kept
}

// Validate removes records whose cells fail the policy's checks, one column at
// a time in policy order, each filter seeing the table reduced by the previous
// one. It then reports (without removing) records above the OutlierQuantile of
// OutlierColumn.
type Validate struct {
	Policy schema.Policy

	// OutlierColumn and OutlierQuantile configure the outlier report. An empty
	// column disables it.
	OutlierColumn   string
	OutlierQuantile float64

	Log        *zap.Logger
	Reject     func(RejectedRow)
	OnOutliers func(Outliers)
}

func (Validate) Name() string { return StageValidate }

func (v Validate) Apply(t *table.Table) *table.Table {
	log := nopIfNil(v.Log)
	initial := t.Len()

	for _, role := range v.Policy.Roles {
		if role.Check == nil {
			continue
		}
		idx := t.Index(role.Name)
		if idx < 0 {
			continue
		}
		keep := role.Check.Keep
		removed := filter(t, StageValidate, role.Check.Reason, func(r table.Record) bool {
			return keep(r[idx])
		}, v.Reject)
		if removed > 0 {
			log.Info("removed invalid rows",
				zap.String("column", role.Name),
				zap.String("rule", role.Check.Reason),
				zap.Int("removed", removed),
			)
		}
	}

	if o, ok := v.outliers(t); ok {
		if o.Count > 0 {
			log.Info("outliers detected; keeping them",
				zap.String("column", o.Column),
				zap.Float64("quantile", o.Quantile),
				zap.Float64("threshold", o.Threshold),
				zap.Int("count", o.Count),
			)
		}
		if v.OnOutliers != nil {
			v.OnOutliers(o)
		}
	}

	log.Info("invalid data removed",
		zap.Int("rows_before", initial),
		zap.Int("rows_after", t.Len()),
		zap.Int("rows_removed", initial-t.Len()),
	)
	return t
}

func (v Validate) outliers(t *table.Table) (Outliers, bool) {
	if v.OutlierColumn == "" {
		return Outliers{}, false
	}
	idx := t.Index(v.OutlierColumn)
	if idx < 0 {
		return Outliers{}, false
	}
	xs := numbers(t, idx)
	threshold, ok := Quantile(xs, v.OutlierQuantile)
	if !ok {
		return Outliers{}, false
	}
	o := Outliers{Column: v.OutlierColumn, Quantile: v.OutlierQuantile, Threshold: threshold}
	for _, x := range xs {
		if x > threshold {
			o.Count++
		}
	}
	return o, true
}
