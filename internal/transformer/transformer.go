// Package transformer defines the stage contract of the cleaning pipeline and
// the Chain that runs stages in order. Concrete stages live in builtin.
package transformer

import (
	"time"

	"ecomclean/internal/table"
)

// Transformer is one pipeline stage. Apply consumes the whole table produced
// by the previous stage and returns the table for the next one; it may mutate
// its input in place.
type Transformer interface {
	Name() string
	Apply(t *table.Table) *table.Table
}

// Step describes one completed stage.
type Step struct {
	Name     string
	RowsIn   int
	RowsOut  int
	Duration time.Duration
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every stage in order.
func (c Chain) Apply(t *table.Table) *table.Table {
	return c.Run(t, nil)
}

// Run runs every stage in order and reports each completed stage to observe
// (which may be nil). A stage starts only after the previous one returned.
func (c Chain) Run(t *table.Table, observe func(Step)) *table.Table {
	out := t
	for _, tr := range c {
		start := time.Now()
		in := out.Len()
		out = tr.Apply(out)
		if observe != nil {
			observe(Step{
				Name:     tr.Name(),
				RowsIn:   in,
				RowsOut:  out.Len(),
				Duration: time.Since(start),
			})
		}
	}
	return out
}
