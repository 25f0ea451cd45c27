// Package metrics records operational metrics from cleaning runs behind a
// narrow, backend-agnostic interface.
//
// A global backend defaults to a no-op implementation, so the Record helpers
// are always safe to call. Concrete metric systems live in subpackages
// (see metrics/promfile) and are installed once at startup with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record helpers.
const (
	StageTotal    = "ecomclean_stage_total"
	StageDuration = "ecomclean_stage_duration_seconds"
	RowsTotal     = "ecomclean_rows_total"
)

// Row kinds passed to RecordRow.
const (
	RowsLoaded    = "loaded"
	RowsDropped   = "dropped_missing"
	RowsInvalid   = "invalid"
	RowsDuplicate = "duplicate"
	RowsOutlier   = "outlier"
	RowsWritten   = "written"
	RowsImputed   = "imputed_cells"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush writes out collected metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline stage and observes its
// duration, labelled with the job, the stage and success/failure.
func RecordStep(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRow adds delta to the row counter of the given kind. Non-positive
// deltas are ignored.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
