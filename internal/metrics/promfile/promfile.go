// Package promfile implements a metrics backend that writes a Prometheus
// text-format file on Flush, for collection by node_exporter's textfile
// collector or for inspection after a batch run.
//
// All Prometheus-specific dependencies stay in this package; the rest of the
// project only sees metrics.Backend.
package promfile

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"ecomclean/internal/metrics"
)

// Backend collects stage and row metrics in a private registry.
type Backend struct {
	path string
	reg  *prometheus.Registry

	stageCounter  *prometheus.CounterVec
	stageDuration *prometheus.SummaryVec
	rowCounter    *prometheus.CounterVec
}

// NewBackend returns a backend that writes to path on Flush. The file is
// replaced atomically.
func NewBackend(path string) (*Backend, error) {
	if path == "" {
		return nil, errors.New("promfile: output path is required")
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Pipeline stage executions, partitioned by job, stage and status.",
		},
		[]string{"job", "stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Duration of pipeline stages in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"job", "stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row-level counts per kind (loaded, invalid, duplicate, written, ...).",
		},
		[]string{"job", "kind"},
	)

	for name, c := range map[string]prometheus.Collector{
		"stage counter": stageCounter,
		"stage summary": stageDuration,
		"row counter":   rowCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("promfile: register %s: %w", name, err)
		}
	}

	return &Backend{
		path:          path,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
	}, nil
}

// Path returns the file written by Flush.
func (b *Backend) Path() string { return b.path }

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter == nil {
			return
		}
		b.stageCounter.WithLabelValues(labels["job"], labels["stage"], labels["status"]).Add(delta)
	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["job"], labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDuration || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["job"], labels["stage"], labels["status"]).Observe(value)
}

// Flush writes the registry to the configured path in the Prometheus text
// exposition format.
func (b *Backend) Flush() error {
	if b.reg == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(b.path, b.reg); err != nil {
		return fmt.Errorf("promfile: write %s: %w", b.path, err)
	}
	return nil
}
