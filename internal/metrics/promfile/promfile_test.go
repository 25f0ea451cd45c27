package promfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"ecomclean/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func readSummaryCount(t *testing.T, v *prometheus.SummaryVec, labels ...string) uint64 {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(""); err == nil {
		t.Fatal("NewBackend(\"\") error = nil, want non-nil")
	}

	path := filepath.Join(t.TempDir(), "m.prom")
	b, err := NewBackend(path)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.Path() != path {
		t.Fatalf("Path() = %q, want %q", b.Path(), path)
	}
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		metric string
		labels metrics.Labels
		delta  float64
		check  func(t *testing.T, b *Backend)
	}{
		{
			name:   "stage counter",
			metric: metrics.StageTotal,
			labels: metrics.Labels{"job": "j", "stage": "remove_duplicates", "status": "success"},
			delta:  2,
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.stageCounter.WithLabelValues("j", "remove_duplicates", "success")); got != 2 {
					t.Fatalf("stage counter = %v, want 2", got)
				}
			},
		},
		{
			name:   "row counter",
			metric: metrics.RowsTotal,
			labels: metrics.Labels{"job": "j", "kind": metrics.RowsDuplicate},
			delta:  50,
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.rowCounter.WithLabelValues("j", metrics.RowsDuplicate)); got != 50 {
					t.Fatalf("row counter = %v, want 50", got)
				}
			},
		},
		{
			name:   "unknown metric is ignored",
			metric: "other_total",
			labels: metrics.Labels{"job": "j", "kind": "x"},
			delta:  1,
			check: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.rowCounter.WithLabelValues("j", "x")); got != 0 {
					t.Fatalf("row counter = %v, want 0", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(filepath.Join(t.TempDir(), "m.prom"))
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			b.IncCounter(tt.metric, tt.delta, tt.labels)
			tt.check(t, b)
		})
	}
}

func TestNilCollectorsAreSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{})
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{})
	b.ObserveHistogram(metrics.StageDuration, 1, metrics.Labels{})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() on zero backend error = %v", err)
	}
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend(filepath.Join(t.TempDir(), "m.prom"))
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	lbls := metrics.Labels{"job": "j", "stage": "normalize_text", "status": "success"}
	b.ObserveHistogram(metrics.StageDuration, 0.25, lbls)
	b.ObserveHistogram("other_seconds", 1, lbls)

	if got := readSummaryCount(t, b.stageDuration, "j", "normalize_text", "success"); got != 1 {
		t.Fatalf("summary sample count = %d, want 1", got)
	}
}

func TestFlushWritesTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ecomclean.prom")
	b, err := NewBackend(path)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.RowsTotal, 1000, metrics.Labels{"job": "orders", "kind": metrics.RowsLoaded})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics file: %v", err)
	}
	text := string(data)
	want := `ecomclean_rows_total{job="orders",kind="loaded"} 1000`
	if !strings.Contains(text, want) {
		t.Fatalf("metrics file missing %q:\n%s", want, text)
	}
}
