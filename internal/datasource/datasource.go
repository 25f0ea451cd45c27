// Package datasource defines where raw input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input of a cleaning run.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
