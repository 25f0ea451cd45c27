package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomclean/internal/table"
)

type fakeSink struct {
	cfg Config
}

func (f *fakeSink) Write(ctx context.Context, t *table.Table) (int64, error) {
	return int64(t.Len()), nil
}

func (f *fakeSink) Close() error { return nil }

func TestRegisterAndNew(t *testing.T) {
	t.Parallel()

	Register("fake", func(ctx context.Context, cfg Config) (Sink, error) {
		return &fakeSink{cfg: cfg}, nil
	})

	s, err := New(context.Background(), Config{Kind: "fake", Path: "out.csv"})
	require.NoError(t, err)
	assert.Equal(t, "out.csv", s.(*fakeSink).cfg.Path)
	assert.Contains(t, ListKinds(), "fake")
}

func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	require.EqualError(t, err, "unsupported storage.kind=does-not-exist")
}

func TestRegister_Override(t *testing.T) {
	t.Parallel()

	calls := 0
	Register("override", func(ctx context.Context, cfg Config) (Sink, error) {
		calls++
		return &fakeSink{}, nil
	})
	Register("override", func(ctx context.Context, cfg Config) (Sink, error) {
		calls += 10
		return &fakeSink{}, nil
	})

	_, err := New(context.Background(), Config{Kind: "override"})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
}

func TestNew_FactoryError(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	Register("errkind", func(ctx context.Context, cfg Config) (Sink, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: "errkind"})
	assert.ErrorIs(t, err, want)
}

func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(ctx context.Context, cfg Config) (Sink, error) { return &fakeSink{}, nil })

	a := ListKinds()
	require.NotEmpty(t, a)
	a[0] = "mutated"
	assert.NotContains(t, ListKinds(), "mutated")
}
