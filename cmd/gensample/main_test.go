package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	var stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"-out", a, "-seed", "7"}, &stderr), stderr.String())
	require.Equal(t, 0, run(context.Background(), []string{"-out", b, "-seed", "7"}, &stderr), stderr.String())

	ab, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, ab, bb)

	lines := strings.Split(strings.TrimSuffix(string(ab), "\n"), "\n")
	assert.Len(t, lines, 1+1050)
	assert.Equal(t, "order_id,customer_name,email,category,price,quantity,order_date,payment_status,customer_rating", lines[0])
}

func TestRun_BadConfig(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	out := filepath.Join(t.TempDir(), "x.csv")
	assert.Equal(t, 1, run(context.Background(), []string{"-out", out, "-records", "10"}, &stderr))
	assert.Contains(t, stderr.String(), "at least")
	_, err := os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, 2, run(context.Background(), []string{"-bogus"}, &stderr))
}
