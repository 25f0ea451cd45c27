package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomclean/internal/sample"
	"ecomclean/internal/storage/csvfile"
)

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	tb, err := sample.Generate(rand.New(rand.NewPCG(1, 2)), sample.Default)
	require.NoError(t, err)
	path := filepath.Join(dir, "sample_ecommerce_data.csv")
	s, err := csvfile.New(path, ',')
	require.NoError(t, err)
	_, err = s.Write(context.Background(), tb)
	require.NoError(t, err)
	return path
}

func TestRun_AdHoc(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "out.csv")
	rej := filepath.Join(dir, "rejects.csv")
	prom := filepath.Join(dir, "ecomclean.prom")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-input", in, "-output", out, "-rejects", rej, "-metrics-file", prom,
	}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, p := range []string{out, rej, prom} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
	b, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(b), `ecomclean_rows_total{job="ecomclean",kind="loaded"} 1050`)
}

func TestRun_Configs(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	jsonCfg := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(jsonCfg, []byte(`{
  "job": "a",
  "source": {"kind": "file", "file": {"path": "`+in+`"}},
  "storage": {"kind": "csv", "csv": {"path": "`+filepath.Join(dir, "a.csv")+`"}}
}`), 0o644))

	yamlCfg := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(yamlCfg, []byte(strings.Join([]string{
		"job: b",
		"source: {kind: file, file: {path: " + in + "}}",
		"storage: {kind: sqlite, sqlite: {dsn: " + filepath.Join(dir, "b.db") + ", table: orders}}",
	}, "\n")), 0o644))

	list := filepath.Join(dir, "jobs.txt")
	require.NoError(t, os.WriteFile(list, []byte("# jobs\n"+yamlCfg+"\n"), 0o644))

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", jsonCfg, "-config-list", list, "-parallel", "2"}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	_, err := os.Stat(filepath.Join(dir, "a.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "b.db"))
	assert.NoError(t, err)
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	badCfg := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badCfg, []byte(`{"job": "", "source": {"file": {"path": ""}}}`), 0o644))

	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"unknown flag", []string{"-nope"}, 2, "flag provided but not defined"},
		{"stray argument", []string{"x.csv"}, 2, "unexpected arguments"},
		{"bad log format", []string{"-log-format", "xml", "-input", in}, 2, "logger"},
		{"nothing to do", nil, 1, "nothing to do"},
		{"output without input", []string{"-output", "x.csv"}, 1, "require -input"},
		{"missing config", []string{"-config", filepath.Join(dir, "none.json")}, 1, "none.json"},
		{"invalid config", []string{"-config", badCfg}, 1, "error: job"},
		{"same destination", []string{"-input", in, "-output", filepath.Join(dir, "o.csv"), "-config", writeJob(t, dir, "dup", in, "o.csv", "")}, 1, "storage: same destination"},
		{"shared rejects", []string{"-validate", "-input", in, "-output", filepath.Join(dir, "a.csv"), "-rejects", filepath.Join(dir, "r.csv"),
			"-config", writeJob(t, dir, "rej", in, "b.csv", "r.csv")}, 1, "rejects.path: same destination"},
		{"rejects onto output", []string{"-validate", "-input", in, "-output", filepath.Join(dir, "c.csv"),
			"-config", writeJob(t, dir, "cross", in, "d.csv", "c.csv")}, 1, "flags: error: storage: same destination as"},
		{"output onto input", []string{"-validate", "-input", in, "-output", filepath.Join(dir, "e.csv"),
			"-config", writeJob(t, dir, "clobber", filepath.Join(dir, "other.csv"), filepath.Base(in), "")}, 1, "storage: overwrites the input of"},
		{"missing input", []string{"-input", filepath.Join(dir, "missing.csv"), "-output", filepath.Join(dir, "m.csv")}, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.code, run(context.Background(), tt.args, &stderr))
			assert.Contains(t, stderr.String(), tt.stderr)
		})
	}
	_, err := os.Stat(filepath.Join(dir, "m.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_ValidateOnly(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "out.csv")

	var stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"-validate", "-input", in, "-output", out}, &stderr), stderr.String())
	_, err := os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist, "-validate must not run the job")
}

func writeJob(t *testing.T, dir, name, in, out, rejects string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	body := "job: " + name + "\nsource: {file: {path: " + in + "}}\nstorage: {csv: {path: " + filepath.Join(dir, out) + "}}\n"
	if rejects != "" {
		body += "rejects: {path: " + filepath.Join(dir, rejects) + "}\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMetricsPath(t *testing.T) {
	jobs := []job{{}, {}}
	jobs[1].p.Metrics.Kind = "textfile"
	jobs[1].p.Metrics.Path = "b.prom"

	assert.Equal(t, "flag.prom", metricsPath("flag.prom", jobs))
	assert.Equal(t, "b.prom", metricsPath("", jobs))
	assert.Empty(t, metricsPath("", jobs[:1]))
}
