// Package pipeline runs one cleaning job end to end: open the source, load the
// table, run the cleaning stages in their fixed order, and hand the result to
// the configured sink. Side outputs (rejects file, metrics) are optional.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecomclean/internal/config"
	"ecomclean/internal/datasource"
	"ecomclean/internal/datasource/file"
	"ecomclean/internal/metrics"
	csvparser "ecomclean/internal/parser/csv"
	"ecomclean/internal/rejectlog"
	"ecomclean/internal/schema"
	"ecomclean/internal/storage"
	"ecomclean/internal/table"
	"ecomclean/internal/transformer"
	"ecomclean/internal/transformer/builtin"
)

var (
	// ErrSourceUnavailable means the input could not be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSinkUnavailable means the cleaned table could not be written.
	ErrSinkUnavailable = errors.New("sink unavailable")
)

// Stage names for the steps around the cleaning chain.
const (
	StageLoad  = "load_data"
	StageWrite = "save_cleaned_data"
)

// Test seams.
var (
	openSource = func(p config.Pipeline) datasource.Source {
		return file.NewLocal(p.Source.File.Path)
	}
	openSink = storage.New
)

// Report summarizes a completed run.
type Report struct {
	Job      string
	RunID    string
	Before   Profile
	After    Profile
	Stages   []transformer.Step
	Fills    []builtin.Fill
	Outliers *builtin.Outliers
	Rejected int // records removed by all stages
	Written  int64
	Duration time.Duration
}

// Removed returns the number of records removed by the named stage.
func (r Report) Removed(stage string) int {
	for _, s := range r.Stages {
		if s.Name == stage {
			return s.RowsIn - s.RowsOut
		}
	}
	return 0
}

// Run executes p. The returned error wraps ErrSourceUnavailable,
// csv.ErrSchemaMismatch (or another load error) or ErrSinkUnavailable. When
// Run fails before the sink commits, neither the output table nor the
// rejects file is written.
func Run(ctx context.Context, p config.Pipeline, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	rep := Report{Job: p.Job, RunID: uuid.NewString()}
	log = log.With(zap.String("job", p.Job), zap.String("run_id", rep.RunID))

	t, err := load(ctx, p, log)
	if err != nil {
		return rep, err
	}
	rep.Before = Describe(t)
	logProfile(log, "input profile", rep.Before)

	var rejects *rejectlog.Writer
	if p.Rejects.Path != "" {
		rejects, err = rejectlog.New(p.Rejects.Path)
		if err != nil {
			return rep, err
		}
	}
	onReject := func(r builtin.RejectedRow) {
		rep.Rejected++
		if rejects != nil {
			rejects.Add(r)
		}
	}

	chain := transformer.Chain{
		builtin.NormalizeColumns{Log: log.Named(builtin.StageColumns)},
		builtin.FillMissing{
			Policy: schema.ECommerce,
			Log:    log.Named(builtin.StageMissing),
			Reject: onReject,
			OnFill: func(f builtin.Fill) { rep.Fills = append(rep.Fills, f) },
		},
		builtin.NormalizeText{Policy: schema.ECommerce, Log: log.Named(builtin.StageText)},
		builtin.Validate{
			Policy:          schema.ECommerce,
			OutlierColumn:   schema.OutlierColumn,
			OutlierQuantile: schema.OutlierQuantile,
			Log:             log.Named(builtin.StageValidate),
			Reject:          onReject,
			OnOutliers:      func(o builtin.Outliers) { rep.Outliers = &o },
		},
		builtin.DeDup{Log: log.Named(builtin.StageDedup), Reject: onReject},
	}

	t = chain.Run(t, func(s transformer.Step) {
		rep.Stages = append(rep.Stages, s)
		metrics.RecordStep(p.Job, s.Name, nil, s.Duration)
		log.Debug("stage complete",
			zap.String("stage", s.Name),
			zap.Int("rows_in", s.RowsIn),
			zap.Int("rows_out", s.RowsOut),
			zap.Duration("duration", s.Duration),
		)
	})
	recordRows(p.Job, rep)

	if t.Len() == 0 {
		log.Warn("no records left after cleaning; writing header only")
	}

	n, err := write(ctx, p, t, log)
	if err != nil {
		return rep, err
	}
	rep.Written = n
	// Rejects are written only once the sink holds the cleaned table.
	if rejects != nil {
		if err := rejects.Commit(); err != nil {
			return rep, fmt.Errorf("%w: rejects %s: %w", ErrSinkUnavailable, rejects.Path(), err)
		}
	}
	rep.After = Describe(t)
	rep.Duration = time.Since(start)
	logProfile(log, "output profile", rep.After)
	if rejects != nil {
		for _, r := range rejects.Reasons() {
			log.Info("rejected rows", zap.String("reason", r.Key), zap.Int("count", r.Count))
		}
	}
	log.Info("cleaning complete",
		zap.Int("rows_before", rep.Before.Rows),
		zap.Int("rows_after", rep.After.Rows),
		zap.Int("rows_removed", rep.Before.Rows-rep.After.Rows),
		zap.Int64("written", rep.Written),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

func load(ctx context.Context, p config.Pipeline, log *zap.Logger) (t *table.Table, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, StageLoad, err, time.Since(start)) }()

	src := openSource(p)
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer rc.Close()

	opts := csvparser.DefaultOptions()
	opts.HasHeader = p.Parser.Options.Bool("has_header", true)
	opts.Comma = p.Parser.Options.Rune("comma", ',')

	t, err = csvparser.NewLoader(opts).Load(rc)
	if err != nil {
		if errors.Is(err, csvparser.ErrSchemaMismatch) || errors.Is(err, csvparser.ErrMalformed) || errors.Is(err, csvparser.ErrNoHeader) {
			return nil, fmt.Errorf("load %s: %w", p.Source.File.Path, err)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrSourceUnavailable, p.Source.File.Path, err)
	}
	log.Info("data loaded",
		zap.String("path", p.Source.File.Path),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns)),
	)
	metrics.RecordRow(p.Job, metrics.RowsLoaded, int64(t.Len()))
	return t, nil
}

func write(ctx context.Context, p config.Pipeline, t *table.Table, log *zap.Logger) (n int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, StageWrite, err, time.Since(start)) }()

	cfg := SinkConfig(p)
	sink, err := openSink(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	n, err = sink.Write(ctx, t)
	if cerr := sink.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	log.Info("cleaned data saved",
		zap.String("storage", cfg.Kind),
		zap.String("destination", destination(cfg)),
		zap.Int64("rows", n),
	)
	metrics.RecordRow(p.Job, metrics.RowsWritten, n)
	return n, nil
}

// SinkConfig maps the storage section of p onto a storage.Config.
func SinkConfig(p config.Pipeline) storage.Config {
	cfg := storage.Config{Kind: p.Storage.Kind}
	switch p.Storage.Kind {
	case "csv":
		cfg.Path = p.Storage.CSV.Path
		cfg.Comma = ','
		if r, _ := utf8.DecodeRuneInString(p.Storage.CSV.Comma); p.Storage.CSV.Comma != "" {
			cfg.Comma = r
		}
	case "sqlite":
		cfg.DSN = p.Storage.SQLite.DSN
		cfg.Table = p.Storage.SQLite.Table
		cfg.Append = p.Storage.SQLite.Append
	}
	return cfg
}

func destination(cfg storage.Config) string {
	if cfg.Kind == "sqlite" {
		return cfg.DSN + "#" + cfg.Table
	}
	return cfg.Path
}

func recordRows(job string, rep Report) {
	metrics.RecordRow(job, metrics.RowsDropped, int64(rep.Removed(builtin.StageMissing)))
	metrics.RecordRow(job, metrics.RowsInvalid, int64(rep.Removed(builtin.StageValidate)))
	metrics.RecordRow(job, metrics.RowsDuplicate, int64(rep.Removed(builtin.StageDedup)))
	imputed := 0
	for _, f := range rep.Fills {
		if f.Strategy != schema.ImputeDrop {
			imputed += f.Count
		}
	}
	metrics.RecordRow(job, metrics.RowsImputed, int64(imputed))
	if rep.Outliers != nil {
		metrics.RecordRow(job, metrics.RowsOutlier, int64(rep.Outliers.Count))
	}
}
