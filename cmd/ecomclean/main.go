// Command ecomclean cleans e-commerce order exports. Each job is described by a
// config file (-config, repeatable) or ad hoc with -input/-output; jobs run
// concurrently up to -parallel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ecomclean/internal/config"
	"ecomclean/internal/datasource/file"
	"ecomclean/internal/logging"
	"ecomclean/internal/metrics"
	"ecomclean/internal/metrics/promfile"
	"ecomclean/internal/pipeline"

	// config selects the sink; every kind must be linked in.
	_ "ecomclean/internal/storage/all"
)

const defaultOutput = "cleaned_ecommerce_data.csv"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// job is a pipeline plus where it came from, for messages.
type job struct {
	origin string
	p      config.Pipeline
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("ecomclean", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configs     stringList
		configList  = fs.String("config-list", "", "file listing config paths, one per line ('#' comments allowed)")
		input       = fs.String("input", "", "input CSV for an ad-hoc job (no config file)")
		output      = fs.String("output", "", "output CSV for the ad-hoc job (default "+defaultOutput+")")
		rejects     = fs.String("rejects", "", "rejects CSV for the ad-hoc job")
		metricsFile = fs.String("metrics-file", "", "write Prometheus textfile metrics here (overrides configs)")
		parallel    = fs.Int("parallel", runtime.GOMAXPROCS(0), "maximum jobs running at once")
		validate    = fs.Bool("validate", false, "validate the configuration and exit")
		verbose     = fs.Bool("v", false, "enable debug logs")
		logFormat   = fs.String("log-format", "json", "log encoding: json or console")
	)
	fs.Var(&configs, "config", "pipeline config path, JSON or YAML (repeatable)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	log, err := logging.New(logging.Options{Verbose: *verbose, Format: *logFormat})
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	if *configList != "" {
		paths, err := file.ReadList(*configList)
		if err != nil {
			fmt.Fprintf(stderr, "config list: %v\n", err)
			return 1
		}
		configs = append(configs, paths...)
	}

	jobs, err := loadJobs(configs, adHoc{input: *input, output: *output, rejects: *rejects})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	invalid := false
	for _, j := range jobs {
		for _, iss := range config.ValidatePipeline(j.p) {
			fmt.Fprintf(stderr, "%s: %s: %s: %s\n", j.origin, iss.Severity, iss.Path, iss.Message)
			if iss.Severity == config.SeverityError {
				invalid = true
			}
		}
	}
	for _, msg := range collisions(jobs) {
		fmt.Fprintf(stderr, "%s\n", msg)
		invalid = true
	}
	if invalid {
		log.Error("configuration is invalid")
		return 1
	}
	if *validate {
		log.Info("configuration is valid", zap.Int("jobs", len(jobs)))
		return 0
	}

	if path := metricsPath(*metricsFile, jobs); path != "" {
		b, err := promfile.NewBackend(path)
		if err != nil {
			log.Warn("metrics disabled", zap.Error(err))
		} else {
			metrics.SetBackend(b)
			log.Debug("metrics enabled", zap.String("path", path))
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Warn("metrics flush failed", zap.String("path", path), zap.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	var failed atomic.Int32
	var g errgroup.Group
	if *parallel > 0 {
		g.SetLimit(*parallel)
	}
	for _, j := range jobs {
		g.Go(func() error {
			if _, err := pipeline.Run(ctx, j.p, log); err != nil {
				failed.Add(1)
				log.Error("cleaning failed", zap.String("job", j.p.Job), zap.String("config", j.origin), zap.Error(err))
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("all jobs finished",
		zap.Int("jobs", len(jobs)),
		zap.Int32("failed", failed.Load()),
		zap.Duration("duration", time.Since(start).Truncate(time.Millisecond)),
	)
	if failed.Load() > 0 {
		return 1
	}
	return 0
}

type adHoc struct {
	input, output, rejects string
}

// loadJobs reads every config and appends the ad-hoc job when -input is set.
func loadJobs(paths []string, a adHoc) ([]job, error) {
	var jobs []job
	for _, path := range paths {
		p, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{origin: path, p: p})
	}

	if a.input == "" {
		if a.output != "" || a.rejects != "" {
			return nil, errors.New("-output and -rejects require -input")
		}
	} else {
		out := a.output
		if out == "" {
			out = defaultOutput
		}
		p := config.Pipeline{
			Job:     "ecomclean",
			Source:  config.Source{File: config.SourceFile{Path: a.input}},
			Storage: config.Storage{CSV: config.StorageCSV{Path: out}},
			Rejects: config.Rejects{Path: a.rejects},
		}
		p.ApplyDefaults()
		jobs = append(jobs, job{origin: "flags", p: p})
	}

	if len(jobs) == 0 {
		return nil, errors.New("nothing to do: pass -config, -config-list or -input")
	}
	return jobs, nil
}

// collisions reports jobs that would write the same destination, or write a
// file another job reads. Collisions within one job are left to
// config.ValidatePipeline.
func collisions(jobs []job) []string {
	var msgs []string
	written := map[string]string{}
	read := map[string]string{}
	for _, j := range jobs {
		if in := filePath(j.p.Source.File.Path); in != "" {
			if _, ok := read[in]; !ok {
				read[in] = j.origin
			}
		}
	}
	for _, j := range jobs {
		for _, w := range destinations(j.p) {
			if prev, ok := written[w.key]; ok {
				msgs = append(msgs, fmt.Sprintf("%s: error: %s: same destination as %s", j.origin, w.field, prev))
				continue
			}
			written[w.key] = j.origin
			if prev, ok := read[w.key]; ok && prev != j.origin {
				msgs = append(msgs, fmt.Sprintf("%s: error: %s: overwrites the input of %s", j.origin, w.field, prev))
			}
		}
	}
	return msgs
}

type destination struct {
	field string // config path reported on collision
	key   string
}

// destinations lists everything a job writes. Files share one key space so
// a rejects file can collide with another job's CSV output.
func destinations(p config.Pipeline) []destination {
	var out []destination
	cfg := pipeline.SinkConfig(p)
	switch cfg.Kind {
	case "sqlite":
		out = append(out, destination{"storage", "sqlite:" + cfg.DSN + "#" + cfg.Table})
	case "csv":
		out = append(out, destination{"storage", filePath(cfg.Path)})
	default:
		out = append(out, destination{"storage", cfg.Kind + ":" + cfg.Path})
	}
	if rej := filePath(p.Rejects.Path); rej != "" {
		out = append(out, destination{"rejects.path", rej})
	}
	return out
}

func filePath(p string) string {
	if p == "" {
		return ""
	}
	return "file:" + filepath.Clean(p)
}

// metricsPath picks the textfile path: the flag wins, then the first job that
// asks for textfile metrics.
func metricsPath(flagPath string, jobs []job) string {
	if flagPath != "" {
		return flagPath
	}
	for _, j := range jobs {
		if j.p.Metrics.Kind == "textfile" && j.p.Metrics.Path != "" {
			return j.p.Metrics.Path
		}
	}
	return ""
}
