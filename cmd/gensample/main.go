// Command gensample writes a synthetic e-commerce order export with known
// anomalies (missing, negative and outlying values, bad emails, duplicates)
// for exercising ecomclean.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"ecomclean/internal/logging"
	"ecomclean/internal/sample"
	"ecomclean/internal/storage/csvfile"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("gensample", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "sample_ecommerce_data.csv", "output CSV path")
	seed := fs.Uint64("seed", 42, "random seed; equal seeds give equal files")
	records := fs.Int("records", sample.Default.Records, "distinct orders")
	dups := fs.Int("duplicates", sample.Default.Duplicates, "duplicate rows appended")
	verbose := fs.Bool("v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	log, err := logging.New(logging.Options{Verbose: *verbose, Format: "console"})
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	t, err := sample.Generate(rand.New(rand.NewPCG(*seed, *seed)), sample.Config{Records: *records, Duplicates: *dups})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	sink, err := csvfile.New(*out, ',')
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	n, err := sink.Write(ctx, t)
	if err != nil {
		log.Error("writing sample failed", zap.String("path", *out), zap.Error(err))
		return 1
	}
	log.Info("sample data written",
		zap.String("path", *out),
		zap.Int64("rows", n),
		zap.Uint64("seed", *seed),
	)
	return 0
}
