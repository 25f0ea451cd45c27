// Package config defines the configuration model of a cleaning job and loads
// it from JSON or YAML files.
//
// Example (JSON):
//
//	{
//	  "job":     "orders",
//	  "source":  { "kind": "file", "file": { "path": "sample_ecommerce_data.csv" } },
//	  "parser":  { "kind": "csv", "options": { "has_header": true, "comma": "," } },
//	  "storage": { "kind": "csv", "csv": { "path": "cleaned_ecommerce_data.csv" } },
//	  "rejects": { "path": "rejects/orders.csv" },
//	  "metrics": { "kind": "textfile", "path": "ecomclean.prom" }
//	}
package config

import (
	"github.com/spf13/cast"
)

// Pipeline describes one cleaning job: where the data comes from, how it is
// parsed, and where the cleaned table and side outputs go.
type Pipeline struct {
	// Job names the run in logs and metric labels.
	Job string `json:"job" yaml:"job"`

	Source  Source  `json:"source" yaml:"source"`
	Parser  Parser  `json:"parser" yaml:"parser"`
	Storage Storage `json:"storage" yaml:"storage"`
	Rejects Rejects `json:"rejects" yaml:"rejects"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Source identifies the data source. Current kind: "file".
type Source struct {
	Kind string     `json:"kind" yaml:"kind"`
	File SourceFile `json:"file" yaml:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// Parser selects how the raw source is turned into a table. Current kind:
// "csv", with options has_header (bool, default true) and comma (string,
// default ",").
type Parser struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Options Options `json:"options" yaml:"options"`
}

// Storage selects the sink for the cleaned table.
type Storage struct {
	// Kind is "csv" or "sqlite".
	Kind   string        `json:"kind" yaml:"kind"`
	CSV    StorageCSV    `json:"csv" yaml:"csv"`
	SQLite StorageSQLite `json:"sqlite" yaml:"sqlite"`
}

// StorageCSV configures the "csv" sink.
type StorageCSV struct {
	Path string `json:"path" yaml:"path"`
	// Comma is the output delimiter; defaults to ",".
	Comma string `json:"comma" yaml:"comma"`
}

// StorageSQLite configures the "sqlite" sink.
type StorageSQLite struct {
	DSN   string `json:"dsn" yaml:"dsn"`
	Table string `json:"table" yaml:"table"`
	// Append keeps existing rows; by default the table is replaced.
	Append bool `json:"append" yaml:"append"`
}

// Rejects configures the optional file of removed records.
type Rejects struct {
	Path string `json:"path" yaml:"path"`
}

// Metrics configures the metrics backend: "none" (default) or "textfile".
type Metrics struct {
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path" yaml:"path"`
}

// ApplyDefaults fills kinds left empty with their only or most common value.
func (p *Pipeline) ApplyDefaults() {
	if p.Source.Kind == "" {
		p.Source.Kind = "file"
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = "csv"
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if p.Storage.Kind == "" {
		p.Storage.Kind = "csv"
	}
	if p.Metrics.Kind == "" {
		p.Metrics.Kind = "none"
	}
}

// Options is a free-form option bag with typed accessors. Values decoded from
// JSON (float64 numbers) or YAML (int numbers) are coerced with spf13/cast;
// the default is returned when a key is absent or cannot be coerced.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def. Strings such as "true" and "0"
// are accepted.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a delimiter.
func (o Options) Rune(key string, def rune) rune {
	if s := o.String(key, ""); s != "" {
		return []rune(s)[0]
	}
	return def
}

// StringSlice returns a []string for key, or nil.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		if ss, err := cast.ToStringSliceE(v); err == nil {
			return ss
		}
	}
	return nil
}
