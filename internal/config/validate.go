package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the config
// (e.g. "storage.sqlite.table").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static checks over p without mutating it.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateOutputs(p)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			return []Issue{{Severity: SeverityError, Path: "source.file.path", Message: "file source requires a non-empty path"}}
		}
		return nil
	case "":
		return []Issue{{Severity: SeverityError, Path: "source.kind", Message: "source.kind must not be empty"}}
	default:
		return []Issue{{Severity: SeverityError, Path: "source.kind", Message: fmt.Sprintf("unknown source kind %q", s.Kind)}}
	}
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	switch p.Kind {
	case "csv":
	case "":
		return []Issue{{Severity: SeverityError, Path: "parser.kind", Message: "parser.kind must not be empty"}}
	default:
		return []Issue{{Severity: SeverityError, Path: "parser.kind", Message: fmt.Sprintf("unknown parser kind %q", p.Kind)}}
	}

	if iss, ok := checkComma("parser.options.comma", p.Options.String("comma", ",")); !ok {
		issues = append(issues, iss)
	}
	if !p.Options.Bool("has_header", true) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.has_header",
			Message:  "input has no header row; columns are named col_0..col_n and no column rule applies",
		})
	}
	return issues
}

func checkComma(path, s string) (Issue, bool) {
	r, size := utf8.DecodeRuneInString(s)
	switch {
	case s == "":
		return Issue{}, true
	case size != len(s):
		return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf("delimiter %q must be a single character", s)}, false
	case r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError:
		return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf("delimiter %q is not allowed", s)}, false
	}
	return Issue{}, true
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	switch s.Kind {
	case "csv":
		if strings.TrimSpace(s.CSV.Path) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.csv.path", Message: "csv storage requires a non-empty path"})
		}
		if iss, ok := checkComma("storage.csv.comma", s.CSV.Comma); !ok {
			issues = append(issues, iss)
		}
	case "sqlite":
		if strings.TrimSpace(s.SQLite.DSN) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.sqlite.dsn", Message: "sqlite storage requires a DSN"})
		}
		if strings.TrimSpace(s.SQLite.Table) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.sqlite.table", Message: "sqlite storage requires a table"})
		}
	case "":
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.kind", Message: "storage.kind must not be empty"})
	default:
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.kind", Message: fmt.Sprintf("unknown storage kind %q", s.Kind)})
	}
	return issues
}

// validateOutputs guards against a run overwriting its own input.
func validateOutputs(p Pipeline) []Issue {
	var issues []Issue
	in := cleanPath(p.Source.File.Path)
	out := ""
	if p.Storage.Kind == "csv" {
		out = cleanPath(p.Storage.CSV.Path)
	}
	rej := cleanPath(p.Rejects.Path)

	if in != "" && out != "" && in == out {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.csv.path", Message: "output path equals the input path"})
	}
	if rej != "" && (rej == in || rej == out) {
		issues = append(issues, Issue{Severity: SeverityError, Path: "rejects.path", Message: "rejects path collides with the input or output path"})
	}
	return issues
}

func cleanPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	return filepath.Clean(p)
}

func validateMetrics(m Metrics) []Issue {
	switch m.Kind {
	case "", "none":
		return nil
	case "textfile":
		if strings.TrimSpace(m.Path) == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.path", Message: "textfile metrics require a path"}}
		}
		return nil
	default:
		return []Issue{{Severity: SeverityError, Path: "metrics.kind", Message: fmt.Sprintf("unknown metrics kind %q", m.Kind)}}
	}
}
