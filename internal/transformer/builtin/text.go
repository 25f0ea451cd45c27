package builtin

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ecomclean/internal/schema"
	"ecomclean/internal/table"
)

// NormalizeText trims string cells of the policy's text columns and rewrites
// their case: title case for TextTitle, lowercase for TextLower. Absent and
// numeric cells are left alone; no records are added or removed.
type NormalizeText struct {
	Policy schema.Policy
	Log    *zap.Logger
}

func (NormalizeText) Name() string { return StageText }

func (n NormalizeText) Apply(t *table.Table) *table.Table {
	log := nopIfNil(n.Log)
	// Casers keep state and are not safe for concurrent use; build per run.
	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)

	for _, role := range n.Policy.Roles {
		if role.Text == schema.TextNone {
			continue
		}
		idx := t.Index(role.Name)
		if idx < 0 {
			continue
		}

		var rewrite func(string) string
		switch role.Text {
		case schema.TextTitle:
			rewrite = func(s string) string { return titleWords(strings.TrimSpace(s), upper, lower) }
		case schema.TextLower:
			rewrite = func(s string) string { return lower.String(strings.TrimSpace(s)) }
		}

		before := distinct(t, idx)
		changed := 0
		for _, r := range t.Rows {
			s, ok := r[idx].Str()
			if !ok {
				continue
			}
			if ns := rewrite(s); ns != s {
				r[idx] = table.String(ns)
				changed++
			}
		}
		log.Info("text column normalized",
			zap.String("column", role.Name),
			zap.Int("changed", changed),
			zap.Int("unique_before", before),
			zap.Int("unique_after", distinct(t, idx)),
		)
	}
	return t
}

// titleWords uppercases the first letter of every whitespace-separated word
// and lowercases the rest. Whitespace runs are kept as they are.
func titleWords(s string, upper, lower cases.Caser) string {
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := s[start:end]
		_, size := utf8.DecodeRuneInString(w)
		b.WriteString(upper.String(w[:size]))
		b.WriteString(lower.String(w[size:]))
		start = -1
	}
	for i, r := range s {
		if unicode.IsSpace(r) {
			flush(i)
			b.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return b.String()
}

// distinct counts the distinct present cells of column idx.
func distinct(t *table.Table, idx int) int {
	seen := make(map[table.Value]struct{})
	for _, r := range t.Rows {
		if !r[idx].IsAbsent() {
			seen[r[idx]] = struct{}{}
		}
	}
	return len(seen)
}
