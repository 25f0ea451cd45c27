package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalName lowercases a column identifier and replaces every space with
// an underscore. Other characters are kept as they are.
func CanonicalName(name string) string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(name), " ", "_")
}
