package sqlite

import (
	"fmt"
	"strings"

	"ecomclean/internal/table"
)

// SQLType maps a column storage type to a SQLite column type.
func SQLType(t table.ColumnType) string {
	switch t {
	case table.TypeInteger:
		return "INTEGER"
	case table.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL returns
//
//	CREATE TABLE IF NOT EXISTS "name" (
//	  "col1" TYPE,
//	  "col2" TYPE
//	);
//
// Every column is nullable. Dotted names are quoted per segment.
func BuildCreateTableSQL(name string, cols []table.Column) (string, error) {
	fqn := strings.TrimSpace(name)
	if fqn == "" {
		return "", fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("sqlite ddl: column with empty name in table %s", fqn)
		}
		defs = append(defs, quoteIdent(c.Name)+" "+SQLType(c.Type))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(fqn),
		strings.Join(defs, ",\n  "),
	), nil
}

func buildInsertSQL(name string, cols []table.Column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteFQN(name), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
