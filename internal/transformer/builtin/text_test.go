package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ecomclean/internal/schema"
)

func TestTitleWords(t *testing.T) {
	t.Parallel()

	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)

	tests := []struct {
		in, want string
	}{
		{"john smith", "John Smith"},
		{"JOHN SMITH", "John Smith"},
		{"mARY-jane o'neil", "Mary-jane O'neil"},
		{"jane  doe", "Jane  Doe"},
		{"élodie durand", "Élodie Durand"},
		{"unknown customer", "Unknown Customer"},
		{"x", "X"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleWords(tt.in, upper, lower), "titleWords(%q)", tt.in)
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tb := tbl(t, []string{"customer_name", "email", "category", "payment_status", "order_date"},
		[]any{"  john SMITH ", " John@Example.COM", "BOOKS ", " Paid", " 2024-01-01 "},
		[]any{nil, "a@b.com", "books", "pending", "2024-01-02"},
		[]any{"Unknown Customer", "X@Y", "Electronics", "Unknown", "2024-01-03"},
	)

	out := NormalizeText{Policy: schema.ECommerce}.Apply(tb)

	assert.Equal(t, values("John Smith", nil, "Unknown Customer"), column(t, out, "customer_name"))
	assert.Equal(t, values("john@example.com", "a@b.com", "x@y"), column(t, out, "email"))
	assert.Equal(t, values("books", "books", "electronics"), column(t, out, "category"))
	assert.Equal(t, values("paid", "pending", "unknown"), column(t, out, "payment_status"))
	assert.Equal(t, values(" 2024-01-01 ", "2024-01-02", "2024-01-03"), column(t, out, "order_date"),
		"columns without a text rule are untouched")
}

func TestNormalizeText_Idempotent(t *testing.T) {
	t.Parallel()

	tb := tbl(t, []string{"customer_name", "category"},
		[]any{" aNNa  lee ", "HOME & garden"},
	)
	stage := NormalizeText{Policy: schema.ECommerce}
	once := stage.Apply(tb).Clone()
	twice := stage.Apply(once.Clone())
	assert.Equal(t, once.Rows, twice.Rows)
}
