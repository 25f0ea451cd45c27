package builtin

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumns(t *testing.T) {
	t.Parallel()

	tb := tbl(t, []string{"Order ID", "Customer Name", "EMAIL", "price"},
		[]any{1, "John", "a@b", 10.0},
	)
	before := tb.Rows[0]

	out := NormalizeColumns{}.Apply(tb)

	assert.Equal(t, []string{"order_id", "customer_name", "email", "price"}, out.Names())
	assert.Equal(t, before, out.Rows[0], "cells are untouched")

	canonical := regexp.MustCompile(`^[^A-Z ]*$`)
	for _, n := range out.Names() {
		assert.Regexp(t, canonical, n)
	}
}

func TestNormalizeColumns_Idempotent(t *testing.T) {
	t.Parallel()

	tb := tbl(t, []string{"order_id", "payment_status"})
	out := NormalizeColumns{}.Apply(NormalizeColumns{}.Apply(tb))
	assert.Equal(t, []string{"order_id", "payment_status"}, out.Names())
}
