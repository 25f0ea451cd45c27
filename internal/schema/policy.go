// Package schema declares the column policy of the e-commerce dataset: for each
// known column, its value type and the imputation, text and validation rules
// the cleaning stages apply to it. Stages consult the policy instead of
// branching on column names, so each rule can be read and tested per column.
package schema

import (
	"strings"

	"ecomclean/internal/table"
)

// Imputation selects how a column's absent cells are resolved.
type Imputation uint8

const (
	ImputeNone     Imputation = iota // leave absent cells alone
	ImputeMedian                     // fill with the median of present numbers
	ImputeMode                       // fill with the most frequent present value
	ImputeConstant                   // fill with Role.Fill
	ImputeDrop                       // remove the record (critical column)
)

func (i Imputation) String() string {
	switch i {
	case ImputeMedian:
		return "median"
	case ImputeMode:
		return "mode"
	case ImputeConstant:
		return "constant"
	case ImputeDrop:
		return "drop"
	default:
		return "none"
	}
}

// TextRule selects the canonical form of a string column.
type TextRule uint8

const (
	TextNone  TextRule = iota
	TextTitle          // trim, then title-case each whitespace-separated word
	TextLower          // trim, then lowercase
)

// Check is a record-level keep predicate on a single cell. Records whose cell
// fails Keep are removed by the validator.
type Check struct {
	// Reason is a short description used in logs and the rejects file.
	Reason string
	Keep   func(table.Value) bool
}

// Role is the declared behavior of one column.
type Role struct {
	Name   string
	Type   table.ColumnType // TypeText or a numeric type
	Impute Imputation
	Fill   string // literal used by ImputeConstant
	Text   TextRule
	Check  *Check
}

// Numeric reports whether the column holds numbers.
func (r Role) Numeric() bool { return r.Type != table.TypeText }

// Policy is an ordered list of roles. The order is the processing order of
// the missing-value handler and of the validator filters.
type Policy struct {
	Roles []Role
}

// Role returns the role declared for name.
func (p Policy) Role(name string) (Role, bool) {
	for _, r := range p.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// Column identifiers of the e-commerce dataset.
const (
	OrderID        = "order_id"
	CustomerName   = "customer_name"
	Email          = "email"
	Category       = "category"
	Price          = "price"
	Quantity       = "quantity"
	OrderDate      = "order_date"
	PaymentStatus  = "payment_status"
	CustomerRating = "customer_rating"
)

// Placeholders written into imputed text columns.
const (
	UnknownCustomer = "Unknown Customer"
	UnknownPayment  = "Unknown"
)

// ECommerce is the hardcoded cleaning policy. Roles appear in the order the
// missing-value handler visits them: medians first, then category, name,
// email (drop), payment status, and order date (drop) last.
var ECommerce = Policy{Roles: []Role{
	{Name: OrderID, Type: table.TypeInteger},
	{Name: Price, Type: table.TypeFloat, Impute: ImputeMedian, Check: &Check{Reason: "price <= 0", Keep: positive}},
	{Name: Quantity, Type: table.TypeFloat, Impute: ImputeMedian, Check: &Check{Reason: "quantity <= 0", Keep: positive}},
	{Name: CustomerRating, Type: table.TypeFloat, Impute: ImputeMedian, Check: &Check{Reason: "rating not in 1-5", Keep: between(1, 5)}},
	{Name: Category, Type: table.TypeText, Impute: ImputeMode, Text: TextLower},
	{Name: CustomerName, Type: table.TypeText, Impute: ImputeConstant, Fill: UnknownCustomer, Text: TextTitle},
	{Name: Email, Type: table.TypeText, Impute: ImputeDrop, Text: TextLower, Check: &Check{Reason: "email missing '@'", Keep: containsAt}},
	{Name: PaymentStatus, Type: table.TypeText, Impute: ImputeConstant, Fill: UnknownPayment, Text: TextLower},
	{Name: OrderDate, Type: table.TypeText, Impute: ImputeDrop},
}}

// OutlierColumn is the column whose upper tail is reported (never removed).
const OutlierColumn = Price

// OutlierQuantile is the quantile above which a price is reported.
const OutlierQuantile = 0.99

func positive(v table.Value) bool {
	n, ok := v.Num()
	return ok && n > 0
}

func between(lo, hi float64) func(table.Value) bool {
	return func(v table.Value) bool {
		n, ok := v.Num()
		return ok && n >= lo && n <= hi
	}
}

func containsAt(v table.Value) bool {
	s, ok := v.Str()
	return ok && strings.Contains(s, "@")
}
