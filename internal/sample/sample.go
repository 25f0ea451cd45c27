// Package sample generates a synthetic e-commerce order table with known data
// quality problems: inconsistent text, invalid and missing values, price
// outliers and exact duplicate rows. Output is fully determined by the
// generator passed in.
package sample

import (
	"fmt"
	"math/rand/v2"

	"ecomclean/internal/schema"
	"ecomclean/internal/table"
)

// Anomaly block sizes. Each numeric column reserves this many trailing
// records for its problems before the table is shuffled.
const (
	NegativePrices     = 20
	MissingPrices      = 20
	OutlierPrices      = 10
	NegativeQuantities = 20
	MissingQuantities  = 20
	ZeroQuantities     = 10
	InvalidRatings     = 20
	MissingRatings     = 30

	firstOrderID = 1001
)

// Config sizes the generated table.
type Config struct {
	Records    int // distinct orders before duplication
	Duplicates int // rows re-sampled (without replacement) and appended
}

// Default matches the reference dataset: 1000 orders plus 50 duplicates.
var Default = Config{Records: 1000, Duplicates: 50}

var (
	names = []any{
		"John Doe", "jane smith", "ALICE WONG", "  Bob Johnson  ",
		"Maria Garcia", nil, "Emma Wilson", "Michael Brown  ",
	}
	emails = []any{
		"john@email.com", "jane@email.com", "alice@invalid",
		nil, "bob@email.com", "not-an-email", "maria@email.com",
	}
	categories = []any{
		"Electronics", "electronics", "ELECTRONICS",
		"Clothing", "clothing", "Books", "books",
		nil, "Home & Garden", "home & garden",
	}
	dates = []any{
		"2024-01-15", "2024/02/20", "15-03-2024",
		nil, "2026-12-31",
		"2024-01-01", "2024-02-14", "2023-11-20",
	}
	statuses = []any{
		"Paid", "paid", "PAID", "Pending", "pending",
		"Failed", "failed", nil, "Refunded", "Unknown",
	}
)

// Columns is the column layout of a generated table.
var Columns = []table.Column{
	{Name: schema.OrderID, Type: table.TypeInteger},
	{Name: schema.CustomerName, Type: table.TypeText},
	{Name: schema.Email, Type: table.TypeText},
	{Name: schema.Category, Type: table.TypeText},
	{Name: schema.Price, Type: table.TypeFloat},
	{Name: schema.Quantity, Type: table.TypeFloat},
	{Name: schema.OrderDate, Type: table.TypeText},
	{Name: schema.PaymentStatus, Type: table.TypeText},
	{Name: schema.CustomerRating, Type: table.TypeFloat},
}

// Generate builds a table from cfg using rng.
func Generate(rng *rand.Rand, cfg Config) (*table.Table, error) {
	n := cfg.Records
	reserved := max(
		NegativePrices+MissingPrices+OutlierPrices,
		NegativeQuantities+MissingQuantities+ZeroQuantities,
		InvalidRatings+MissingRatings,
	)
	if n < reserved {
		return nil, fmt.Errorf("sample: need at least %d records, got %d", reserved, n)
	}
	if cfg.Duplicates < 0 || cfg.Duplicates > n {
		return nil, fmt.Errorf("sample: duplicates must be in [0, %d], got %d", n, cfg.Duplicates)
	}

	prices := column(n,
		block{n - NegativePrices - MissingPrices - OutlierPrices, func() table.Value { return uniform(rng, 10, 500) }},
		block{NegativePrices, func() table.Value { return uniform(rng, -50, -10) }},
		block{MissingPrices, table.Absent},
		block{OutlierPrices, func() table.Value { return uniform(rng, 5000, 10000) }},
	)
	quantities := column(n,
		block{n - NegativeQuantities - MissingQuantities - ZeroQuantities, func() table.Value { return intn(rng, 1, 10) }},
		block{NegativeQuantities, func() table.Value { return intn(rng, -5, 0) }},
		block{MissingQuantities, table.Absent},
		block{ZeroQuantities, func() table.Value { return table.Number(0) }},
	)
	ratings := column(n,
		block{n - InvalidRatings - MissingRatings, func() table.Value { return intn(rng, 1, 6) }},
		block{InvalidRatings, func() table.Value { return intn(rng, 6, 11) }},
		block{MissingRatings, table.Absent},
	)

	t := table.New(Columns)
	for i := 0; i < n; i++ {
		t.Append(table.Record{
			table.Number(float64(firstOrderID + i)),
			choice(rng, names),
			choice(rng, emails),
			choice(rng, categories),
			prices[i],
			quantities[i],
			choice(rng, dates),
			choice(rng, statuses),
			ratings[i],
		})
	}

	rng.Shuffle(len(t.Rows), func(i, j int) { t.Rows[i], t.Rows[j] = t.Rows[j], t.Rows[i] })

	for _, i := range rng.Perm(n)[:cfg.Duplicates] {
		dup := make(table.Record, len(t.Rows[i]))
		copy(dup, t.Rows[i])
		t.Append(dup)
	}
	return t, nil
}

type block struct {
	size int
	gen  func() table.Value
}

func column(n int, blocks ...block) []table.Value {
	out := make([]table.Value, 0, n)
	for _, b := range blocks {
		for i := 0; i < b.size; i++ {
			out = append(out, b.gen())
		}
	}
	return out
}

// uniform returns a number in [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) table.Value {
	return table.Number(lo + rng.Float64()*(hi-lo))
}

// intn returns an integer in [lo, hi).
func intn(rng *rand.Rand, lo, hi int) table.Value {
	return table.Number(float64(lo + rng.IntN(hi-lo)))
}

func choice(rng *rand.Rand, opts []any) table.Value {
	switch v := opts[rng.IntN(len(opts))].(type) {
	case string:
		return table.String(v)
	default:
		return table.Absent()
	}
}
