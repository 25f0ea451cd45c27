package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomclean/internal/table"
)

// identityTransformer returns its input unchanged.
type identityTransformer struct{}

func (identityTransformer) Name() string                      { return "identity" }
func (identityTransformer) Apply(t *table.Table) *table.Table { return t }

// dropFirst removes the first record.
type dropFirst struct{}

func (dropFirst) Name() string { return "drop_first" }
func (dropFirst) Apply(t *table.Table) *table.Table {
	if t.Len() > 0 {
		t.Rows = t.Rows[1:]
	}
	return t
}

// markTransformer appends its rank to a shared log so tests can check order.
type markTransformer struct {
	rank int
	log  *[]int
}

func (m markTransformer) Name() string { return "mark" }
func (m markTransformer) Apply(t *table.Table) *table.Table {
	*m.log = append(*m.log, m.rank)
	return t
}

func makeTable(n int) *table.Table {
	t := table.New([]table.Column{{Name: "id", Type: table.TypeInteger}})
	for i := 0; i < n; i++ {
		t.Append(table.Record{table.Number(float64(i))})
	}
	return t
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	in := makeTable(3)
	out := Chain{}.Apply(in)
	assert.Same(t, in, out)
}

func TestChain_OrderAndSteps(t *testing.T) {
	t.Parallel()

	var order []int
	c := Chain{
		markTransformer{rank: 1, log: &order},
		dropFirst{},
		markTransformer{rank: 2, log: &order},
		identityTransformer{},
		dropFirst{},
	}

	var steps []Step
	out := c.Run(makeTable(5), func(s Step) { steps = append(steps, s) })

	assert.Equal(t, []int{1, 2}, order)
	require.Equal(t, 3, out.Len())
	require.Len(t, steps, 5)

	wantNames := []string{"mark", "drop_first", "mark", "identity", "drop_first"}
	wantIn := []int{5, 5, 4, 4, 4}
	wantOut := []int{5, 4, 4, 4, 3}
	for i, s := range steps {
		assert.Equal(t, wantNames[i], s.Name)
		assert.Equal(t, wantIn[i], s.RowsIn, "step %d rows in", i)
		assert.Equal(t, wantOut[i], s.RowsOut, "step %d rows out", i)
		assert.GreaterOrEqual(t, s.Duration.Nanoseconds(), int64(0))
	}
}

func BenchmarkChain_Identity(b *testing.B) {
	c := Chain{identityTransformer{}, identityTransformer{}, identityTransformer{}}
	t := makeTable(1000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Apply(t)
	}
}
