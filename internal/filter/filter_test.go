package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabledash/pkg/contracts/domain"
)

func sampleRows() []domain.Row {
	return []domain.Row{
		{"Region": "North", "Sales": 100.0, "Customer": "Alice", "Date": time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"Region": "South", "Sales": 250.0, "Customer": "Bob", "Date": time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"Region": "North", "Sales": 75.0, "Customer": "Carol", "Date": time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"Region": "South", "Sales": nil, "Customer": "alice", "Date": nil},
	}
}

func active(f domain.Filter) domain.Filter {
	f.IsActive = true
	return f
}

func TestApplyNoActiveFilters(t *testing.T) {
	rows := sampleRows()

	assert.Len(t, Apply(rows, nil), len(rows))

	inactive := domain.Filter{
		ColumnName: "Region",
		ColumnType: domain.ColumnTypeCategory,
		Operator:   domain.FilterIn,
		Values:     []string{"North"},
		IsActive:   false,
	}
	assert.Len(t, Apply(rows, []domain.Filter{inactive}), len(rows))
}

func TestApplyConjunction(t *testing.T) {
	rows := sampleRows()
	region := active(domain.Filter{
		ColumnName: "Region",
		ColumnType: domain.ColumnTypeCategory,
		Operator:   domain.FilterIn,
		Values:     []string{"North"},
	})
	sales := active(domain.Filter{
		ColumnName: "Sales",
		ColumnType: domain.ColumnTypeNumber,
		Operator:   domain.FilterGreaterThan,
		Number:     80,
	})

	out := Apply(rows, []domain.Filter{region, sales})
	require.Len(t, out, 1)
	assert.Equal(t, "Alice", out[0]["Customer"])
}

// Adding a filter can only shrink the result set.
func TestApplyMonotonic(t *testing.T) {
	rows := sampleRows()
	filters := []domain.Filter{
		active(domain.Filter{ColumnName: "Region", ColumnType: domain.ColumnTypeCategory, Operator: domain.FilterIn, Values: []string{"North", "South"}}),
		active(domain.Filter{ColumnName: "Sales", ColumnType: domain.ColumnTypeNumber, Operator: domain.FilterGreaterThan, Number: 50}),
		active(domain.Filter{ColumnName: "Customer", ColumnType: domain.ColumnTypeText, Operator: domain.FilterContains, Value: "a"}),
	}

	prev := len(rows)
	for i := 1; i <= len(filters); i++ {
		n := len(Apply(rows, filters[:i]))
		assert.LessOrEqual(t, n, prev, "filter %d grew the result set", i)
		prev = n
	}
}

func TestMatchText(t *testing.T) {
	rows := sampleRows()
	tests := []struct {
		name     string
		operator domain.FilterOperator
		value    string
		expected int
	}{
		{"equals is case-insensitive", domain.FilterEquals, "ALICE", 2},
		{"contains", domain.FilterContains, "ar", 1},
		{"starts with", domain.FilterStartsWith, "al", 2},
		{"ends with", domain.FilterEndsWith, "ob", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := active(domain.Filter{
				ColumnName: "Customer",
				ColumnType: domain.ColumnTypeText,
				Operator:   tt.operator,
				Value:      tt.value,
			})
			assert.Len(t, Apply(rows, []domain.Filter{f}), tt.expected)
		})
	}
}

func TestMatchNumberBetweenInclusive(t *testing.T) {
	rows := []domain.Row{
		{"Sales": 9.99},
		{"Sales": 10.0},
		{"Sales": 15.0},
		{"Sales": 20.0},
		{"Sales": 20.01},
		{"Sales": nil},
		{"Sales": "not numeric"},
	}
	upper := 20.0
	f := active(domain.Filter{
		ColumnName: "Sales",
		ColumnType: domain.ColumnTypeNumber,
		Operator:   domain.FilterBetween,
		Number:     10,
		NumberTo:   &upper,
	})

	out := Apply(rows, []domain.Filter{f})
	require.Len(t, out, 3)
	assert.Equal(t, 10.0, out[0]["Sales"])
	assert.Equal(t, 20.0, out[2]["Sales"])
}

func TestMatchNumberBetweenWithoutUpperBound(t *testing.T) {
	rows := []domain.Row{{"Sales": 10.0}, {"Sales": 11.0}}
	f := active(domain.Filter{
		ColumnName: "Sales",
		ColumnType: domain.ColumnTypeNumber,
		Operator:   domain.FilterBetween,
		Number:     10,
	})

	out := Apply(rows, []domain.Filter{f})
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0]["Sales"])
}

func TestMatchNumberMissingCellFails(t *testing.T) {
	rows := sampleRows()
	f := active(domain.Filter{
		ColumnName: "Sales",
		ColumnType: domain.ColumnTypeNumber,
		Operator:   domain.FilterLessThan,
		Number:     1e9,
	})

	// The nil Sales row never matches a numeric filter, however wide.
	assert.Len(t, Apply(rows, []domain.Filter{f}), 3)
}

func TestMatchNumberCoercesStrings(t *testing.T) {
	rows := []domain.Row{{"Sales": "$1,000"}}
	f := active(domain.Filter{
		ColumnName: "Sales",
		ColumnType: domain.ColumnTypeNumber,
		Operator:   domain.FilterEquals,
		Number:     1000,
	})
	assert.Len(t, Apply(rows, []domain.Filter{f}), 1)
}

func TestMatchCategory(t *testing.T) {
	rows := sampleRows()

	t.Run("membership", func(t *testing.T) {
		f := active(domain.Filter{
			ColumnName: "Region",
			ColumnType: domain.ColumnTypeCategory,
			Operator:   domain.FilterIn,
			Values:     []string{"South"},
		})
		assert.Len(t, Apply(rows, []domain.Filter{f}), 2)
	})

	t.Run("empty values list is pass-through", func(t *testing.T) {
		f := active(domain.Filter{
			ColumnName: "Region",
			ColumnType: domain.ColumnTypeCategory,
			Operator:   domain.FilterIn,
		})
		assert.Len(t, Apply(rows, []domain.Filter{f}), len(rows))
	})

	t.Run("membership is exact, not case-folded", func(t *testing.T) {
		f := active(domain.Filter{
			ColumnName: "Region",
			ColumnType: domain.ColumnTypeCategory,
			Operator:   domain.FilterIn,
			Values:     []string{"north"},
		})
		assert.Empty(t, Apply(rows, []domain.Filter{f}))
	})
}

func TestMatchDateRange(t *testing.T) {
	rows := sampleRows()
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("both bounds inclusive", func(t *testing.T) {
		f := active(domain.Filter{
			ColumnName: "Date",
			ColumnType: domain.ColumnTypeDate,
			Operator:   domain.FilterDateRange,
			From:       &from,
			To:         &to,
		})
		assert.Len(t, Apply(rows, []domain.Filter{f}), 2)
	})

	t.Run("lower bound only", func(t *testing.T) {
		f := active(domain.Filter{
			ColumnName: "Date",
			ColumnType: domain.ColumnTypeDate,
			Operator:   domain.FilterDateRange,
			From:       &from,
		})
		assert.Len(t, Apply(rows, []domain.Filter{f}), 2)
	})

	t.Run("nil date cell fails the row", func(t *testing.T) {
		f := active(domain.Filter{
			ColumnName: "Date",
			ColumnType: domain.ColumnTypeDate,
			Operator:   domain.FilterDateRange,
		})
		// No bounds, but the row with a nil date still drops.
		assert.Len(t, Apply(rows, []domain.Filter{f}), 3)
	})

	t.Run("string date cells are parsed", func(t *testing.T) {
		stringRows := []domain.Row{{"Date": "2024-02-15"}}
		f := active(domain.Filter{
			ColumnName: "Date",
			ColumnType: domain.ColumnTypeDate,
			Operator:   domain.FilterDateRange,
			From:       &from,
			To:         &to,
		})
		assert.Len(t, Apply(stringRows, []domain.Filter{f}), 1)
	})
}
