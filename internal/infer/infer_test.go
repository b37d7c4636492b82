package infer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabledash/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	opt := DefaultOptions()

	tests := []struct {
		name     string
		column   string
		values   []string
		expected domain.ColumnType
	}{
		{
			name:     "iso dates",
			column:   "Order Date",
			values:   []string{"2024-01-15", "2024-02-20", "2024-03-25"},
			expected: domain.ColumnTypeDate,
		},
		{
			name:     "us slash dates",
			column:   "Shipped",
			values:   []string{"01/15/2024", "02/20/2024"},
			expected: domain.ColumnTypeDate,
		},
		{
			name:     "date test runs before number test",
			column:   "Day",
			values:   []string{"2024-01-15", "2024-01-16"},
			expected: domain.ColumnTypeDate,
		},
		{
			name:     "bare years are numbers not dates",
			column:   "Year",
			values:   []string{"2023", "2024", "2025"},
			expected: domain.ColumnTypeNumber,
		},
		{
			name:     "currency and separators still numeric",
			column:   "Sales",
			values:   []string{"$1,234.50", "987", "2,000"},
			expected: domain.ColumnTypeNumber,
		},
		{
			name:     "repeating values form a category",
			column:   "Region",
			values:   []string{"North", "South", "North", "South", "North", "South"},
			expected: domain.ColumnTypeCategory,
		},
		{
			name:     "six values over three distinct stays text",
			column:   "Region",
			values:   []string{"A", "B", "C", "A", "B", "C"},
			expected: domain.ColumnTypeText,
		},
		{
			name:     "name-like column is category at any cardinality",
			column:   "Customer Name",
			values:   uniqueStrings(50),
			expected: domain.ColumnTypeCategory,
		},
		{
			name:     "name-like column with one value stays text",
			column:   "Customer Name",
			values:   []string{"Alice"},
			expected: domain.ColumnTypeText,
		},
		{
			name:     "free text",
			column:   "Notes",
			values:   []string{"called back", "left message", "resolved"},
			expected: domain.ColumnTypeText,
		},
		{
			name:     "all empty defaults to text",
			column:   "Blank",
			values:   []string{"", "  ", ""},
			expected: domain.ColumnTypeText,
		},
		{
			name:     "mixed numbers and text fall through to text",
			column:   "Code",
			values:   []string{"12", "abc", "34"},
			expected: domain.ColumnTypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.column, tt.values, opt))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	opt := DefaultOptions()
	values := []string{"North", "South", "East", "North", "South", "East", "North"}

	first := Classify("Region", values, opt)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify("Region", values, opt))
	}
}

func TestClassifySampleSize(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleSize = 3

	// Only the first three values are sampled, so the trailing garbage
	// never reaches the number test.
	values := []string{"1", "2", "3", "not a number"}
	assert.Equal(t, domain.ColumnTypeNumber, Classify("Amount", values, opt))
}

func TestBuildColumn(t *testing.T) {
	opt := DefaultOptions()

	t.Run("number column gets min and max", func(t *testing.T) {
		col := BuildColumn("Sales", []string{"5", "$1,000", "2.50"}, opt)
		require.Equal(t, domain.ColumnTypeNumber, col.Type)
		require.NotNil(t, col.Min)
		require.NotNil(t, col.Max)
		assert.Equal(t, 2.5, *col.Min)
		assert.Equal(t, 1000.0, *col.Max)
	})

	t.Run("category column gets sorted unique values", func(t *testing.T) {
		col := BuildColumn("Region", []string{"South", "North", "South", "North", "South", "North"}, opt)
		require.Equal(t, domain.ColumnTypeCategory, col.Type)
		assert.Equal(t, []string{"North", "South"}, col.UniqueValues)
	})

	t.Run("name-like column keeps every unique value", func(t *testing.T) {
		values := uniqueStrings(50)
		col := BuildColumn("Customer Name", values, opt)
		require.Equal(t, domain.ColumnTypeCategory, col.Type)
		assert.Len(t, col.UniqueValues, 50)
	})

	t.Run("sample values cap at five non-empty", func(t *testing.T) {
		col := BuildColumn("Notes", []string{"", "a", "b", "c", "d", "e", "f"}, opt)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, col.SampleValues)
	})

	t.Run("text column carries no stats", func(t *testing.T) {
		col := BuildColumn("Notes", []string{"x", "y", "z"}, opt)
		assert.Nil(t, col.Min)
		assert.Nil(t, col.Max)
		assert.Nil(t, col.UniqueValues)
	})
}

func TestUniqueValues(t *testing.T) {
	rows := []domain.Row{
		{"Region": "South"},
		{"Region": "North"},
		{"Region": nil},
		{"Region": "South"},
	}
	assert.Equal(t, []string{"North", "South"}, UniqueValues(rows, "Region"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"42", 42, true},
		{"  -3.5 ", -3.5, true},
		{"1,234,567.89", 1234567.89, true},
		{"$99.99", 99.99, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
	}
	for _, tt := range tests {
		n, ok := ParseNumber(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if ok {
			assert.Equal(t, tt.expected, n, "input %q", tt.input)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("01/15/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDate("not a date")
	assert.False(t, ok)
}

func TestStringCell(t *testing.T) {
	assert.Equal(t, "", StringCell(nil))
	assert.Equal(t, "2024-01-15", StringCell(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "hello", StringCell("hello"))
	assert.Equal(t, "3.5", StringCell(3.5))
}

func TestNumericCell(t *testing.T) {
	n, ok := NumericCell(float64(7))
	require.True(t, ok)
	assert.Equal(t, 7.0, n)

	n, ok = NumericCell("$1,000")
	require.True(t, ok)
	assert.Equal(t, 1000.0, n)

	_, ok = NumericCell(nil)
	assert.False(t, ok)

	_, ok = NumericCell("garbage")
	assert.False(t, ok)
}

func uniqueStrings(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "value_" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	return out
}
