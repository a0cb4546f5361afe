package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecord_TextAndNumeric(t *testing.T) {
	r := NewRecord()
	r.SetText("ASIN", "B001")
	r.SetFloat("Units Ordered", 12)

	require.Equal(t, "B001", r.Str("ASIN"))
	require.Equal(t, 12.0, r.Float("Units Ordered"))
	require.True(t, r.IsNumeric("Units Ordered"))
	require.False(t, r.IsNumeric("ASIN"))
	require.Equal(t, 0.0, r.Float("missing"))
	require.Equal(t, "", r.Str("missing"))
	require.True(t, r.Has("ASIN"))
	require.False(t, r.Has("missing"))

	// Re-typing a column replaces the previous form.
	r.SetFloat("ASIN", 1)
	require.Equal(t, "", r.Str("ASIN"))
}

func TestTable_Aggregates(t *testing.T) {
	tb := New([]string{"Query", "Clicks: Brand Count", "Clicks: Brand Share %"})
	for _, v := range []float64{2, 4, 6} {
		r := NewRecord()
		r.SetFloat("Clicks: Brand Count", v)
		tb.Append(r)
	}
	require.Equal(t, 3, tb.Len())
	require.Equal(t, 12.0, tb.Sum("Clicks: Brand Count"))
	require.Equal(t, 4.0, tb.Mean("Clicks: Brand Count"))
	require.Equal(t, []string{"Clicks: Brand Count", "Clicks: Brand Share %"}, tb.ColumnsMatching("Clicks"))

	var nilTable *Table
	require.True(t, nilTable.Empty())
	require.Equal(t, 0.0, nilTable.Mean("x"))
}

func TestCleanHeader(t *testing.T) {
	require.Equal(t, "Search Query", CleanHeader("\ufeff \"Search Query\" "))
	require.Equal(t, "Units Ordered", CleanHeader("Units Ordered\t"))
}
