package quickorder

import (
	"fmt"
	"strings"
	"testing"

	"autoparts-storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQty(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"5", 5},
		{" 12", 12},
		{"7abc", 7},
		{"+3", 3},
		{"0", 1},
		{"-4", 1},
		{"", 1},
		{"abc", 1},
		{"2.9", 2},
		{"99999999999999999999", 1_000_000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQty(tt.raw))
		})
	}
}

func TestNormalizeSingle(t *testing.T) {
	item, ok := NormalizeSingle("  abc123 ", 0)
	require.True(t, ok)
	assert.Equal(t, models.CanonicalItem{PartNumber: "ABC123", Qty: 1}, item)

	item, ok = NormalizeSingle("bp-100", 4)
	require.True(t, ok)
	assert.Equal(t, 4, item.Qty)

	_, ok = NormalizeSingle("   ", 3)
	assert.False(t, ok)
}

func TestNormalizeRawLines(t *testing.T) {
	items := NormalizeRawLines([]models.RawLine{
		{PartNumber: " abc ", Quantity: "2"},
		{PartNumber: "", Quantity: "9"},
		{PartNumber: "xyz", Quantity: "nope"},
	})
	assert.Equal(t, []models.CanonicalItem{
		{PartNumber: "ABC", Qty: 2},
		{PartNumber: "XYZ", Qty: 1},
	}, items)
}

func TestParsePaste(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		items := ParsePaste("ABC123, 5\nXYZ999")
		assert.Equal(t, []models.CanonicalItem{
			{PartNumber: "ABC123", Qty: 5},
			{PartNumber: "XYZ999", Qty: 1},
		}, items)
	})

	t.Run("separators and blank lines", func(t *testing.T) {
		items := ParsePaste("  bp-100\t3\r\n\r\n  \nfl-2 ,, 0\noil 2x\n")
		assert.Equal(t, []models.CanonicalItem{
			{PartNumber: "BP-100", Qty: 3},
			{PartNumber: "FL-2", Qty: 1},
			{PartNumber: "OIL", Qty: 2},
		}, items)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		items := ParsePaste("a 1\na 2")
		require.Len(t, items, 2)
		assert.Equal(t, 1, items[0].Qty)
		assert.Equal(t, 2, items[1].Qty)
	})

	t.Run("capped at 100 non-blank lines", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 150; i++ {
			fmt.Fprintf(&b, "P%d %d\n\n", i, i+1)
		}
		items := ParsePaste(b.String())
		require.Len(t, items, MaxBatchSize)
		assert.Equal(t, "P99", items[99].PartNumber)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ParsePaste(" \n\t\n"))
	})
}

func TestParseCSV(t *testing.T) {
	t.Run("aliases and normalization", func(t *testing.T) {
		csvText := "part,quantity\nabc123,5\n xyz ,\n,7\nbp-1,0\n"
		items, stats, err := ParseCSV(strings.NewReader(csvText))
		require.NoError(t, err)
		assert.Equal(t, []models.CanonicalItem{
			{PartNumber: "ABC123", Qty: 5},
			{PartNumber: "XYZ", Qty: 1},
			{PartNumber: "BP-1", Qty: 1},
		}, items)
		assert.Equal(t, CSVStats{Rows: 4, Included: 3, Dropped: 1}, stats)
	})

	t.Run("first alias column in the header wins", func(t *testing.T) {
		csvText := "partNumber,part_number,QTY,qty\nlow,,9,2\n"
		items, stats, err := ParseCSV(strings.NewReader(csvText))
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 1, stats.Dropped)

		items, _, err = ParseCSV(strings.NewReader("PartNumber,Quantity,Qty\nab,4,8\n"))
		require.NoError(t, err)
		assert.Equal(t, []models.CanonicalItem{{PartNumber: "AB", Qty: 8}}, items)
	})

	t.Run("no part column drops every row", func(t *testing.T) {
		items, stats, err := ParseCSV(strings.NewReader("sku,qty\nA,1\nB,2\n"))
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 2, stats.Rows)
		assert.Equal(t, 2, stats.Dropped)
	})

	t.Run("byte order mark and blank lines", func(t *testing.T) {
		csvText := "\uFEFFpart_number,qty\r\n\r\nabc,2\r\n\r\n"
		items, stats, err := ParseCSV(strings.NewReader(csvText))
		require.NoError(t, err)
		assert.Equal(t, []models.CanonicalItem{{PartNumber: "ABC", Qty: 2}}, items)
		assert.Equal(t, 1, stats.Rows)
	})

	t.Run("capped at 100 rows", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("part_number,qty\n")
		for i := 0; i < 130; i++ {
			if i%10 == 0 {
				b.WriteString(",3\n")
				continue
			}
			fmt.Fprintf(&b, "p%d,%d\n", i, i)
		}
		items, stats, err := ParseCSV(strings.NewReader(b.String()))
		require.NoError(t, err)
		assert.Equal(t, MaxBatchSize, stats.Rows)
		assert.Equal(t, stats.Rows, stats.Included+stats.Dropped)
		assert.Equal(t, 10, stats.Dropped)
		assert.Len(t, items, 90)
		assert.True(t, stats.Truncated)
		for _, it := range items {
			assert.NotEmpty(t, it.PartNumber)
			assert.Equal(t, strings.ToUpper(it.PartNumber), it.PartNumber)
			assert.GreaterOrEqual(t, it.Qty, 1)
		}
	})

	t.Run("short rows default the quantity", func(t *testing.T) {
		items, stats, err := ParseCSV(strings.NewReader("part_number,qty,note\nabc\nxyz,3,extra,cells\n"))
		require.NoError(t, err)
		assert.Equal(t, []models.CanonicalItem{
			{PartNumber: "ABC", Qty: 1},
			{PartNumber: "XYZ", Qty: 3},
		}, items)
		assert.Equal(t, 0, stats.Dropped)
	})

	t.Run("empty file", func(t *testing.T) {
		_, _, err := ParseCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestPreviewLines(t *testing.T) {
	lines := PreviewLines("a\r\nb\nc\nd\ne\nf", PreviewSize)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, lines)
	assert.Equal(t, []string{"only"}, PreviewLines("only", PreviewSize))
}
