package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSheetReaderReadRowsFromOffset(t *testing.T) {
	r := NewCSVSheetReader(strings.NewReader("junk\nheader1,header2\na,b\nc,d\n"))
	require.NoError(t, r.OpenSheet(""))

	rows, err := r.ReadRows(1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"header1", "header2"}, rows[0])
	assert.Equal(t, []string{"c", "d"}, rows[2])
}

func TestCSVSheetReaderOffsetBeyondRowsReturnsNil(t *testing.T) {
	r := NewCSVSheetReader(strings.NewReader("a,b\n"))
	rows, err := r.ReadRows(5)
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestRowsToMapsZipsHeaderAgainstData(t *testing.T) {
	rows := [][]string{{"Date", "Amount"}, {"01/01/2024", "100"}}
	mapped := RowsToMaps(rows)
	require.Len(t, mapped, 1)
	v, ok := mapped[0].GetByAny("date")
	require.True(t, ok)
	assert.Equal(t, "01/01/2024", v)
}
