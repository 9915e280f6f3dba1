package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

const sampleICICICSV = `Symbol,Sale Date,Quantity,Purchase Date,Sale Price,Purchase Price
RELIANCE,15/06/2024,10,10/01/2023,2950.00,2200.00
,16/06/2024,5,11/01/2023,1500.00,1200.00
`

func TestICICIParserDetectsHeaderAndSkipsIncomplete(t *testing.T) {
	p := &ICICIParser{Reader: parser.NewCSVSheetReader(strings.NewReader(sampleICICICSV))}
	assert.Equal(t, "icici", p.Name())

	result, err := p.Parse(parser.Source{Name: "icici.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Warnings, 1)

	row := result.Transactions[0]
	symbol, _ := row.GetByAny("symbol")
	assert.Equal(t, "RELIANCE", symbol)
	quantity, _ := row.GetByAny("quantity")
	assert.Equal(t, "10", quantity)
}
