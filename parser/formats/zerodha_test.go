package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

func sampleZerodhaCSV() string {
	var b strings.Builder
	for i := 0; i < 14; i++ {
		b.WriteString("Zerodha tradebook boilerplate line\n")
	}
	b.WriteString("Symbol,Trade Date,Trade Type,Quantity,Price\n")
	b.WriteString("INFY,20/05/2024,buy,15,1450.50\n")
	b.WriteString(",21/05/2024,sell,,1500.00\n")
	return b.String()
}

func TestZerodhaParserUsesFixedHeaderOffset(t *testing.T) {
	p := &ZerodhaParser{Reader: parser.NewCSVSheetReader(strings.NewReader(sampleZerodhaCSV()))}
	assert.Equal(t, "zerodha", p.Name())

	result, err := p.Parse(parser.Source{Name: "zerodha.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Warnings, 1)

	row := result.Transactions[0]
	symbol, _ := row.GetByAny("symbol")
	assert.Equal(t, "INFY", symbol)
	tradeType, _ := row.GetByAny("trade type")
	assert.Equal(t, "buy", tradeType)
}
