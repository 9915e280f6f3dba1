package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

const sampleKarvyCSV = `KFintech Statement
Generated: 01-Apr-2025
Investor: Jane Doe
PAN: ABCDE1234F
Folio,Scheme Name,Date,Amount,Units,Trxn Desc
FOLIO002,SBI Bluechip Fund,10/04/2024,20000.00,200.123,PURCHASE
,Missing Folio Fund,11/04/2024,3000.00,30.000,PURCHASE
`

func TestKarvyParserUsesFixedHeaderOffset(t *testing.T) {
	p := &KarvyParser{Reader: parser.NewCSVSheetReader(strings.NewReader(sampleKarvyCSV))}
	assert.Equal(t, "karvy", p.Name())

	result, err := p.Parse(parser.Source{Name: "karvy.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Warnings, 1)

	row := result.Transactions[0]
	scheme, _ := row.GetByAny("scheme")
	assert.Equal(t, "SBI Bluechip Fund", scheme)
}
