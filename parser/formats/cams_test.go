package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

const sampleCAMSCSV = `CAMS Consolidated Account Statement
Statement Period: 01-Apr-2024 to 31-Mar-2025
Investor Name: Jane Doe
Folio,Scheme,Date,Amount,Units,Transaction Type
FOLIO001,HDFC Flexi Cap Fund,05/04/2024,10000.00,123.456,PURCHASE
,Missing Folio Fund,06/04/2024,5000.00,50.000,PURCHASE
`

func TestCAMSParserUsesFixedHeaderOffset(t *testing.T) {
	p := &CAMSParser{Reader: parser.NewCSVSheetReader(strings.NewReader(sampleCAMSCSV))}
	assert.Equal(t, "cams", p.Name())

	result, err := p.Parse(parser.Source{Name: "cams.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Warnings, 1)

	row := result.Transactions[0]
	folio, _ := row.GetByAny("folio")
	assert.Equal(t, "FOLIO001", folio)
	units, _ := row.GetByAny("units")
	assert.Equal(t, "123.456", units)
}
