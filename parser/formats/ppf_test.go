package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

const samplePPFCSV = `Account Number,Date,Amount,Transaction Type
PPF12345,05/04/2024,150000.00,DEPOSIT
PPF12345,31/03/2025,12075.00,INTEREST CREDIT
,05/05/2024,5000.00,DEPOSIT
`

func TestPPFParserParsesRowsAndSkipsMissingAccount(t *testing.T) {
	p := &PPFParser{Reader: parser.NewCSVSheetReader(strings.NewReader(samplePPFCSV))}
	assert.Equal(t, "ppf", p.Name())

	result, err := p.Parse(parser.Source{Name: "ppf.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 2)
	require.Len(t, result.Warnings, 1)

	first := result.Transactions[0]
	amount, ok := first.GetByAny("amount")
	require.True(t, ok)
	assert.Equal(t, "150000.00", amount)
	key, ok := first.GetByAny("natural_key")
	require.True(t, ok)
	assert.Equal(t, "PPF12345|05/04/2024|150000.00|DEPOSIT", key)
}
