package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

const sampleBankCSV = `Date,Description,Debit,Credit,Balance
01/08/2024,SALARY CREDIT AUG,,85000.00,185000.00
03/08/2024,NEFT SIP ZERODHA,10000.00,,175000.00
,missing date row,,,
`

func TestBankParserParsesRowsAndSkipsIncomplete(t *testing.T) {
	p := &BankParser{Reader: parser.NewCSVSheetReader(strings.NewReader(sampleBankCSV)), Bank: "HDFC"}
	assert.Equal(t, "bank", p.Name())

	result, err := p.Parse(parser.Source{Name: "statement.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 2)
	require.Len(t, result.Warnings, 1)

	first := result.Transactions[0]
	date, ok := first.GetByAny("date")
	require.True(t, ok)
	assert.Equal(t, "01/08/2024", date)
	credit, _ := first.GetByAny("credit")
	assert.Equal(t, "85000.00", credit)
	key, ok := first.GetByAny("natural_key")
	require.True(t, ok)
	assert.NotEmpty(t, key)
}

func TestBankParserNaturalKeyStableForSameInputs(t *testing.T) {
	p := &BankParser{Bank: "HDFC"}
	k1 := p.naturalKey("user-1", "01/08/2024", "SALARY CREDIT AUG", "85000.00")
	k2 := p.naturalKey("user-1", "01/08/2024", "SALARY CREDIT AUG", "85000.00")
	assert.Equal(t, k1, k2)

	k3 := p.naturalKey("user-1", "01/08/2024", "SALARY CREDIT AUG", "85000.01")
	assert.NotEqual(t, k1, k3)
}
