package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/parser"
)

const sampleNSDLCASCSV = `ISIN,Folio Number,Symbol,Units,Market Value
INE123A01011,,RELIANCE,100.000,295000.00
,,UNKNOWN,10.000,1000.00
`

func TestNSDLCASParserBuildsHoldingsAndNaturalKey(t *testing.T) {
	p := &NSDLCASParser{Reader: parser.NewCSVSheetReader(strings.NewReader(sampleNSDLCASCSV)), GoldenRefID: "GREF-1"}
	assert.Equal(t, "nsdlcas", p.Name())

	result, err := p.Parse(parser.Source{Name: "nsdl.csv"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Holdings, 1)
	require.Len(t, result.Warnings, 1)

	holding := result.Holdings[0]
	key, ok := holding.GetByAny("natural_key")
	require.True(t, ok)
	assert.Equal(t, "GREF-1|INE123A01011|", key)
}
