package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowGetByAnyIsCaseAndSeparatorInsensitive(t *testing.T) {
	row := NewRow(map[string]string{"Folio No": "FOLIO1", "Scheme Name": "HDFC Flexi Cap"})
	v, ok := row.GetByAny("folio no")
	assert.True(t, ok)
	assert.Equal(t, "FOLIO1", v)

	v, ok = row.GetByAny("folioNo")
	assert.True(t, ok)
	assert.Equal(t, "FOLIO1", v)

	_, ok = row.GetByAny("missing column")
	assert.False(t, ok)
}

func TestRowGetByAnyReturnsFirstNonEmptyCandidate(t *testing.T) {
	row := NewRow(map[string]string{"credit": "", "debit": "500.00"})
	v, ok := row.GetByAny("credit", "debit")
	assert.True(t, ok)
	assert.Equal(t, "500.00", v)
}

type stubFormat struct{ name string }

func (s stubFormat) Name() string                     { return s.name }
func (s stubFormat) Parse(Source) (ParseResult, error) { return ParseResult{}, nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubFormat{name: "bank"})
	f, ok := reg.Get("bank")
	assert.True(t, ok)
	assert.Equal(t, "bank", f.Name())

	_, ok = reg.Get("unknown")
	assert.False(t, ok)
}
