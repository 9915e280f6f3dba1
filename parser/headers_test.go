package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectHeaderRowPicksBestScoringRow(t *testing.T) {
	rows := [][]string{
		{"Statement for account 123"},
		{"Date", "Description", "Debit", "Credit", "Balance"},
		{"01/01/2024", "Opening balance", "", "", "1000.00"},
	}
	assert.Equal(t, 1, DetectHeaderRow(rows, []string{"date", "description", "debit", "credit", "balance"}, 20))
}

func TestDetectHeaderRowRespectsMaxRows(t *testing.T) {
	rows := [][]string{
		{"junk"},
		{"Date", "Description"},
	}
	// maxRows=1 never looks past row 0, so it falls back to row 0.
	assert.Equal(t, 0, DetectHeaderRow(rows, []string{"date", "description"}, 1))
}

func TestClassifyBySign(t *testing.T) {
	assert.Equal(t, "BUY", ClassifyBySign(10))
	assert.Equal(t, "SELL", ClassifyBySign(-10))
	assert.Equal(t, "MISC", ClassifyBySign(0))
}

func TestClassifyByKeyword(t *testing.T) {
	keywords := map[string]string{"dividend": "DIVIDEND", "stt": "TAX"}
	assert.Equal(t, "DIVIDEND", ClassifyByKeyword("Dividend payout", 0, keywords))
	assert.Equal(t, "TAX", ClassifyByKeyword("STT charges", 0, keywords))
	assert.Equal(t, "BUY", ClassifyByKeyword("regular purchase", 5, keywords))
}
