package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestXIRRSingleRoundTrip(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	flows := []CashFlowPoint{
		{Date: start, Amount: -100000},
		{Date: end, Amount: 110000},
	}
	rate, ok := XIRR(flows)
	assert.True(t, ok)
	assert.InDelta(t, 0.10, rate, 0.001)
}

func TestXIRRInsufficientHistory(t *testing.T) {
	_, ok := XIRR(nil)
	assert.False(t, ok)

	_, ok = XIRR([]CashFlowPoint{{Date: time.Now().UTC(), Amount: -100}})
	assert.False(t, ok)
}

func TestXIRRLossMakingInvestment(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	flows := []CashFlowPoint{
		{Date: start, Amount: -100000},
		{Date: end, Amount: 90000},
	}
	rate, ok := XIRR(flows)
	assert.True(t, ok)
	assert.InDelta(t, -0.10, rate, 0.001)
}
