package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pfas/money"
)

func TestEMIZeroMonthsReturnsZero(t *testing.T) {
	emi := EMI(money.MoneyFromInt(100000), decimal.NewFromFloat(0.01), 0)
	assert.True(t, emi.IsZero())
}

func TestEMIZeroRateIsStraightDivision(t *testing.T) {
	emi := EMI(money.MoneyFromInt(120000), decimal.Zero, 12)
	assert.Equal(t, "10000.00", emi.String())
}

func TestAmortizationScheduleStopsWhenPaidOff(t *testing.T) {
	principal := money.MoneyFromInt(100000)
	schedule := AmortizationSchedule(principal, decimal.NewFromFloat(0.01), 120)
	a := assert.New(t)
	a.NotEmpty(schedule)
	last := schedule[len(schedule)-1]
	// outstanding should be driven to (near) zero by the final row.
	a.True(last.ClosingOutstanding.Decimal().Abs().LessThan(decimal.NewFromFloat(1.0)))

	// each row's principal component must reduce opening to closing outstanding.
	for _, row := range schedule {
		reconstructed := row.OpeningOutstanding.Decimal().Sub(row.Principal.Decimal())
		a.True(reconstructed.Sub(row.ClosingOutstanding.Decimal()).Abs().LessThan(decimal.NewFromFloat(0.01)))
	}
}

func TestApplyPrepaymentFloorsAtZero(t *testing.T) {
	outstanding := money.MoneyFromInt(1000)
	result := ApplyPrepayment(outstanding, money.MoneyFromInt(1500))
	assert.True(t, result.IsZero())

	partial := ApplyPrepayment(outstanding, money.MoneyFromInt(400))
	assert.Equal(t, "600.00", partial.String())
}

func TestApplyDisbursementIncreasesOutstanding(t *testing.T) {
	outstanding := money.MoneyFromInt(1000)
	result := ApplyDisbursement(outstanding, money.MoneyFromInt(250))
	assert.Equal(t, "1250.00", result.String())
}
