package costbasis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pfas/domain"
	"pfas/money"
)

func TestLTCGThresholdByAssetClass(t *testing.T) {
	cases := []struct {
		asset domain.AssetClass
		want  int
	}{
		{domain.AssetMFEquity, EquityLTCGDays},
		{domain.AssetStock, EquityLTCGDays},
		{domain.AssetSGB, EquityLTCGDays},
		{domain.AssetMFDebt, DebtLTCGDays},
		{domain.AssetForeignStock, ForeignLTCGDays},
		{domain.AssetRSU, ForeignLTCGDays},
		{domain.AssetESPP, ForeignLTCGDays},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LTCGThreshold(tc.asset))
	}
}

func TestMinDecimal(t *testing.T) {
	a := decimal.NewFromInt(10)
	b := decimal.NewFromInt(20)
	assert.True(t, minDecimal(a, b).Equal(a))
	assert.True(t, minDecimal(b, a).Equal(a))
}

func TestAverageMatchSummarySkipsDepletedLots(t *testing.T) {
	units100, _ := money.NewUnits("100")
	zeroUnits := money.ZeroUnits
	lots := []domain.Lot{
		{ID: "lot-1", UnitsRemaining: units100, CostPerUnit: money.MoneyFromInt(10)},
		{ID: "lot-2", UnitsRemaining: zeroUnits, CostPerUnit: money.MoneyFromInt(12)},
	}
	matches := averageMatchSummary(lots, decimal.NewFromInt(100))
	assert.Len(t, matches, 1)
	assert.Equal(t, "lot-1", matches[0].LotID)
}

func TestAverageMatchSummaryEmptyWhenTotalUnitsNotPositive(t *testing.T) {
	units100, _ := money.NewUnits("100")
	lots := []domain.Lot{{ID: "lot-1", UnitsRemaining: units100, CostPerUnit: money.MoneyFromInt(10)}}
	matches := averageMatchSummary(lots, decimal.Zero)
	assert.Empty(t, matches)
}
