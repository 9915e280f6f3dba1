package costbasis

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/money"
	"pfas/store"
)

// calculateAverageCost weights all open lots equally by units, grounded on
// original_source/services/cost_basis_tracker.py's _calculate_average_cost.
// Grandfathering only ever applies to FIFO-tracked equity MF lots in
// original_source (the grandfathering parser always uses FIFO matching),
// so average-cost sales never carry an FMV floor.
func (t *Tracker) calculateAverageCost(ctx context.Context, tx *store.Tx, userID string, assetType domain.AssetClass, symbol string, unitsToSell money.Units, sellDate time.Time, saleProceeds *money.Money) (Result, error) {
	lots, err := t.db.OpenLotsFIFO(ctx, tx, userID, assetType, symbol)
	if err != nil {
		return Result{}, err
	}

	totalUnits := decimal.Zero
	totalCost := decimal.Zero
	for _, l := range lots {
		totalUnits = totalUnits.Add(l.UnitsRemaining.Decimal())
		totalCost = totalCost.Add(l.UnitsRemaining.Decimal().Mul(l.CostPerUnit.Decimal()))
	}

	if !money.UnitsFromDecimal(totalUnits).GreaterThanMinusTolerance(unitsToSell) {
		return Result{}, domain.NewInsufficientUnits("requested " + unitsToSell.String() + " but only " + money.UnitsFromDecimal(totalUnits).String() + " available for " + symbol)
	}

	avgCostPerUnit := decimal.Zero
	if totalUnits.IsPositive() {
		avgCostPerUnit = totalCost.DivRound(totalUnits, 4)
	}
	costBasis := money.MoneyFromDecimal(unitsToSell.Decimal().Mul(avgCostPerUnit))

	weightedDays := decimal.Zero
	for _, l := range lots {
		if l.UnitsRemaining.IsZero() || l.UnitsRemaining.IsNegative() {
			continue
		}
		days := decimal.NewFromInt(int64(money.DaysBetween(l.AcquisitionDate, sellDate)))
		weight := l.UnitsRemaining.Decimal().DivRound(totalUnits, 8)
		weightedDays = weightedDays.Add(days.Mul(weight))
	}
	holdingDays := int(weightedDays.IntPart())
	threshold := LTCGThreshold(assetType)
	isLongTerm := holdingDays > threshold

	result := Result{
		UnitsSold:         unitsToSell,
		TotalCostBasis:    costBasis,
		CostPerUnit:       money.MoneyFromDecimal(avgCostPerUnit),
		MatchedLots:       averageMatchSummary(lots, totalUnits),
		IsLongTerm:        isLongTerm,
		HoldingPeriodDays: holdingDays,
	}
	if saleProceeds != nil {
		result.RealizedGain = saleProceeds.Sub(costBasis)
	}
	return result, nil
}

// averageMatchSummary lists every open lot with its full UnitsRemaining;
// DepleteLots works out each lot's proportional share from these, so every
// open lot is reduced rather than only the oldest ones.
func averageMatchSummary(lots []domain.Lot, totalUnits decimal.Decimal) []LotMatch {
	matches := make([]LotMatch, 0, len(lots))
	for _, l := range lots {
		if l.UnitsRemaining.IsZero() || l.UnitsRemaining.IsNegative() || !totalUnits.IsPositive() {
			continue
		}
		matches = append(matches, LotMatch{
			LotID:       l.ID,
			UnitsUsed:   l.UnitsRemaining, // proportion computed against totalUnits in DepleteLots
			CostPerUnit: l.CostPerUnit,
		})
	}
	return matches
}
