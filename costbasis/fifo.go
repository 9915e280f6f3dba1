package costbasis

import (
	"context"
	"time"

	"pfas/domain"
	"pfas/money"
	"pfas/store"
)

// calculateFIFOCost matches the oldest lots first, grounded on
// original_source/services/cost_basis_tracker.py's _calculate_fifo_cost,
// with grandfathering folded in per
// original_source/parsers/mf/fifo_tracker.py._calculate_coa.
func (t *Tracker) calculateFIFOCost(ctx context.Context, tx *store.Tx, userID string, assetType domain.AssetClass, symbol string, unitsToSell money.Units, sellDate time.Time, saleProceeds *money.Money, fmv31Jan2018 *money.Money) (Result, error) {
	lots, err := t.db.OpenLotsFIFO(ctx, tx, userID, assetType, symbol)
	if err != nil {
		return Result{}, err
	}

	totalAvailable := money.ZeroUnits
	for _, l := range lots {
		totalAvailable = totalAvailable.Add(l.UnitsRemaining)
	}
	if !totalAvailable.GreaterThanMinusTolerance(unitsToSell) {
		return Result{}, domain.NewInsufficientUnits("requested " + unitsToSell.String() + " but only " + totalAvailable.String() + " available for " + symbol)
	}

	var matched []LotMatch
	remaining := unitsToSell
	totalCost := money.ZeroMoney
	var earliestDate *time.Time

	for _, l := range lots {
		if remaining.IsZero() || remaining.IsNegative() {
			break
		}
		if l.UnitsRemaining.IsZero() || l.UnitsRemaining.IsNegative() {
			continue
		}
		unitsFromLot := money.UnitsFromDecimal(minDecimal(remaining.Decimal(), l.UnitsRemaining.Decimal()))
		costFromLot := money.MoneyFromDecimal(unitsFromLot.Decimal().Mul(l.CostPerUnit.Decimal()))

		matched = append(matched, LotMatch{
			LotID:           l.ID,
			AcquisitionDate: l.AcquisitionDate,
			UnitsUsed:       unitsFromLot,
			CostPerUnit:     l.CostPerUnit,
			CostTotal:       costFromLot,
			HoldingDays:     money.DaysBetween(l.AcquisitionDate, sellDate),
		})

		totalCost = totalCost.Add(costFromLot)
		remaining = remaining.Sub(unitsFromLot)

		if earliestDate == nil || l.AcquisitionDate.Before(*earliestDate) {
			d := l.AcquisitionDate
			earliestDate = &d
		}
	}

	holdingDays := 0
	if earliestDate != nil {
		holdingDays = money.DaysBetween(*earliestDate, sellDate)
	}
	threshold := LTCGThreshold(assetType)
	isLongTerm := holdingDays > threshold

	costOfAcquisition := totalCost
	isGrandfathered := false
	var fmvUsed money.Money

	if assetType == domain.AssetMFEquity && isLongTerm && earliestDate != nil && !earliestDate.After(GrandfatheringDate) {
		saleValue := totalCost
		if saleProceeds != nil {
			saleValue = *saleProceeds
		}
		switch {
		case sellDate.Before(LTCGRegimeEffectiveDate):
			// Sold before the 112A regime took effect: no tax at all.
			costOfAcquisition = saleValue
			isGrandfathered = true
		case fmv31Jan2018 != nil:
			fmvValue := money.MoneyFromDecimal(fmv31Jan2018.Decimal().Mul(unitsToSell.Decimal()))
			// COA = max(purchase_value, min(FMV, sale_value))
			costOfAcquisition = money.MaxMoney(totalCost, money.MinMoney(fmvValue, saleValue))
			isGrandfathered = true
			fmvUsed = fmvValue
		default:
			t.log.Warn().Str("symbol", symbol).Msg("fmv as of 31-Jan-2018 unknown, falling back to purchase cost")
		}
	}

	costPerUnit := money.ZeroMoney
	if !unitsToSell.IsZero() {
		costPerUnit = money.MoneyFromDecimal(costOfAcquisition.Decimal().DivRound(unitsToSell.Decimal(), 4))
	}

	result := Result{
		UnitsSold:         unitsToSell,
		TotalCostBasis:    costOfAcquisition,
		CostPerUnit:       costPerUnit,
		MatchedLots:       matched,
		IsLongTerm:        isLongTerm,
		HoldingPeriodDays: holdingDays,
		IsGrandfathered:   isGrandfathered,
		FMVUsed:           fmvUsed,
	}
	if saleProceeds != nil {
		result.RealizedGain = saleProceeds.Sub(costOfAcquisition)
	}
	return result, nil
}
