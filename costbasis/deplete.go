package costbasis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/money"
	"pfas/store"
)

// DepleteLots writes the units consumed by result back onto their lots.
// Must be called in the same transaction as the sale's journal posting so
// a failed posting never leaves lots partially depleted (spec.md §4.3).
// Grounded on original_source/services/cost_basis_tracker.py.deplete_lots.
func (t *Tracker) DepleteLots(ctx context.Context, tx *store.Tx, userID string, assetType domain.AssetClass, symbol string, result Result) error {
	switch t.method {
	case domain.CostAverage:
		return t.depleteProportional(ctx, tx, userID, assetType, symbol, result)
	default:
		return t.depleteFIFO(ctx, tx, userID, result)
	}
}

func (t *Tracker) depleteFIFO(ctx context.Context, tx *store.Tx, userID string, result Result) error {
	for _, m := range result.MatchedLots {
		if err := t.reduceLot(ctx, tx, userID, m.LotID, m.UnitsUsed); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) depleteProportional(ctx context.Context, tx *store.Tx, userID string, assetType domain.AssetClass, symbol string, result Result) error {
	lots, err := t.db.OpenLotsFIFO(ctx, tx, userID, assetType, symbol)
	if err != nil {
		return err
	}
	totalUnits := decimal.Zero
	for _, l := range lots {
		totalUnits = totalUnits.Add(l.UnitsRemaining.Decimal())
	}
	if !totalUnits.IsPositive() {
		return nil
	}
	for _, l := range lots {
		proportion := l.UnitsRemaining.Decimal().DivRound(totalUnits, 8)
		unitsToDeplete := money.UnitsFromDecimal(result.UnitsSold.Decimal().Mul(proportion))
		if err := t.reduceLot(ctx, tx, userID, l.ID, unitsToDeplete); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) reduceLot(ctx context.Context, tx *store.Tx, userID, lotID string, unitsUsed money.Units) error {
	current, err := t.db.GetLotByID(ctx, tx, lotID)
	if err != nil {
		return err
	}
	oldRemaining := current.UnitsRemaining
	newRemaining := money.UnitsFromDecimal(current.UnitsRemaining.Decimal().Sub(unitsUsed.Decimal()))
	if err := t.db.DepleteLot(ctx, tx, lotID, newRemaining); err != nil {
		return err
	}
	return t.db.InsertAuditLog(ctx, tx, domain.AuditLog{
		ID: uuid.New().String(), UserID: userID, TableName: "cost_basis_lots", RecordID: lotID,
		Action:    "UPDATE",
		OldValues: lotDepletionAuditDetail(unitsUsed.String(), oldRemaining.String(), oldRemaining.String()),
		NewValues: lotDepletionAuditDetail(unitsUsed.String(), oldRemaining.String(), newRemaining.String()),
		Source:    "costbasis",
		At:        time.Now().UTC(),
	})
}
