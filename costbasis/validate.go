package costbasis

import (
	"context"

	"pfas/domain"
	"pfas/money"
)

// ValidateLedgerSync checks that the sum of UnitsRemaining across all lots
// for (userID, assetType, symbol) matches expectedUnits within
// money.UnitTolerance, the consistency check original_source's
// cost_basis_tracker.py documents as its design goal ("Ensures ledger
// entries stay in sync with holdings tables") but never implements as a
// standalone function; spec.md §8 calls this out as a required invariant
// check, so it is supplemented here.
func (t *Tracker) ValidateLedgerSync(ctx context.Context, userID string, assetType domain.AssetClass, symbol string, expectedUnits money.Units) error {
	lots, err := t.db.AllLots(ctx, userID, assetType, symbol)
	if err != nil {
		return err
	}
	total := money.ZeroUnits
	for _, l := range lots {
		total = total.Add(l.UnitsRemaining)
	}
	if !total.Equal(expectedUnits) {
		return domain.NewAccountingBalance("lot units " + total.String() + " do not match expected " + expectedUnits.String() + " for " + symbol)
	}
	return nil
}
