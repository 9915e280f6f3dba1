package golden

import (
	"context"

	"pfas/domain"
	"pfas/store"
)

// LatestReference returns the most recently imported GoldenReference for
// (userID, source), letting a newer NSDL CAS supersede an older one for
// reconciliation purposes, grounded on
// original_source/services/statement_tracker.py's "current statement per
// source" lookup.
func LatestReference(ctx context.Context, db *store.Storage, userID, source string) (domain.GoldenReference, bool, error) {
	return db.LatestGoldenReference(ctx, userID, source)
}
