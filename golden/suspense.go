package golden

import (
	"context"
	"time"

	"pfas/domain"
	"pfas/store"
)

// validTransitions enumerates the legal suspense lifecycle moves spec.md
// §4.10 names: OPEN -> IN_PROGRESS -> RESOLVED | WRITTEN_OFF.
var validTransitions = map[domain.SuspenseStatus]map[domain.SuspenseStatus]bool{
	domain.SuspenseOpen:       {domain.SuspenseInProgress: true, domain.SuspenseResolved: true, domain.SuspenseWrittenOff: true},
	domain.SuspenseInProgress: {domain.SuspenseResolved: true, domain.SuspenseWrittenOff: true},
}

// SuspenseManager drives the OPEN -> IN_PROGRESS -> RESOLVED|WRITTEN_OFF
// lifecycle, updating both the suspense row and leaving its source event
// untouched (the event is an immutable audit record; only the suspense
// item's own status/notes/resolved_at change).
type SuspenseManager struct {
	db *store.Storage
}

func NewSuspenseManager(db *store.Storage) *SuspenseManager {
	return &SuspenseManager{db: db}
}

// Transition moves item id from its current status to next, rejecting
// illegal moves (e.g. RESOLVED back to OPEN).
func (m *SuspenseManager) Transition(ctx context.Context, userID, id string, current, next domain.SuspenseStatus, notes string) error {
	if !validTransitions[current][next] {
		return domain.NewInvalid("illegal suspense transition " + string(current) + " -> " + string(next))
	}
	var resolvedAt time.Time
	if next == domain.SuspenseResolved || next == domain.SuspenseWrittenOff {
		resolvedAt = time.Now().UTC()
	}
	return m.db.WithTx(ctx, func(tx *store.Tx) error {
		return m.db.ResolveSuspenseItem(ctx, tx, id, next, notes, resolvedAt)
	})
}

// Open returns every OPEN or IN_PROGRESS suspense item for userID, the
// queue an operator works from.
func (m *SuspenseManager) Open(ctx context.Context, userID string) ([]domain.SuspenseItem, error) {
	return m.db.OpenSuspenseItems(ctx, userID)
}
