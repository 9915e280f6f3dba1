package store

import (
	"context"
	"database/sql"
	"time"

	"pfas/domain"
)

// InsertGoldenReference and InsertGoldenHolding persist one imported
// external statement and its holdings, grounded on
// original_source/services/golden_reference/cross_correlator.py's
// GoldenReference/GoldenHolding dataclasses.
func (s *Storage) InsertGoldenReference(ctx context.Context, tx *Tx, g domain.GoldenReference) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO golden_references (id, user_id, source, as_of_date, imported_at)
		VALUES (?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.Source, g.AsOfDate, g.ImportedAt)
	if err != nil {
		return domain.WrapStorageError("inserting golden reference", err)
	}
	return nil
}

func (s *Storage) InsertGoldenHolding(ctx context.Context, tx *Tx, h domain.GoldenHolding) error {
	units, _ := h.Units.Value()
	marketValue, _ := h.MarketValue.Value()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO golden_holdings (id, golden_ref_id, asset_class, isin, folio, symbol, name, units, market_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(golden_ref_id, isin, folio) DO UPDATE SET
			units = excluded.units, market_value = excluded.market_value
	`, h.ID, h.GoldenRefID, h.AssetClass, h.ISIN, h.Folio, h.Symbol, h.Name, units, marketValue)
	if err != nil {
		return domain.WrapStorageError("inserting golden holding", err)
	}
	return nil
}

// LatestGoldenReference returns the most recently imported reference for
// (userID, source), the "truth resolver" read path (spec.md §4.10 step 1).
func (s *Storage) LatestGoldenReference(ctx context.Context, userID, source string) (domain.GoldenReference, bool, error) {
	var g domain.GoldenReference
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, source, as_of_date, imported_at FROM golden_references
		WHERE user_id = ? AND source = ? ORDER BY as_of_date DESC LIMIT 1
	`, userID, source).Scan(&g.ID, &g.UserID, &g.Source, &g.AsOfDate, &g.ImportedAt)
	if err == sql.ErrNoRows {
		return domain.GoldenReference{}, false, nil
	}
	if err != nil {
		return domain.GoldenReference{}, false, domain.WrapStorageError("fetching latest golden reference", err)
	}
	return g, true, nil
}

func (s *Storage) GoldenHoldingsFor(ctx context.Context, goldenRefID string) ([]domain.GoldenHolding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, golden_ref_id, asset_class, isin, folio, symbol, name, units, market_value
		FROM golden_holdings WHERE golden_ref_id = ?
	`, goldenRefID)
	if err != nil {
		return nil, domain.WrapStorageError("querying golden holdings", err)
	}
	defer rows.Close()

	var out []domain.GoldenHolding
	for rows.Next() {
		var h domain.GoldenHolding
		if err := rows.Scan(&h.ID, &h.GoldenRefID, &h.AssetClass, &h.ISIN, &h.Folio, &h.Symbol, &h.Name, &h.Units, &h.MarketValue); err != nil {
			return nil, domain.WrapStorageError("scanning golden holding", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating golden holdings", err)
	}
	return out, nil
}

func (s *Storage) InsertReconciliationEvent(ctx context.Context, tx *Tx, e domain.ReconciliationEvent) error {
	diffUnits, _ := e.DiffUnits.Value()
	diffValue, _ := e.DiffValue.Value()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reconciliation_events (id, user_id, golden_ref_id, asset_class, match_key, match_result, severity, diff_units, diff_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.GoldenRefID, e.AssetClass, e.Key, e.MatchResult, e.Severity, diffUnits, diffValue, e.CreatedAt)
	if err != nil {
		return domain.WrapStorageError("inserting reconciliation event", err)
	}
	return nil
}

func (s *Storage) InsertSuspenseItem(ctx context.Context, tx *Tx, it domain.SuspenseItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO suspense_items (id, user_id, event_id, status, notes, opened_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, it.ID, it.UserID, it.EventID, it.Status, it.Notes, it.OpenedAt, it.ResolvedAt)
	if err != nil {
		return domain.WrapStorageError("inserting suspense item", err)
	}
	return nil
}

// ResolveSuspenseItem transitions a suspense item's lifecycle (spec.md
// §4.10 step 6: OPEN -> IN_PROGRESS -> RESOLVED|WRITTEN_OFF). A zero
// resolvedAt (a non-terminal transition) leaves resolved_at NULL.
func (s *Storage) ResolveSuspenseItem(ctx context.Context, tx *Tx, id string, status domain.SuspenseStatus, notes string, resolvedAt time.Time) error {
	var resolved any
	if !resolvedAt.IsZero() {
		resolved = resolvedAt
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE suspense_items SET status = ?, notes = ?, resolved_at = ? WHERE id = ?
	`, status, notes, resolved, id)
	if err != nil {
		return domain.WrapStorageError("resolving suspense item", err)
	}
	return nil
}

func (s *Storage) OpenSuspenseItems(ctx context.Context, userID string) ([]domain.SuspenseItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, status, notes, opened_at, resolved_at
		FROM suspense_items WHERE user_id = ? AND status IN ('OPEN', 'IN_PROGRESS')
		ORDER BY opened_at ASC
	`, userID)
	if err != nil {
		return nil, domain.WrapStorageError("querying open suspense items", err)
	}
	defer rows.Close()

	var out []domain.SuspenseItem
	for rows.Next() {
		var it domain.SuspenseItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.EventID, &it.Status, &it.Notes, &it.OpenedAt, &it.ResolvedAt); err != nil {
			return nil, domain.WrapStorageError("scanning suspense item", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating suspense items", err)
	}
	return out, nil
}
