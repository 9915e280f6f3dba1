package store

import (
	"context"
	"database/sql"

	"pfas/domain"
	"pfas/money"
)

// InsertLot records a new purchase lot, grounded on
// original_source/services/cost_basis_tracker.py's Lot dataclass and the
// FIFO tracker's INSERT INTO mf_lots statement.
func (s *Storage) InsertLot(ctx context.Context, tx *Tx, l domain.Lot) error {
	unitsAcq, _ := l.UnitsAcquired.Value()
	unitsRem, _ := l.UnitsRemaining.Value()
	costPerUnit, _ := l.CostPerUnit.Value()
	totalCost, _ := l.TotalCost.Value()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO cost_basis_lots
			(id, user_id, asset_type, symbol, acquisition_date, units_acquired, units_remaining, cost_per_unit, total_cost, currency, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.UserID, string(l.AssetType), l.Symbol, l.AcquisitionDate, unitsAcq, unitsRem, costPerUnit, totalCost, l.Currency, l.Reference)
	if err != nil {
		return domain.WrapStorageError("inserting cost basis lot", err)
	}
	return nil
}

// OpenLotsFIFO returns undepleted lots for (userID, assetType, symbol)
// ordered oldest-acquired-first, the order FIFO depletion consumes them in
// (original_source/services/mf/fifo_tracker.py, select_lots_fifo).
func (s *Storage) OpenLotsFIFO(ctx context.Context, tx *Tx, userID string, assetType domain.AssetClass, symbol string) ([]domain.Lot, error) {
	return s.queryLots(ctx, tx, `
		SELECT id, user_id, asset_type, symbol, acquisition_date, units_acquired, units_remaining, cost_per_unit, total_cost, currency, reference
		FROM cost_basis_lots
		WHERE user_id = ? AND asset_type = ? AND symbol = ? AND CAST(units_remaining AS REAL) > 0
		ORDER BY acquisition_date ASC, id ASC
	`, userID, string(assetType), symbol)
}

// AllLots returns every lot (depleted or not) for a symbol, used by
// ValidateLedgerSync to cross-check total units against the ledger.
func (s *Storage) AllLots(ctx context.Context, userID string, assetType domain.AssetClass, symbol string) ([]domain.Lot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, asset_type, symbol, acquisition_date, units_acquired, units_remaining, cost_per_unit, total_cost, currency, reference
		FROM cost_basis_lots
		WHERE user_id = ? AND asset_type = ? AND symbol = ?
		ORDER BY acquisition_date ASC, id ASC
	`, userID, string(assetType), symbol)
	if err != nil {
		return nil, domain.WrapStorageError("listing lots", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

func (s *Storage) queryLots(ctx context.Context, tx *Tx, query string, args ...any) ([]domain.Lot, error) {
	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query, args...)
	} else {
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, domain.WrapStorageError("querying lots", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

func scanLots(rows *sql.Rows) ([]domain.Lot, error) {
	var lots []domain.Lot
	for rows.Next() {
		var l domain.Lot
		if err := rows.Scan(&l.ID, &l.UserID, &l.AssetType, &l.Symbol, &l.AcquisitionDate,
			&l.UnitsAcquired, &l.UnitsRemaining, &l.CostPerUnit, &l.TotalCost, &l.Currency, &l.Reference); err != nil {
			return nil, domain.WrapStorageError("scanning lot", err)
		}
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating lots", err)
	}
	return lots, nil
}

// GetLotByID fetches a single lot row, used by DepleteLots to read the
// current UnitsRemaining before subtracting.
func (s *Storage) GetLotByID(ctx context.Context, tx *Tx, lotID string) (domain.Lot, error) {
	query := `SELECT id, user_id, asset_type, symbol, acquisition_date, units_acquired, units_remaining, cost_per_unit, total_cost, currency, reference
		FROM cost_basis_lots WHERE id = ?`
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, lotID)
	} else {
		row = s.db.QueryRowContext(ctx, query, lotID)
	}
	var l domain.Lot
	err := row.Scan(&l.ID, &l.UserID, &l.AssetType, &l.Symbol, &l.AcquisitionDate,
		&l.UnitsAcquired, &l.UnitsRemaining, &l.CostPerUnit, &l.TotalCost, &l.Currency, &l.Reference)
	if err == sql.ErrNoRows {
		return domain.Lot{}, domain.NewNotFound("lot " + lotID)
	}
	if err != nil {
		return domain.Lot{}, domain.WrapStorageError("fetching lot", err)
	}
	return l, nil
}

// DepleteLot writes the reduced UnitsRemaining back, the only field a lot
// row ever has mutated post-insert (spec.md §3).
func (s *Storage) DepleteLot(ctx context.Context, tx *Tx, lotID string, unitsRemaining money.Units) error {
	val, _ := unitsRemaining.Value()
	_, err := tx.ExecContext(ctx, `UPDATE cost_basis_lots SET units_remaining = ? WHERE id = ?`, val, lotID)
	if err != nil {
		return domain.WrapStorageError("depleting lot", err)
	}
	return nil
}
