package store

import (
	"context"

	"github.com/shopspring/decimal"

	"pfas/domain"
)

// UpsertIncomeSummary writes one (user, fy, income_type, sub_classification,
// sub_grouping) bucket, grounded on
// original_source/services/income_aggregation_service.py's upsert-by-bucket
// behavior.
func (s *Storage) UpsertIncomeSummary(ctx context.Context, tx *Tx, rec domain.IncomeSummary) error {
	gross, _ := rec.Gross.Value()
	deductions, _ := rec.Deductions.Value()
	taxable, _ := rec.Taxable.Value()
	tds, _ := rec.TDS.Value()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_income_summary
			(id, user_id, financial_year, income_type, sub_classification, sub_grouping, gross, deductions, taxable, tds, applicable_rate_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			gross = excluded.gross,
			deductions = excluded.deductions,
			taxable = excluded.taxable,
			tds = excluded.tds,
			applicable_rate_type = excluded.applicable_rate_type
	`, rec.ID, rec.UserID, rec.FY, rec.IncomeType, rec.SubClassification, rec.SubGrouping, gross, deductions, taxable, tds, rec.ApplicableRateType)
	if err != nil {
		return domain.WrapStorageError("upserting income summary", err)
	}
	return nil
}

// IncomeSummaryFor returns every bucket recorded for (userID, fy), the
// Income Aggregator's preferred fast path before falling back to
// source-table aggregation (spec.md §4.8 step 0).
func (s *Storage) IncomeSummaryFor(ctx context.Context, userID, fy string) ([]domain.IncomeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, financial_year, income_type, sub_classification, sub_grouping, gross, deductions, taxable, tds, applicable_rate_type
		FROM user_income_summary WHERE user_id = ? AND financial_year = ?
	`, userID, fy)
	if err != nil {
		return nil, domain.WrapStorageError("querying income summary", err)
	}
	defer rows.Close()

	var out []domain.IncomeSummary
	for rows.Next() {
		var r domain.IncomeSummary
		if err := rows.Scan(&r.ID, &r.UserID, &r.FY, &r.IncomeType, &r.SubClassification, &r.SubGrouping,
			&r.Gross, &r.Deductions, &r.Taxable, &r.TDS, &r.ApplicableRateType); err != nil {
			return nil, domain.WrapStorageError("scanning income summary", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating income summary", err)
	}
	return out, nil
}

// SumAssetTable sums a decimal column of an asset table for userID within
// a date range, the source-table fallback path when no pre-computed
// summary exists (spec.md §4.8 step 0b). dateColumn/amountColumn/table are
// always literal constants at call sites, never user input.
func (s *Storage) SumAssetTable(ctx context.Context, table, dateColumn, amountColumn, userID string, from, to any) (decimal.Decimal, error) {
	query := "SELECT " + amountColumn + " FROM " + table + " WHERE user_id = ? AND " + dateColumn + " BETWEEN ? AND ?"
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return decimal.Zero, domain.WrapStorageError("summing "+table, err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, domain.WrapStorageError("scanning "+table, err)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, domain.WrapStorageError("parsing "+table+"."+amountColumn, err)
		}
		total = total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, domain.WrapStorageError("iterating "+table, err)
	}
	return total, nil
}

// SumAssetTableWhere is SumAssetTable plus one extra literal SQL predicate,
// for the Income Aggregator's source-table fallback (spec.md §4.8) where a
// bucket is distinguished by a text column (e.g. txn_type, category)
// rather than just the date window. extraWhere is always a literal
// constant at call sites, never user input.
func (s *Storage) SumAssetTableWhere(ctx context.Context, table, dateColumn, amountColumn, userID string, from, to any, extraWhere string) (decimal.Decimal, error) {
	query := "SELECT " + amountColumn + " FROM " + table + " WHERE user_id = ? AND " + dateColumn + " BETWEEN ? AND ? AND " + extraWhere
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return decimal.Zero, domain.WrapStorageError("summing "+table, err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, domain.WrapStorageError("scanning "+table, err)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, domain.WrapStorageError("parsing "+table+"."+amountColumn, err)
		}
		total = total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, domain.WrapStorageError("iterating "+table, err)
	}
	return total, nil
}
