package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
)

// CapitalGainsEvent is one realized sale's STCG/LTCG classification, the
// row capital_gains_events stores (0005_capital_gains.up.sql).
type CapitalGainsEvent struct {
	ID                string
	UserID            string
	JournalID         string
	FY                string
	AssetClass        domain.AssetClass
	SubClassification domain.SubClassification
	Symbol            string
	SaleDate          time.Time
	GrossGain         decimal.Decimal
	ExemptionAmount   decimal.Decimal
	IsGrandfathered   bool
	Source            string
}

// InsertCapitalGainsEvent records one realized sale's gain classification,
// written in the same transaction as the sale's journal posting and lot
// depletion (spec.md §4.3) so the Income Aggregator never has to re-derive
// STCG/LTCG from the ledger.
func (s *Storage) InsertCapitalGainsEvent(ctx context.Context, tx *Tx, e CapitalGainsEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO capital_gains_events
			(id, user_id, journal_id, financial_year, asset_class, sub_classification, symbol, sale_date, gross_gain, exemption_amount, is_grandfathered, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.JournalID, e.FY, e.AssetClass, e.SubClassification, e.Symbol, e.SaleDate,
		e.GrossGain.String(), e.ExemptionAmount.String(), e.IsGrandfathered, e.Source)
	if err != nil {
		return domain.WrapStorageError("inserting capital gains event", err)
	}
	return nil
}

// CapitalGainsSummary is one (asset_class, sub_classification) bucket's
// totals for a FY, the shape the Income Aggregator's fallback path groups
// capital_gains_events rows into.
type CapitalGainsSummary struct {
	AssetClass        domain.AssetClass
	SubClassification domain.SubClassification
	GrossGain         decimal.Decimal
	ExemptionAmount   decimal.Decimal
}

// CapitalGainsSummaryFor aggregates capital_gains_events for (userID, fy)
// into per-(asset_class, sub_classification) totals. Summation happens in
// Go over decimal.Decimal, matching AccountBalanceTotals's rationale:
// SQLite has no fixed-point aggregate and CAST(... AS REAL) would
// reintroduce binary floating-point error into gain totals.
func (s *Storage) CapitalGainsSummaryFor(ctx context.Context, userID, fy string) ([]CapitalGainsSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_class, sub_classification, gross_gain, exemption_amount
		FROM capital_gains_events
		WHERE user_id = ? AND financial_year = ?
	`, userID, fy)
	if err != nil {
		return nil, domain.WrapStorageError("querying capital gains events", err)
	}
	defer rows.Close()

	totals := map[[2]string]*CapitalGainsSummary{}
	var order [][2]string
	for rows.Next() {
		var assetClass domain.AssetClass
		var subClass domain.SubClassification
		var grossStr, exemptionStr string
		if err := rows.Scan(&assetClass, &subClass, &grossStr, &exemptionStr); err != nil {
			return nil, domain.WrapStorageError("scanning capital gains event", err)
		}
		gross, err := decimal.NewFromString(grossStr)
		if err != nil {
			return nil, domain.WrapStorageError("parsing capital gains gross_gain", err)
		}
		exemption, err := decimal.NewFromString(exemptionStr)
		if err != nil {
			return nil, domain.WrapStorageError("parsing capital gains exemption_amount", err)
		}
		key := [2]string{string(assetClass), string(subClass)}
		bucket, ok := totals[key]
		if !ok {
			bucket = &CapitalGainsSummary{AssetClass: assetClass, SubClassification: subClass}
			totals[key] = bucket
			order = append(order, key)
		}
		bucket.GrossGain = bucket.GrossGain.Add(gross)
		bucket.ExemptionAmount = bucket.ExemptionAmount.Add(exemption)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating capital gains events", err)
	}

	out := make([]CapitalGainsSummary, 0, len(order))
	for _, key := range order {
		out = append(out, *totals[key])
	}
	return out, nil
}
