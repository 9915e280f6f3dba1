package store

import (
	"context"
	"database/sql"

	"pfas/domain"
)

// InsertAdvanceTaxComputation stores a new computation and flips is_latest,
// grounded on original_source/services/advance_tax_calculator.py's
// "mark previous computations not latest, insert new, commit" sequence
// (spec.md §3 invariant 5: exactly one row per (user, fy) has is_latest).
func (s *Storage) InsertAdvanceTaxComputation(ctx context.Context, tx *Tx, rec domain.AdvanceTaxComputation) error {
	if rec.IsLatest {
		if _, err := tx.ExecContext(ctx, `
			UPDATE advance_tax_computation SET is_latest = 0 WHERE user_id = ? AND financial_year = ?
		`, rec.UserID, rec.FY); err != nil {
			return domain.WrapStorageError("unmarking previous advance tax computations", err)
		}
	}

	grossTotal, _ := rec.GrossTotalIncome.Value()
	totalDeductions, _ := rec.TotalDeductions.Value()
	taxableIncome, _ := rec.TaxableIncome.Value()
	taxOnSlab, _ := rec.TaxOnSlabIncome.Value()
	taxOnSTCG, _ := rec.TaxOnSTCGEquity.Value()
	taxOnLTCG, _ := rec.TaxOnLTCGEquity.Value()
	rebate, _ := rec.RebateAmount.Value()
	surchargeAmt, _ := rec.SurchargeAmount.Value()
	cessAmt, _ := rec.CessAmount.Value()
	totalLiability, _ := rec.TotalTaxLiability.Value()
	tds, _ := rec.TDSDeducted.Value()
	advancePaid, _ := rec.AdvanceTaxPaid.Value()
	balance, _ := rec.BalancePayable.Value()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO advance_tax_computation
			(id, user_id, financial_year, regime, computed_at, is_latest,
			 gross_total_income, total_deductions, taxable_income,
			 tax_on_slab_income, tax_on_stcg_equity, tax_on_ltcg_equity,
			 rebate_amount, surcharge_rate, surcharge_amount, cess_rate, cess_amount,
			 total_tax_liability, tds_deducted, advance_tax_paid, balance_payable, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.FY, rec.Regime, rec.ComputedAt, rec.IsLatest,
		grossTotal, totalDeductions, taxableIncome,
		taxOnSlab, taxOnSTCG, taxOnLTCG,
		rebate, rec.SurchargeRate.String(), surchargeAmt, rec.CessRate.String(), cessAmt,
		totalLiability, tds, advancePaid, balance, rec.DetailJSON)
	if err != nil {
		return domain.WrapStorageError("inserting advance tax computation", err)
	}
	return nil
}

func (s *Storage) LatestAdvanceTaxComputation(ctx context.Context, userID, fy string) (domain.AdvanceTaxComputation, bool, error) {
	var r domain.AdvanceTaxComputation
	var surchargeRate, cessRate string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, financial_year, regime, computed_at, is_latest,
			gross_total_income, total_deductions, taxable_income,
			tax_on_slab_income, tax_on_stcg_equity, tax_on_ltcg_equity,
			rebate_amount, surcharge_rate, surcharge_amount, cess_rate, cess_amount,
			total_tax_liability, tds_deducted, advance_tax_paid, balance_payable, detail_json
		FROM advance_tax_computation WHERE user_id = ? AND financial_year = ? AND is_latest = 1
	`, userID, fy).Scan(&r.ID, &r.UserID, &r.FY, &r.Regime, &r.ComputedAt, &r.IsLatest,
		&r.GrossTotalIncome, &r.TotalDeductions, &r.TaxableIncome,
		&r.TaxOnSlabIncome, &r.TaxOnSTCGEquity, &r.TaxOnLTCGEquity,
		&r.RebateAmount, &surchargeRate, &r.SurchargeAmount, &cessRate, &r.CessAmount,
		&r.TotalTaxLiability, &r.TDSDeducted, &r.AdvanceTaxPaid, &r.BalancePayable, &r.DetailJSON)
	if err == sql.ErrNoRows {
		return domain.AdvanceTaxComputation{}, false, nil
	}
	if err != nil {
		return domain.AdvanceTaxComputation{}, false, domain.WrapStorageError("fetching latest advance tax computation", err)
	}
	var parseErr error
	r.SurchargeRate, parseErr = parseDecimal(surchargeRate)
	if parseErr != nil {
		return domain.AdvanceTaxComputation{}, false, domain.WrapStorageError("parsing surcharge rate", parseErr)
	}
	r.CessRate, parseErr = parseDecimal(cessRate)
	if parseErr != nil {
		return domain.AdvanceTaxComputation{}, false, domain.WrapStorageError("parsing cess rate", parseErr)
	}
	return r, true, nil
}
