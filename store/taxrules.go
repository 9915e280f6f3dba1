package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
)

// IncomeTaxSlab is one slab-table row (income_tax_slabs), grounded on the
// teacher's TaxRule struct (compliance.go: Name/Rate/EffectiveFrom/
// EffectiveTo) generalized with an explicit upper bound.
type IncomeTaxSlab struct {
	FinancialYear string
	Regime        domain.TaxRegime
	LowerLimit    decimal.Decimal
	UpperLimit    *decimal.Decimal
	TaxRate       decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// SlabsFor returns the slabs for (fy, regime) effective asOf, ordered by
// LowerLimit ascending, matching original_source's
// tax_rules_service.get_income_slabs query shape.
func (s *Storage) SlabsFor(ctx context.Context, fy string, regime domain.TaxRegime, asOf time.Time) ([]IncomeTaxSlab, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT financial_year, regime, lower_limit, upper_limit, tax_rate, effective_from, effective_to
		FROM income_tax_slabs
		WHERE financial_year = ? AND regime = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY CAST(lower_limit AS REAL) ASC
	`, fy, regime, asOf, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying income tax slabs", err)
	}
	defer rows.Close()

	var out []IncomeTaxSlab
	for rows.Next() {
		var r IncomeTaxSlab
		var lower, rate string
		var upper sql.NullString
		if err := rows.Scan(&r.FinancialYear, &r.Regime, &lower, &upper, &rate, &r.EffectiveFrom, &r.EffectiveTo); err != nil {
			return nil, domain.WrapStorageError("scanning income tax slab", err)
		}
		r.LowerLimit, err = decimal.NewFromString(lower)
		if err != nil {
			return nil, domain.WrapStorageError("parsing slab lower limit", err)
		}
		r.TaxRate, err = decimal.NewFromString(rate)
		if err != nil {
			return nil, domain.WrapStorageError("parsing slab tax rate", err)
		}
		if upper.Valid {
			u, err := decimal.NewFromString(upper.String)
			if err != nil {
				return nil, domain.WrapStorageError("parsing slab upper limit", err)
			}
			r.UpperLimit = &u
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating income tax slabs", err)
	}
	return out, nil
}

// CapitalGainsRate is one row of capital_gains_rates.
type CapitalGainsRate struct {
	AssetClass      domain.AssetClass
	GainType        domain.SubClassification // SubSTCG | SubLTCG
	TaxRate         decimal.Decimal
	ExemptionAmount decimal.Decimal
}

func (s *Storage) CapitalGainsRateFor(ctx context.Context, fy string, assetClass domain.AssetClass, gainType domain.SubClassification, asOf time.Time) (CapitalGainsRate, error) {
	var r CapitalGainsRate
	var rate, exemption string
	err := s.db.QueryRowContext(ctx, `
		SELECT asset_class, gain_type, tax_rate, exemption_amount
		FROM capital_gains_rates
		WHERE financial_year = ? AND asset_class = ? AND gain_type = ?
			AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC LIMIT 1
	`, fy, assetClass, gainType, asOf, asOf).Scan(&r.AssetClass, &r.GainType, &rate, &exemption)
	if err == sql.ErrNoRows {
		return CapitalGainsRate{}, domain.NewNotFound("no capital gains rate for " + fy + "/" + string(assetClass) + "/" + string(gainType))
	}
	if err != nil {
		return CapitalGainsRate{}, domain.WrapStorageError("querying capital gains rate", err)
	}
	r.TaxRate, err = decimal.NewFromString(rate)
	if err != nil {
		return CapitalGainsRate{}, domain.WrapStorageError("parsing capital gains tax rate", err)
	}
	r.ExemptionAmount, err = decimal.NewFromString(exemption)
	if err != nil {
		return CapitalGainsRate{}, domain.WrapStorageError("parsing capital gains exemption", err)
	}
	return r, nil
}

// ScalarRate is the shared shape for the single-value rate tables
// (surcharge, cess, rebate, Chapter VI-A, DTAA) — each queried the same
// way: latest row effective as of a date.
type ScalarRate struct {
	Value decimal.Decimal
	Extra decimal.Decimal // second column where the table has one (e.g. rebate's income_cap)
}

func (s *Storage) CessRateFor(ctx context.Context, fy string, asOf time.Time) (decimal.Decimal, error) {
	var rate string
	err := s.db.QueryRowContext(ctx, `
		SELECT cess_rate FROM cess_rates
		WHERE financial_year = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC LIMIT 1
	`, fy, asOf, asOf).Scan(&rate)
	if err == sql.ErrNoRows {
		return decimal.Zero, domain.NewNotFound("no cess rate for " + fy)
	}
	if err != nil {
		return decimal.Zero, domain.WrapStorageError("querying cess rate", err)
	}
	return decimal.NewFromString(rate)
}

func (s *Storage) RebateLimitFor(ctx context.Context, fy string, regime domain.TaxRegime, asOf time.Time) (incomeCap, maxRebate decimal.Decimal, err error) {
	var capStr, rebateStr string
	err = s.db.QueryRowContext(ctx, `
		SELECT income_cap, max_rebate FROM rebate_limits
		WHERE financial_year = ? AND regime = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC LIMIT 1
	`, fy, regime, asOf, asOf).Scan(&capStr, &rebateStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, decimal.Zero, domain.NewNotFound("no rebate limit for " + fy + "/" + string(regime))
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, domain.WrapStorageError("querying rebate limit", err)
	}
	incomeCap, err = decimal.NewFromString(capStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, domain.WrapStorageError("parsing rebate income cap", err)
	}
	maxRebate, err = decimal.NewFromString(rebateStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, domain.WrapStorageError("parsing rebate max amount", err)
	}
	return incomeCap, maxRebate, nil
}

// SurchargeBracket is one row of surcharge_rates.
type SurchargeBracket struct {
	LowerIncome   decimal.Decimal
	UpperIncome   *decimal.Decimal
	SurchargeRate decimal.Decimal
}

func (s *Storage) SurchargeBrackets(ctx context.Context, fy string, incomeType string, asOf time.Time) ([]SurchargeBracket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lower_income, upper_income, surcharge_rate FROM surcharge_rates
		WHERE financial_year = ? AND income_type = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY CAST(lower_income AS REAL) ASC
	`, fy, incomeType, asOf, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying surcharge brackets", err)
	}
	defer rows.Close()

	var out []SurchargeBracket
	for rows.Next() {
		var lower, rate string
		var upper sql.NullString
		var b SurchargeBracket
		if err := rows.Scan(&lower, &upper, &rate); err != nil {
			return nil, domain.WrapStorageError("scanning surcharge bracket", err)
		}
		b.LowerIncome, err = decimal.NewFromString(lower)
		if err != nil {
			return nil, domain.WrapStorageError("parsing surcharge lower income", err)
		}
		b.SurchargeRate, err = decimal.NewFromString(rate)
		if err != nil {
			return nil, domain.WrapStorageError("parsing surcharge rate", err)
		}
		if upper.Valid {
			u, err := decimal.NewFromString(upper.String)
			if err != nil {
				return nil, domain.WrapStorageError("parsing surcharge upper income", err)
			}
			b.UpperIncome = &u
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating surcharge brackets", err)
	}
	return out, nil
}

func (s *Storage) ChapterVIALimit(ctx context.Context, fy string, regime domain.TaxRegime, section string, asOf time.Time) (decimal.Decimal, error) {
	var limit string
	err := s.db.QueryRowContext(ctx, `
		SELECT limit_amount FROM chapter_via_limits
		WHERE financial_year = ? AND regime = ? AND section = ?
			AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC LIMIT 1
	`, fy, regime, section, asOf, asOf).Scan(&limit)
	if err == sql.ErrNoRows {
		return decimal.Zero, domain.NewNotFound("no Chapter VI-A limit for " + fy + "/" + string(regime) + "/" + section)
	}
	if err != nil {
		return decimal.Zero, domain.WrapStorageError("querying chapter VI-A limit", err)
	}
	return decimal.NewFromString(limit)
}

// DTAARate is one row of dtaa_rates, grounded on
// original_source/services/foreign_tax_credit.py's DTAA lookup.
type DTAARate struct {
	Country          string
	Article          string
	IncomeType       string
	WithholdingRate  decimal.Decimal
	CreditMethod     string
}

func (s *Storage) DTAARateFor(ctx context.Context, country, incomeType string, asOf time.Time) (DTAARate, error) {
	var r DTAARate
	var rate string
	err := s.db.QueryRowContext(ctx, `
		SELECT country, article, income_type, withholding_rate, credit_method
		FROM dtaa_rates
		WHERE country = ? AND income_type = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC LIMIT 1
	`, country, incomeType, asOf, asOf).Scan(&r.Country, &r.Article, &r.IncomeType, &rate, &r.CreditMethod)
	if err == sql.ErrNoRows {
		return DTAARate{}, domain.NewNotFound("no DTAA rate for " + country + "/" + incomeType)
	}
	if err != nil {
		return DTAARate{}, domain.WrapStorageError("querying DTAA rate", err)
	}
	r.WithholdingRate, err = decimal.NewFromString(rate)
	if err != nil {
		return DTAARate{}, domain.WrapStorageError("parsing DTAA withholding rate", err)
	}
	return r, nil
}

// StandardDeductionFor returns the flat deduction amount for a category
// (e.g. "SALARY"), spec.md §4.8.
func (s *Storage) StandardDeductionFor(ctx context.Context, fy string, regime domain.TaxRegime, category string, asOf time.Time) (decimal.Decimal, error) {
	var amount string
	err := s.db.QueryRowContext(ctx, `
		SELECT amount FROM standard_deductions
		WHERE financial_year = ? AND regime = ? AND category = ?
			AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC LIMIT 1
	`, fy, regime, category, asOf, asOf).Scan(&amount)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil // absence means no standard deduction applies, not an error
	}
	if err != nil {
		return decimal.Zero, domain.WrapStorageError("querying standard deduction", err)
	}
	return decimal.NewFromString(amount)
}
