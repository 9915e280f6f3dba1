// Package advancetax is the Advance-Tax Calculator: a data-driven tax
// computation over the Income Aggregator's output and the Tax-Rules
// Service's rate tables — no hardcoded rates — grounded on
// original_source/services/advance_tax_calculator.py's AdvanceTaxCalculator
// (spec.md §4.8).
package advancetax

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/income"
	"pfas/money"
	"pfas/store"
	"pfas/taxrules"
)

// Schedule is the informational advance-tax payment schedule spec.md §4.8
// names: 15% by 15-Jun, 45% by 15-Sep, 75% by 15-Dec, 100% by 15-Mar.
type Schedule struct {
	DueDate string
	Percent decimal.Decimal
	Amount  money.Money
}

// PaymentSchedule returns the four cumulative-percentage installments for
// totalTax.
func PaymentSchedule(totalTax money.Money) []Schedule {
	steps := []struct {
		due string
		pct string
	}{
		{"15th June", "0.15"},
		{"15th September", "0.45"},
		{"15th December", "0.75"},
		{"15th March", "1.00"},
	}
	out := make([]Schedule, 0, len(steps))
	for _, s := range steps {
		pct, _ := decimal.NewFromString(s.pct)
		out = append(out, Schedule{DueDate: s.due, Percent: pct, Amount: totalTax.Mul(pct)})
	}
	return out
}

// Calculator composes the Income Aggregator and Tax-Rules Service to
// produce one AdvanceTaxComputation per (user, FY, regime), per spec.md
// §4.8's 11-step algorithm.
type Calculator struct {
	db       *store.Storage
	income   *income.Aggregator
	taxRules *taxrules.Service
}

func New(db *store.Storage, inc *income.Aggregator, rules *taxrules.Service) *Calculator {
	return &Calculator{db: db, income: inc, taxRules: rules}
}

// buckets accumulates the categorized totals spec.md §4.8 step 1 lists.
type buckets struct {
	salary            money.Money
	stcgEquity        money.Money
	ltcgEquity        money.Money
	capitalGainsSlab  money.Money
	otherSources      money.Money
	houseProperty     money.Money
	tdsDeducted       money.Money
}

var stcgEquityRateTypes = map[domain.TaxRateType]bool{domain.RateFlat15: true, domain.RateFlat20: true}
var ltcgEquityRateTypes = map[domain.TaxRateType]bool{domain.RateFlat10: true, domain.RateFlat12_5: true}

// categorize is spec.md §4.8 step 1: bucket IncomeRecord[] into salary,
// STCG-equity, LTCG-equity, slab-rated capital gains, other sources, house
// property, business (F&O is folded into slab-rated capital gains, mirroring
// original_source's treatment of F&O as business income taxed at slab).
func categorize(records []income.Record) buckets {
	b := buckets{
		salary: money.ZeroMoney, stcgEquity: money.ZeroMoney, ltcgEquity: money.ZeroMoney,
		capitalGainsSlab: money.ZeroMoney, otherSources: money.ZeroMoney, houseProperty: money.ZeroMoney,
		tdsDeducted: money.ZeroMoney,
	}
	for _, r := range records {
		switch r.IncomeType {
		case domain.IncomeSalary:
			b.salary = b.salary.Add(r.TaxableAmount)
		case domain.IncomeCapitalGains:
			switch {
			case r.SubClassification == domain.SubSTCG && stcgEquityRateTypes[r.ApplicableRateType]:
				b.stcgEquity = b.stcgEquity.Add(r.TaxableAmount)
			case r.SubClassification == domain.SubLTCG && ltcgEquityRateTypes[r.ApplicableRateType]:
				b.ltcgEquity = b.ltcgEquity.Add(r.TaxableAmount)
			default:
				b.capitalGainsSlab = b.capitalGainsSlab.Add(r.TaxableAmount)
			}
		case domain.IncomeOtherSources, domain.IncomeForeign:
			b.otherSources = b.otherSources.Add(r.TaxableAmount)
		case domain.IncomeHouseProperty:
			b.houseProperty = b.houseProperty.Add(r.TaxableAmount)
		case domain.IncomeBusiness:
			b.capitalGainsSlab = b.capitalGainsSlab.Add(r.TaxableAmount)
		}
		b.tdsDeducted = b.tdsDeducted.Add(r.TDSDeducted)
	}
	return b
}

func (b buckets) grossTotal() money.Money {
	return b.salary.Add(b.stcgEquity).Add(b.ltcgEquity).Add(b.capitalGainsSlab).Add(b.otherSources).Add(b.houseProperty)
}

// slabTax computes tax on income per the ordered slab table, spec.md §4.8
// step 4: for each slab, tax the portion of income falling within
// [lower_limit, upper_limit), stopping once income no longer exceeds a
// slab's lower bound.
func slabTax(incomeAmt decimal.Decimal, slabs []store.IncomeTaxSlab) money.Money {
	if !incomeAmt.IsPositive() {
		return money.ZeroMoney
	}
	tax := decimal.Zero
	for _, s := range slabs {
		if incomeAmt.LessThanOrEqual(s.LowerLimit) {
			break
		}
		upper := incomeAmt
		if s.UpperLimit != nil {
			upper = decimal.Min(incomeAmt, *s.UpperLimit)
		}
		taxableInSlab := upper.Sub(s.LowerLimit)
		if taxableInSlab.IsPositive() {
			tax = tax.Add(taxableInSlab.Mul(s.TaxRate))
		}
	}
	return money.MoneyFromDecimal(tax.RoundUp(0))
}

// Calculate runs spec.md §4.8's 11-step algorithm for (userID, fy, regime)
// in one transaction, writing the new AdvanceTaxComputation row and
// flipping every prior row's is_latest (step 11). advanceTaxPaid is the
// caller-supplied sum of estimated payments made so far this FY.
func (c *Calculator) Calculate(ctx context.Context, userID, fy string, regime domain.TaxRegime, advanceTaxPaid money.Money) (domain.AdvanceTaxComputation, error) {
	asOf := time.Now().UTC()

	records, err := c.income.ForFY(ctx, userID, fy)
	if err != nil {
		return domain.AdvanceTaxComputation{}, err
	}

	// Steps 1, 2, 3.
	b := categorize(records)
	grossTotal := b.grossTotal()
	totalDeductions := money.ZeroMoney
	if b.salary.IsPositive() {
		stdDed, err := c.taxRules.StandardDeduction(ctx, fy, regime, "SALARY", asOf)
		if err != nil {
			return domain.AdvanceTaxComputation{}, err
		}
		totalDeductions = money.MoneyFromDecimal(stdDed)
	}
	taxableIncome := money.MaxMoney(money.ZeroMoney, grossTotal.Sub(totalDeductions))

	// Step 4: slab tax on everything except special-rate capital gains.
	slabIncome := money.MaxMoney(money.ZeroMoney,
		b.salary.Add(b.capitalGainsSlab).Add(b.otherSources).Add(b.houseProperty).Sub(totalDeductions))
	slabs, err := c.taxRules.Slabs(ctx, fy, regime, asOf)
	if err != nil {
		return domain.AdvanceTaxComputation{}, err
	}
	taxOnSlab := slabTax(slabIncome.Decimal(), slabs)

	// Step 5: special-rate tax on STCG-equity and LTCG-equity, the latter
	// after the per-FY exemption the rate table carries (never hard-coded).
	taxOnSTCG := money.ZeroMoney
	if b.stcgEquity.IsPositive() {
		rate, err := c.taxRules.CapitalGainsRate(ctx, fy, domain.AssetStock, domain.SubSTCG, asOf)
		if err != nil {
			return domain.AdvanceTaxComputation{}, err
		}
		taxOnSTCG = money.MoneyFromDecimal(b.stcgEquity.Decimal().Mul(rate.TaxRate).RoundUp(0))
	}
	taxOnLTCG := money.ZeroMoney
	if b.ltcgEquity.IsPositive() {
		rate, err := c.taxRules.CapitalGainsRate(ctx, fy, domain.AssetStock, domain.SubLTCG, asOf)
		if err != nil {
			return domain.AdvanceTaxComputation{}, err
		}
		ltcgTaxable := money.MaxMoney(money.ZeroMoney, b.ltcgEquity.Sub(money.MoneyFromDecimal(rate.ExemptionAmount)))
		taxOnLTCG = money.MoneyFromDecimal(ltcgTaxable.Decimal().Mul(rate.TaxRate).RoundUp(0))
	}

	totalTax := taxOnSlab.Add(taxOnSTCG).Add(taxOnLTCG)

	// Step 6: §87A rebate.
	rebateAmount := money.ZeroMoney
	rebateCap, maxRebate, err := c.taxRules.RebateLimit(ctx, fy, regime, asOf)
	if err != nil {
		return domain.AdvanceTaxComputation{}, err
	}
	if taxableIncome.Decimal().LessThanOrEqual(rebateCap) && totalTax.IsPositive() {
		rebateAmount = money.MinMoney(totalTax, money.MoneyFromDecimal(maxRebate))
		totalTax = totalTax.Sub(rebateAmount)
	}

	// Step 7: surcharge.
	surchargeRate, err := c.taxRules.SurchargeRate(ctx, fy, "NORMAL", grossTotal.Decimal(), asOf)
	if err != nil {
		return domain.AdvanceTaxComputation{}, err
	}
	surchargeAmount := money.MoneyFromDecimal(totalTax.Decimal().Mul(surchargeRate).RoundUp(0))
	taxWithSurcharge := totalTax.Add(surchargeAmount)

	// Step 8: cess.
	cessRate, err := c.taxRules.CessRate(ctx, fy, asOf)
	if err != nil {
		return domain.AdvanceTaxComputation{}, err
	}
	cessAmount := money.MoneyFromDecimal(taxWithSurcharge.Decimal().Mul(cessRate).RoundUp(0))

	// Step 9, 10.
	totalLiability := taxWithSurcharge.Add(cessAmount)
	balancePayable := money.MaxMoney(money.ZeroMoney, totalLiability.Sub(b.tdsDeducted).Sub(advanceTaxPaid))

	detail, err := json.Marshal(records)
	if err != nil {
		return domain.AdvanceTaxComputation{}, domain.NewInvalid("encoding income detail: " + err.Error())
	}

	rec := domain.AdvanceTaxComputation{
		ID: uuid.New().String(), UserID: userID, FY: fy, Regime: regime,
		ComputedAt: asOf, IsLatest: true,
		GrossTotalIncome: grossTotal, TotalDeductions: totalDeductions, TaxableIncome: taxableIncome,
		TaxOnSlabIncome: taxOnSlab, TaxOnSTCGEquity: taxOnSTCG, TaxOnLTCGEquity: taxOnLTCG,
		RebateAmount: rebateAmount, SurchargeRate: surchargeRate, SurchargeAmount: surchargeAmount,
		CessRate: cessRate, CessAmount: cessAmount, TotalTaxLiability: totalLiability,
		TDSDeducted: b.tdsDeducted, AdvanceTaxPaid: advanceTaxPaid, BalancePayable: balancePayable,
		DetailJSON: string(detail),
	}

	// Step 11: mark previous computations not-latest, insert the new row —
	// both inside one transaction (spec.md §3 invariant 4).
	err = c.db.WithTx(ctx, func(tx *store.Tx) error {
		return c.db.InsertAdvanceTaxComputation(ctx, tx, rec)
	})
	if err != nil {
		return domain.AdvanceTaxComputation{}, err
	}
	return rec, nil
}

// Latest returns the most recently computed, still-current row for
// (userID, fy), if any.
func (c *Calculator) Latest(ctx context.Context, userID, fy string) (domain.AdvanceTaxComputation, bool, error) {
	return c.db.LatestAdvanceTaxComputation(ctx, userID, fy)
}
