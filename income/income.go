// Package income is the Income Aggregator: derives per-FY IncomeRecord[] by
// preferring the pre-computed user_income_summary table and falling back to
// aggregation from source tables on miss, grounded on
// original_source/services/income_aggregation_service.py's
// IncomeAggregationService (spec.md §4.8).
package income

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pfas/bankintel"
	"pfas/domain"
	"pfas/money"
	"pfas/store"
	"pfas/taxrules"
)

// Record mirrors original_source's IncomeRecord dataclass, generalized with
// pfas's typed enums instead of free-text income_type/sub_classification
// strings.
type Record struct {
	IncomeType         domain.IncomeType
	SubClassification  domain.SubClassification
	SubGrouping        string
	GrossAmount        money.Money
	Deductions         money.Money
	TaxableAmount      money.Money
	TDSDeducted        money.Money
	ApplicableRateType domain.TaxRateType
	SourceTable        string
}

type Aggregator struct {
	db       *store.Storage
	taxRules *taxrules.Service
}

func New(db *store.Storage, rules *taxrules.Service) *Aggregator {
	return &Aggregator{db: db, taxRules: rules}
}

// ForFY returns every IncomeRecord for (userID, fy). Tries the
// pre-computed summary table first (spec.md §4.8's "prefers a
// pre-computed user_income_summary table"); on miss, aggregates from
// source tables.
func (a *Aggregator) ForFY(ctx context.Context, userID, fy string) ([]Record, error) {
	summary, err := a.db.IncomeSummaryFor(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	if len(summary) > 0 {
		out := make([]Record, 0, len(summary))
		for _, s := range summary {
			out = append(out, Record{
				IncomeType: s.IncomeType, SubClassification: s.SubClassification, SubGrouping: s.SubGrouping,
				GrossAmount: s.Gross, Deductions: s.Deductions, TaxableAmount: s.Taxable,
				TDSDeducted: s.TDS, ApplicableRateType: s.ApplicableRateType, SourceTable: "user_income_summary",
			})
		}
		return out, nil
	}
	return a.aggregateFromSourceTables(ctx, userID, fy)
}

func (a *Aggregator) aggregateFromSourceTables(ctx context.Context, userID, fy string) ([]Record, error) {
	var records []Record

	salary, err := a.aggregateSalary(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	records = append(records, salary...)

	cg, err := a.aggregateCapitalGains(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	records = append(records, cg...)

	dividends, err := a.aggregateDividends(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	records = append(records, dividends...)

	interest, err := a.aggregateBankInterest(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	records = append(records, interest...)

	foreign, err := a.aggregateForeignIncome(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	records = append(records, foreign...)

	return records, nil
}

// aggregateForeignIncome reads foreign_income_events for the FY window and
// applies each event's DTAA credit method (spec.md §9's Open Question
// resolution), grounded on
// original_source/services/foreign/dtaa_calculator.py: a FULL credit_method
// nets the Indian-side taxable amount down by the already-withheld tax
// (avoiding double taxation under the treaty); EXEMPT drops it from Indian
// taxable income entirely; anything else (no-treaty countries) leaves the
// gross amount fully taxable, with the foreign withholding tracked as TDS.
func (a *Aggregator) aggregateForeignIncome(ctx context.Context, userID, fy string) ([]Record, error) {
	from, to := fyBoundsTime(fy)
	events, err := a.db.ForeignIncomeEventsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, e := range events {
		grossINR := e.GrossAmountUSD.Mul(e.ExchangeRate)
		whtINR := e.WithholdingTaxUSD.Mul(e.ExchangeRate)

		subClass := domain.SubDividend
		if e.IncomeType == "FOREIGN_INTEREST" {
			subClass = domain.SubInterest
		}

		taxable := grossINR
		dtaa, err := a.taxRules.DTAARate(ctx, e.Country, e.IncomeType, e.EventDate)
		if err == nil {
			switch dtaa.CreditMethod {
			case "EXEMPT":
				taxable = decimal.Zero
			case "FULL":
				taxable = grossINR.Sub(whtINR)
				if taxable.IsNegative() {
					taxable = decimal.Zero
				}
			}
		}

		out = append(out, Record{
			IncomeType: domain.IncomeForeign, SubClassification: subClass,
			SubGrouping: "Foreign Income (" + e.Country + ")",
			GrossAmount: money.MoneyFromDecimal(grossINR), Deductions: money.MoneyFromDecimal(grossINR.Sub(taxable)),
			TaxableAmount: money.MoneyFromDecimal(taxable), TDSDeducted: money.MoneyFromDecimal(whtINR),
			ApplicableRateType: domain.RateSlab, SourceTable: "foreign_income_events",
		})
	}
	return out, nil
}

// fyBoundsTime is fyBounds without the string-formatting round trip, for
// callers that query a time.Time column directly.
func fyBoundsTime(fy string) (time.Time, time.Time) {
	f, err := money.ParseFY(fy)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return f.Start(), f.End()
}

// aggregateSalary sums the deposits of bank_transactions rows the ingester
// classified as bankintel.CategorySalary (the rows it posts as
// TxnSalaryCredit) within the FY window. Without a separate Form-16/payslip
// table in pfas's schema, the salary-credit bank row is the system's only
// source of salary income — the distinction original_source draws between
// "Form16 (annual)" and "Payslips (monthly)" precision doesn't apply here.
func (a *Aggregator) aggregateSalary(ctx context.Context, userID, fy string) ([]Record, error) {
	from, to := fyBounds(fy)
	gross, err := a.db.SumAssetTableWhere(ctx, "bank_transactions", "txn_date", "deposit", userID, from, to, "category = '"+string(bankintel.CategorySalary)+"'")
	if err != nil {
		return nil, err
	}
	if gross.IsZero() {
		return nil, nil
	}
	return []Record{{
		IncomeType: domain.IncomeSalary, SubClassification: "", SubGrouping: "Employer Salary (bank credits)",
		GrossAmount: money.MoneyFromDecimal(gross), Deductions: money.ZeroMoney, TaxableAmount: money.MoneyFromDecimal(gross),
		TDSDeducted: money.ZeroMoney, ApplicableRateType: domain.RateSlab, SourceTable: "bank_transactions",
	}}, nil
}

// aggregateCapitalGains reads capital_gains_events (written by the Batch
// Ingester alongside each realized sale's journal posting) and buckets
// equity vs. non-equity asset classes into the applicable-rate-type pairs
// original_source's _aggregate_mf_capital_gains/_aggregate_stock_capital_
// gains hard-code per asset class.
func (a *Aggregator) aggregateCapitalGains(ctx context.Context, userID, fy string) ([]Record, error) {
	summaries, err := a.db.CapitalGainsSummaryFor(ctx, userID, fy)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, s := range summaries {
		if s.GrossGain.IsZero() {
			continue
		}
		rateType := domain.RateSlab
		if s.SubClassification == domain.SubSTCG {
			rateType = equityRateType(s.AssetClass, domain.RateFlat20, domain.RateSlab)
		} else if s.SubClassification == domain.SubLTCG {
			rateType = equityRateType(s.AssetClass, domain.RateFlat12_5, domain.RateSlab)
		}
		taxable := s.GrossGain.Sub(s.ExemptionAmount)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		out = append(out, Record{
			IncomeType: domain.IncomeCapitalGains, SubClassification: s.SubClassification,
			SubGrouping: assetClassGrouping(s.AssetClass),
			GrossAmount: money.MoneyFromDecimal(s.GrossGain), Deductions: money.MoneyFromDecimal(s.ExemptionAmount),
			TaxableAmount: money.MoneyFromDecimal(taxable), TDSDeducted: money.ZeroMoney,
			ApplicableRateType: rateType, SourceTable: "capital_gains_events",
		})
	}
	return out, nil
}

func equityRateType(assetClass domain.AssetClass, equityRate, otherRate domain.TaxRateType) domain.TaxRateType {
	switch assetClass {
	case domain.AssetMFEquity, domain.AssetStock, domain.AssetSGB:
		return equityRate
	default:
		return otherRate
	}
}

func assetClassGrouping(assetClass domain.AssetClass) string {
	switch assetClass {
	case domain.AssetMFEquity:
		return "Equity Mutual Funds"
	case domain.AssetMFDebt:
		return "Debt Mutual Funds"
	case domain.AssetStock:
		return "Indian Listed Equity"
	default:
		return string(assetClass)
	}
}

// aggregateDividends sums the amount of mf_transactions rows whose txn_type
// mentions a dividend within the FY. It reads neither the ledger's journals
// nor stock_trades.
func (a *Aggregator) aggregateDividends(ctx context.Context, userID, fy string) ([]Record, error) {
	from, to := fyBounds(fy)
	total, err := a.db.SumAssetTableWhere(ctx, "mf_transactions", "txn_date", "amount", userID, from, to, "txn_type LIKE '%ividend%'")
	if err != nil {
		return nil, err
	}
	if total.IsZero() {
		return nil, nil
	}
	return []Record{{
		IncomeType: domain.IncomeOtherSources, SubClassification: domain.SubDividend, SubGrouping: "Mutual Fund & Equity Dividends",
		GrossAmount: money.MoneyFromDecimal(total), Deductions: money.ZeroMoney, TaxableAmount: money.MoneyFromDecimal(total),
		TDSDeducted: money.ZeroMoney, ApplicableRateType: domain.RateSlab, SourceTable: "mf_transactions",
	}}, nil
}

// aggregateBankInterest sums bank deposits the bankintel classifier tagged
// INTEREST within the FY, applying the §80TTA deduction (cap ₹10,000)
// spec.md §4.8 specifies. Filtering on category (set by the Batch Ingester
// at ingestion time, ingest/rowmap.go's applyBankRow) rather than on
// "not a salary credit" keeps MF/stock-sale proceeds, rent, refunds, and
// transfers credited to the account out of this bucket.
func (a *Aggregator) aggregateBankInterest(ctx context.Context, userID, fy string) ([]Record, error) {
	from, to := fyBounds(fy)
	total, err := a.db.SumAssetTableWhere(ctx, "bank_transactions", "txn_date", "deposit", userID, from, to, "category = '"+string(bankintel.CategoryInterest)+"'")
	if err != nil {
		return nil, err
	}
	if total.IsZero() {
		return nil, nil
	}
	deduction := decimal.Min(total, decimal.NewFromInt(10000))
	taxable := total.Sub(deduction)
	return []Record{{
		IncomeType: domain.IncomeOtherSources, SubClassification: domain.SubInterest, SubGrouping: "Savings Bank Interest",
		GrossAmount: money.MoneyFromDecimal(total), Deductions: money.MoneyFromDecimal(deduction),
		TaxableAmount: money.MoneyFromDecimal(taxable), TDSDeducted: money.ZeroMoney,
		ApplicableRateType: domain.RateSlab, SourceTable: "bank_transactions",
	}}, nil
}

// fyBounds renders the "YYYY-04-01"/"YYYY+1-03-31" window string
// original_source's _get_fy_dates uses, parsed back into an FY by
// money.ParseFY so every aggregation query shares one FY-window
// convention.
func fyBounds(fy string) (from, to string) {
	f, err := money.ParseFY(fy)
	if err != nil {
		return "", ""
	}
	return f.Start().Format("2006-01-02"), f.End().Format("2006-01-02")
}
