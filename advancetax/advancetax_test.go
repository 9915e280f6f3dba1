package advancetax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pfas/domain"
	"pfas/income"
	"pfas/money"
	"pfas/store"
)

func TestPaymentScheduleCumulativePercentages(t *testing.T) {
	total := money.MoneyFromInt(100000)
	schedule := PaymentSchedule(total)
	want := []string{"15000.00", "45000.00", "75000.00", "100000.00"}
	for i, s := range schedule {
		assert.Equal(t, want[i], s.Amount.String())
	}
	assert.Equal(t, "15th June", schedule[0].DueDate)
	assert.Equal(t, "15th March", schedule[3].DueDate)
}

func TestCategorizeBucketsByIncomeTypeAndRate(t *testing.T) {
	records := []income.Record{
		{IncomeType: domain.IncomeSalary, TaxableAmount: money.MoneyFromInt(1200000), TDSDeducted: money.MoneyFromInt(50000)},
		{IncomeType: domain.IncomeCapitalGains, SubClassification: domain.SubSTCG, ApplicableRateType: domain.RateFlat20, TaxableAmount: money.MoneyFromInt(50000)},
		{IncomeType: domain.IncomeCapitalGains, SubClassification: domain.SubLTCG, ApplicableRateType: domain.RateFlat12_5, TaxableAmount: money.MoneyFromInt(200000)},
		{IncomeType: domain.IncomeCapitalGains, SubClassification: domain.SubSTCG, ApplicableRateType: domain.RateSlab, TaxableAmount: money.MoneyFromInt(10000)},
		{IncomeType: domain.IncomeBusiness, TaxableAmount: money.MoneyFromInt(30000)},
		{IncomeType: domain.IncomeOtherSources, TaxableAmount: money.MoneyFromInt(5000)},
		{IncomeType: domain.IncomeHouseProperty, TaxableAmount: money.MoneyFromInt(20000)},
	}
	b := categorize(records)

	assert.Equal(t, "1200000.00", b.salary.String())
	assert.Equal(t, "50000.00", b.stcgEquity.String())
	assert.Equal(t, "200000.00", b.ltcgEquity.String())
	// slab-rated STCG (10000) plus business income (30000) fold into the same bucket.
	assert.Equal(t, "40000.00", b.capitalGainsSlab.String())
	assert.Equal(t, "5000.00", b.otherSources.String())
	assert.Equal(t, "20000.00", b.houseProperty.String())
	assert.Equal(t, "50000.00", b.tdsDeducted.String())
}

func TestSlabTaxMarginalBrackets(t *testing.T) {
	upper1 := decimal.NewFromInt(700000)
	upper2 := decimal.NewFromInt(1000000)
	slabs := []store.IncomeTaxSlab{
		{LowerLimit: decimal.NewFromInt(300000), UpperLimit: &upper1, TaxRate: decimal.NewFromFloat(0.05)},
		{LowerLimit: upper1, UpperLimit: &upper2, TaxRate: decimal.NewFromFloat(0.10)},
		{LowerLimit: upper2, UpperLimit: nil, TaxRate: decimal.NewFromFloat(0.20)},
	}

	// Income of 1,200,000: 400000@5% + 300000@10% + 200000@20% = 20000+30000+40000 = 90000.
	tax := slabTax(decimal.NewFromInt(1200000), slabs)
	assert.Equal(t, "90000.00", tax.String())
}

func TestSlabTaxZeroOrNegativeIncome(t *testing.T) {
	slabs := []store.IncomeTaxSlab{{LowerLimit: decimal.Zero, TaxRate: decimal.NewFromFloat(0.05)}}
	assert.True(t, slabTax(decimal.Zero, slabs).IsZero())
	assert.True(t, slabTax(decimal.NewFromInt(-100), slabs).IsZero())
}

func TestSlabTaxRoundsUpToWholeRupee(t *testing.T) {
	upper := decimal.NewFromInt(700000)
	slabs := []store.IncomeTaxSlab{
		{LowerLimit: decimal.NewFromInt(300000), UpperLimit: &upper, TaxRate: decimal.NewFromFloat(0.05)},
	}
	// Only the 0.33 above the 300000 lower limit is taxed: 0.33 at 5% =
	// 0.0165, which rounds up to 1.
	tax := slabTax(decimal.NewFromFloat(300000.33), slabs)
	assert.Equal(t, "1.00", tax.String())
}

func TestBucketsGrossTotal(t *testing.T) {
	b := buckets{
		salary: money.MoneyFromInt(100), stcgEquity: money.MoneyFromInt(10), ltcgEquity: money.MoneyFromInt(20),
		capitalGainsSlab: money.MoneyFromInt(5), otherSources: money.MoneyFromInt(3), houseProperty: money.MoneyFromInt(2),
	}
	assert.Equal(t, "140.00", b.grossTotal().String())
}
