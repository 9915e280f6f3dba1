package valuation

import (
	"math"

	"github.com/shopspring/decimal"

	"pfas/money"
)

// EMI computes the equated monthly installment for principal P at monthly
// rate r over n months, using the standard amortization formula
// EMI = P·r·(1+r)^n / ((1+r)^n − 1), per spec.md §4.9.
func EMI(principal money.Money, monthlyRate decimal.Decimal, months int) money.Money {
	if months <= 0 {
		return money.ZeroMoney
	}
	if monthlyRate.IsZero() {
		return money.MoneyFromDecimal(principal.Decimal().Div(decimal.NewFromInt(int64(months))))
	}
	p, _ := principal.Decimal().Float64()
	r, _ := monthlyRate.Float64()
	factor := math.Pow(1+r, float64(months))
	emi := p * r * factor / (factor - 1)
	return money.MoneyFromDecimal(decimal.NewFromFloat(emi))
}

// AmortizationRow is one month's EMI split into interest-then-principal,
// per spec.md §4.9: "interest (= outstanding × monthly rate) then
// principal = EMI − interest".
type AmortizationRow struct {
	Month               int
	OpeningOutstanding  money.Money
	Interest            money.Money
	Principal           money.Money
	ClosingOutstanding  money.Money
}

// AmortizationSchedule builds the month-by-month schedule for a loan,
// stopping early if the outstanding balance is paid off before months
// elapses.
func AmortizationSchedule(principal money.Money, monthlyRate decimal.Decimal, months int) []AmortizationRow {
	emi := EMI(principal, monthlyRate, months)
	outstanding := principal.Decimal()
	var out []AmortizationRow
	for m := 1; m <= months && outstanding.IsPositive(); m++ {
		interest := outstanding.Mul(monthlyRate)
		principalComponent := emi.Decimal().Sub(interest)
		if principalComponent.GreaterThan(outstanding) {
			principalComponent = outstanding
		}
		closing := outstanding.Sub(principalComponent)
		out = append(out, AmortizationRow{
			Month: m, OpeningOutstanding: money.MoneyFromDecimal(outstanding),
			Interest: money.MoneyFromDecimal(interest), Principal: money.MoneyFromDecimal(principalComponent),
			ClosingOutstanding: money.MoneyFromDecimal(closing),
		})
		outstanding = closing
	}
	return out
}

// ApplyPrepayment reduces outstanding by amount, 100% applied to principal,
// per spec.md §4.9.
func ApplyPrepayment(outstanding, amount money.Money) money.Money {
	result := outstanding.Sub(amount)
	if result.IsNegative() {
		return money.ZeroMoney
	}
	return result
}

// ApplyDisbursement increases outstanding principal by amount, per spec.md
// §4.9's "disbursement increases principal".
func ApplyDisbursement(outstanding, amount money.Money) money.Money {
	return outstanding.Add(amount)
}
