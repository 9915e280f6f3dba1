package valuation

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/store"
)

// CashFlowPoint is one dated cash flow in an XIRR series: purchases
// negative, sales positive, and a terminal current-value point positive at
// "today" (spec.md §4.9).
type CashFlowPoint struct {
	Date   time.Time
	Amount float64
}

const (
	xirrInitialRate   = 0.10
	xirrMaxIterations = 100
	xirrTolerance     = 0.001
	xirrRateFloor     = -0.99
)

// XIRR computes the annualized internal rate of return for an irregular
// cash-flow series via Newton–Raphson, per spec.md §4.9. Returns (rate,
// true) on convergence, (0, false) on insufficient history or
// non-convergence.
func XIRR(flows []CashFlowPoint) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}
	t0 := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(t0) {
			t0 = f.Date
		}
	}

	npv := func(rate float64) float64 {
		total := 0.0
		for _, f := range flows {
			years := f.Date.Sub(t0).Hours() / 24 / 365
			total += f.Amount / math.Pow(1+rate, years)
		}
		return total
	}
	dnpv := func(rate float64) float64 {
		total := 0.0
		for _, f := range flows {
			years := f.Date.Sub(t0).Hours() / 24 / 365
			if years == 0 {
				continue
			}
			total += -years * f.Amount / math.Pow(1+rate, years+1)
		}
		return total
	}

	rate := xirrInitialRate
	for i := 0; i < xirrMaxIterations; i++ {
		v := npv(rate)
		if math.Abs(v) < xirrTolerance {
			return rate, true
		}
		d := dnpv(rate)
		if d == 0 {
			return 0, false
		}
		next := rate - v/d
		if next < xirrRateFloor {
			next = xirrRateFloor
		}
		rate = next
	}
	return 0, false
}

// PortfolioValuation is one asset class's XIRR result.
type PortfolioValuation struct {
	AssetClass domain.AssetClass
	XIRR       float64
	Converged  bool
}

type PortfolioService struct {
	db *store.Storage
}

func NewPortfolioService(db *store.Storage) *PortfolioService {
	return &PortfolioService{db: db}
}

// MFXIRR computes one XIRR across all of the user's MF transactions,
// reported under AssetMFEquity; schemes are not split by asset class.
// Purchases (and every other row mfTxnSign does not mark as an outflow of
// units) are negative flows, redemptions positive, and the current market
// value of remaining units is a terminal positive flow "today".
func (p *PortfolioService) MFXIRR(ctx context.Context, userID string, today time.Time) (PortfolioValuation, error) {
	rows, err := p.db.MFTransactionsUpTo(ctx, userID, today)
	if err != nil {
		return PortfolioValuation{}, err
	}
	if len(rows) == 0 {
		return PortfolioValuation{AssetClass: domain.AssetMFEquity}, nil
	}

	var flows []CashFlowPoint
	remainingUnits := decimal.Zero
	latestNAV := decimal.Zero
	for _, r := range rows {
		sign := mfTxnSign(r.TxnType)
		amt, _ := r.Amount.Float64()
		if sign < 0 {
			flows = append(flows, CashFlowPoint{Date: r.TxnDate, Amount: amt})
			remainingUnits = remainingUnits.Sub(r.Units)
		} else {
			flows = append(flows, CashFlowPoint{Date: r.TxnDate, Amount: -amt})
			remainingUnits = remainingUnits.Add(r.Units)
		}
		if r.NAV.IsPositive() {
			latestNAV = r.NAV
		}
	}
	if remainingUnits.IsPositive() {
		terminal, _ := remainingUnits.Mul(latestNAV).Float64()
		flows = append(flows, CashFlowPoint{Date: today, Amount: terminal})
	}

	rate, ok := XIRR(flows)
	return PortfolioValuation{AssetClass: domain.AssetMFEquity, XIRR: rate, Converged: ok}, nil
}
