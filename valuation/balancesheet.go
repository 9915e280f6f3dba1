// Package valuation derives point-in-time snapshots (balance sheet, cash
// flow, portfolio XIRR, liability amortization) from the asset tables
// (journals are not read), grounded on original_source/services/valuation/*.py (spec.md
// §4.9). No service here writes to the ledger; all reads.
package valuation

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/money"
	"pfas/store"
)

// BalanceSheet is the Balance Sheet snapshot spec.md §4.9 names: per-asset
// holdings, per-loan breakdown, and the aggregate totals.
type BalanceSheet struct {
	AsOf            time.Time
	Holdings        []domain.SystemHolding
	Loans           []LoanBalance
	TotalAssets     money.Money
	TotalLiabilities money.Money
	NetWorth        money.Money
}

// LoanBalance is one loan's outstanding principal as of the snapshot date.
type LoanBalance struct {
	LoanID      string
	Outstanding money.Money
	AsOf        time.Time
}

// mfTxnSign gives an mf_transactions row's sign from its txn_type text,
// since mf_transactions.units/amount are stored unsigned: "redeem",
// "redemption", "repurchase" and "switch out" subtract, anything else adds.
// The Batch Ingester's mfTxnKind also treats a row with negative parsed
// units as a redemption; that sign is not stored, so such a row whose
// txn_type names none of these words counts here as an addition.
func mfTxnSign(txnType string) int {
	lower := strings.ToLower(txnType)
	switch {
	case strings.Contains(lower, "redeem"), strings.Contains(lower, "redemption"), strings.Contains(lower, "repurchase"), strings.Contains(lower, "switch out"):
		return -1
	default:
		return 1
	}
}

// BalanceSheetService computes spec.md §4.9's Balance Sheet.
type BalanceSheetService struct {
	db *store.Storage
}

func NewBalanceSheetService(db *store.Storage) *BalanceSheetService {
	return &BalanceSheetService{db: db}
}

// As computes the balance sheet as of date d, aggregating every asset
// table's rows that exist on or before d (spec.md §4.9).
func (b *BalanceSheetService) As(ctx context.Context, userID string, d time.Time) (BalanceSheet, error) {
	var holdings []domain.SystemHolding
	total := decimal.Zero

	mfHoldings, mfTotal, err := b.mfHoldings(ctx, userID, d)
	if err != nil {
		return BalanceSheet{}, err
	}
	holdings = append(holdings, mfHoldings...)
	total = total.Add(mfTotal)

	stockHoldings, stockTotal, err := b.stockHoldings(ctx, userID, d)
	if err != nil {
		return BalanceSheet{}, err
	}
	holdings = append(holdings, stockHoldings...)
	total = total.Add(stockTotal)

	foreignHoldings, foreignTotal, err := b.foreignHoldings(ctx, userID, d)
	if err != nil {
		return BalanceSheet{}, err
	}
	holdings = append(holdings, foreignHoldings...)
	total = total.Add(foreignTotal)

	passbookHoldings, passbookTotal, err := b.passbookHoldings(ctx, userID, d)
	if err != nil {
		return BalanceSheet{}, err
	}
	holdings = append(holdings, passbookHoldings...)
	total = total.Add(passbookTotal)

	bankHoldings, bankTotal, err := b.bankHoldings(ctx, userID, d)
	if err != nil {
		return BalanceSheet{}, err
	}
	holdings = append(holdings, bankHoldings...)
	total = total.Add(bankTotal)

	loans, liabilityTotal, err := b.loanBalances(ctx, userID, d)
	if err != nil {
		return BalanceSheet{}, err
	}

	return BalanceSheet{
		AsOf: d, Holdings: holdings, Loans: loans,
		TotalAssets:      money.MoneyFromDecimal(total),
		TotalLiabilities: money.MoneyFromDecimal(liabilityTotal),
		NetWorth:         money.MoneyFromDecimal(total.Sub(liabilityTotal)),
	}, nil
}

// mfHoldings sums signed units per (folio, scheme) and values the position
// at its latest known NAV ≤ d.
func (b *BalanceSheetService) mfHoldings(ctx context.Context, userID string, d time.Time) ([]domain.SystemHolding, decimal.Decimal, error) {
	rows, err := b.db.MFTransactionsUpTo(ctx, userID, d)
	if err != nil {
		return nil, decimal.Zero, err
	}
	type bucket struct {
		assetClass   domain.AssetClass
		scheme       string
		units        decimal.Decimal
		latestNAV    decimal.Decimal
	}
	buckets := map[string]*bucket{}
	var order []string
	for _, r := range rows {
		key := r.Folio + "|" + r.Scheme
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{assetClass: domain.AssetClass(r.AssetClass), scheme: r.Scheme}
			buckets[key] = bk
			order = append(order, key)
		}
		sign := mfTxnSign(r.TxnType)
		if sign < 0 {
			bk.units = bk.units.Sub(r.Units)
		} else if !strings.Contains(strings.ToLower(r.TxnType), "dividend") {
			bk.units = bk.units.Add(r.Units)
		}
		if r.NAV.IsPositive() {
			bk.latestNAV = r.NAV
		}
	}

	var out []domain.SystemHolding
	total := decimal.Zero
	for _, key := range order {
		bk := buckets[key]
		if bk.units.IsZero() {
			continue
		}
		folio := strings.SplitN(key, "|", 2)[0]
		marketValue := bk.units.Mul(bk.latestNAV)
		total = total.Add(marketValue)
		out = append(out, domain.SystemHolding{
			AssetClass: bk.assetClass, Folio: folio, Symbol: bk.scheme, Name: bk.scheme,
			Units: money.UnitsFromDecimal(bk.units), MarketValue: money.MoneyFromDecimal(marketValue),
		})
	}
	return out, total, nil
}

// stockHoldings sums signed quantity per symbol and values at the latest
// trade price ≤ d. pfas carries no live market-data feed (spec.md §1
// Non-goals), so "latest known price" is the most recent trade price for
// that symbol, same fallback original_source's valuation services use
// when no separate price table is configured.
func (b *BalanceSheetService) stockHoldings(ctx context.Context, userID string, d time.Time) ([]domain.SystemHolding, decimal.Decimal, error) {
	rows, err := b.db.StockTradesUpTo(ctx, userID, d)
	if err != nil {
		return nil, decimal.Zero, err
	}
	type bucket struct {
		isin          string
		qty           decimal.Decimal
		latestPrice   decimal.Decimal
	}
	buckets := map[string]*bucket{}
	var order []string
	for _, r := range rows {
		bk, ok := buckets[r.Symbol]
		if !ok {
			bk = &bucket{isin: r.ISIN}
			buckets[r.Symbol] = bk
			order = append(order, r.Symbol)
		}
		if strings.EqualFold(r.TradeType, "SELL") {
			bk.qty = bk.qty.Sub(r.Quantity)
		} else {
			bk.qty = bk.qty.Add(r.Quantity)
		}
		bk.latestPrice = r.Price
	}

	var out []domain.SystemHolding
	total := decimal.Zero
	for _, symbol := range order {
		bk := buckets[symbol]
		if bk.qty.IsZero() {
			continue
		}
		marketValue := bk.qty.Mul(bk.latestPrice)
		total = total.Add(marketValue)
		out = append(out, domain.SystemHolding{
			AssetClass: domain.AssetStock, ISIN: bk.isin, Symbol: symbol, Name: symbol,
			Units: money.UnitsFromDecimal(bk.qty), MarketValue: money.MoneyFromDecimal(marketValue),
		})
	}
	return out, total, nil
}

// foreignHoldings values the latest foreign_holdings snapshot per symbol
// at its own as-of exchange rate, converting USD market value to INR.
func (b *BalanceSheetService) foreignHoldings(ctx context.Context, userID string, d time.Time) ([]domain.SystemHolding, decimal.Decimal, error) {
	rows, err := b.db.ForeignHoldingsAsOf(ctx, userID, d)
	if err != nil {
		return nil, decimal.Zero, err
	}
	var out []domain.SystemHolding
	total := decimal.Zero
	for _, r := range rows {
		inr := r.MarketValueUSD.Mul(r.FXRate)
		total = total.Add(inr)
		out = append(out, domain.SystemHolding{
			AssetClass: domain.AssetForeignStock, Symbol: r.Symbol, Name: r.Symbol,
			Units: money.UnitsFromDecimal(r.Units), MarketValue: money.MoneyFromDecimal(inr),
		})
	}
	return out, total, nil
}

// passbookHoldings reads the latest PPF/EPF/NPS balance_after ≤ d.
func (b *BalanceSheetService) passbookHoldings(ctx context.Context, userID string, d time.Time) ([]domain.SystemHolding, decimal.Decimal, error) {
	specs := []struct {
		table, column string
		assetClass    domain.AssetClass
	}{
		{"ppf_transactions", "account_number", domain.AssetPPF},
		{"epf_transactions", "uan", domain.AssetEPF},
		{"nps_transactions", "pran", domain.AssetNPS},
	}
	var out []domain.SystemHolding
	total := decimal.Zero
	for _, sp := range specs {
		account, balance, ok, err := b.db.LatestPassbookBalance(ctx, sp.table, sp.column, userID, d)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !ok {
			continue
		}
		total = total.Add(balance)
		out = append(out, domain.SystemHolding{
			AssetClass: sp.assetClass, Folio: account, Symbol: account, Name: string(sp.assetClass),
			Units: money.ZeroUnits, MarketValue: money.MoneyFromDecimal(balance),
		})
	}
	return out, total, nil
}

// bankHoldings reads the latest balance_after ≤ d for every (bank, account)
// pair.
func (b *BalanceSheetService) bankHoldings(ctx context.Context, userID string, d time.Time) ([]domain.SystemHolding, decimal.Decimal, error) {
	rows, err := b.db.BankBalancesAsOf(ctx, userID, d)
	if err != nil {
		return nil, decimal.Zero, err
	}
	var out []domain.SystemHolding
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Balance)
		out = append(out, domain.SystemHolding{
			AssetClass: domain.AssetBank, Folio: r.AccountNumber, Symbol: r.Bank, Name: r.Bank + " " + r.AccountNumber,
			Units: money.ZeroUnits, MarketValue: money.MoneyFromDecimal(r.Balance),
		})
	}
	return out, total, nil
}

// loanBalances reads the latest outstanding_after ≤ d per loan, per spec.md
// §4.9's "preferring latest liability_transactions.outstanding_after".
func (b *BalanceSheetService) loanBalances(ctx context.Context, userID string, d time.Time) ([]LoanBalance, decimal.Decimal, error) {
	rows, err := b.db.LiabilityTransactionsUpTo(ctx, userID, d)
	if err != nil {
		return nil, decimal.Zero, err
	}
	latest := map[string]LoanBalance{}
	var order []string
	for _, r := range rows {
		if _, ok := latest[r.LoanID]; !ok {
			order = append(order, r.LoanID)
		}
		latest[r.LoanID] = LoanBalance{LoanID: r.LoanID, Outstanding: money.MoneyFromDecimal(r.OutstandingAfter), AsOf: r.TxnDate}
	}
	total := decimal.Zero
	out := make([]LoanBalance, 0, len(order))
	for _, id := range order {
		lb := latest[id]
		total = total.Add(lb.Outstanding.Decimal())
		out = append(out, lb)
	}
	return out, total, nil
}
