package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
)

// MFTransactionRow is one raw mf_transactions row as of a cutoff date, the
// Balance Sheet's MF-holdings input (spec.md §4.9). units/amount/nav are
// always non-negative; valuation derives the sign from txn_type keywords
// (mfTxnSign in valuation/balancesheet.go).
type MFTransactionRow struct {
	Folio, Scheme, AssetClass, TxnType string
	TxnDate                            time.Time
	Amount, Units, NAV                 decimal.Decimal
}

func (s *Storage) MFTransactionsUpTo(ctx context.Context, userID string, asOf time.Time) ([]MFTransactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT folio, scheme, asset_class, txn_type, txn_date, amount, units, nav
		FROM mf_transactions WHERE user_id = ? AND txn_date <= ? ORDER BY folio, scheme, txn_date
	`, userID, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying mf transactions", err)
	}
	defer rows.Close()

	var out []MFTransactionRow
	for rows.Next() {
		var r MFTransactionRow
		var amountStr, unitsStr, navStr string
		if err := rows.Scan(&r.Folio, &r.Scheme, &r.AssetClass, &r.TxnType, &r.TxnDate, &amountStr, &unitsStr, &navStr); err != nil {
			return nil, domain.WrapStorageError("scanning mf transaction", err)
		}
		r.Amount, _ = decimal.NewFromString(amountStr)
		r.Units, _ = decimal.NewFromString(unitsStr)
		r.NAV, _ = decimal.NewFromString(navStr)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating mf transactions", err)
	}
	return out, nil
}

// StockTradeRow is one raw stock_trades row, the Balance Sheet's
// stock-holdings input.
type StockTradeRow struct {
	Symbol, ISIN, TradeType string
	TradeDate               time.Time
	Quantity, Price         decimal.Decimal
}

func (s *Storage) StockTradesUpTo(ctx context.Context, userID string, asOf time.Time) ([]StockTradeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, isin, trade_type, trade_date, quantity, price
		FROM stock_trades WHERE user_id = ? AND trade_date <= ? ORDER BY symbol, trade_date
	`, userID, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying stock trades", err)
	}
	defer rows.Close()

	var out []StockTradeRow
	for rows.Next() {
		var r StockTradeRow
		var qtyStr, priceStr string
		if err := rows.Scan(&r.Symbol, &r.ISIN, &r.TradeType, &r.TradeDate, &qtyStr, &priceStr); err != nil {
			return nil, domain.WrapStorageError("scanning stock trade", err)
		}
		r.Quantity, _ = decimal.NewFromString(qtyStr)
		r.Price, _ = decimal.NewFromString(priceStr)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating stock trades", err)
	}
	return out, nil
}

// LatestPassbookBalance reads the most recent balance_after ≤ asOf from a
// passbook-style table (ppf_transactions, epf_transactions,
// nps_transactions), all of which share the same (account column,
// txn_date, balance_after) shape. table/accountColumn are always literal
// constants at call sites.
func (s *Storage) LatestPassbookBalance(ctx context.Context, table, accountColumn, userID string, asOf time.Time) (account string, balance decimal.Decimal, ok bool, err error) {
	query := "SELECT " + accountColumn + ", balance_after FROM " + table +
		" WHERE user_id = ? AND txn_date <= ? ORDER BY txn_date DESC LIMIT 1"
	var balStr string
	err = s.db.QueryRowContext(ctx, query, userID, asOf).Scan(&account, &balStr)
	if err == sql.ErrNoRows {
		return "", decimal.Zero, false, nil
	}
	if err != nil {
		return "", decimal.Zero, false, domain.WrapStorageError("reading latest "+table+" balance", err)
	}
	balance, err = decimal.NewFromString(balStr)
	if err != nil {
		return "", decimal.Zero, false, domain.WrapStorageError("parsing "+table+" balance", err)
	}
	return account, balance, true, nil
}

// BankBalancesAsOf returns the latest balance_after ≤ asOf per (bank,
// account_number) pair.
type BankBalance struct {
	Bank, AccountNumber string
	Balance             decimal.Decimal
	AsOf                time.Time
}

func (s *Storage) BankBalancesAsOf(ctx context.Context, userID string, asOf time.Time) ([]BankBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bank, account_number, balance_after, txn_date FROM bank_transactions
		WHERE user_id = ? AND txn_date <= ?
		ORDER BY bank, account_number, txn_date
	`, userID, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying bank transactions", err)
	}
	defer rows.Close()

	latest := map[[2]string]*BankBalance{}
	var order [][2]string
	for rows.Next() {
		var bank, acct, balStr string
		var date time.Time
		if err := rows.Scan(&bank, &acct, &balStr, &date); err != nil {
			return nil, domain.WrapStorageError("scanning bank transaction", err)
		}
		bal, err := decimal.NewFromString(balStr)
		if err != nil {
			return nil, domain.WrapStorageError("parsing bank balance", err)
		}
		key := [2]string{bank, acct}
		if _, ok := latest[key]; !ok {
			order = append(order, key)
		}
		latest[key] = &BankBalance{Bank: bank, AccountNumber: acct, Balance: bal, AsOf: date}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating bank transactions", err)
	}
	out := make([]BankBalance, 0, len(order))
	for _, k := range order {
		out = append(out, *latest[k])
	}
	return out, nil
}

// ForeignHoldingRow is the latest foreign_holdings snapshot per symbol ≤
// asOf.
type ForeignHoldingRow struct {
	Symbol                       string
	Units, MarketValueUSD, FXRate decimal.Decimal
	AsOfDate                     time.Time
}

func (s *Storage) ForeignHoldingsAsOf(ctx context.Context, userID string, asOf time.Time) ([]ForeignHoldingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, units, market_value_usd, exchange_rate, as_of_date FROM foreign_holdings
		WHERE user_id = ? AND as_of_date <= ? ORDER BY symbol, as_of_date
	`, userID, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying foreign holdings", err)
	}
	defer rows.Close()

	latest := map[string]*ForeignHoldingRow{}
	var order []string
	for rows.Next() {
		var r ForeignHoldingRow
		var unitsStr, mvStr, fxStr string
		if err := rows.Scan(&r.Symbol, &unitsStr, &mvStr, &fxStr, &r.AsOfDate); err != nil {
			return nil, domain.WrapStorageError("scanning foreign holding", err)
		}
		r.Units, _ = decimal.NewFromString(unitsStr)
		r.MarketValueUSD, _ = decimal.NewFromString(mvStr)
		r.FXRate, _ = decimal.NewFromString(fxStr)
		if _, ok := latest[r.Symbol]; !ok {
			order = append(order, r.Symbol)
		}
		cp := r
		latest[r.Symbol] = &cp
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating foreign holdings", err)
	}
	out := make([]ForeignHoldingRow, 0, len(order))
	for _, sym := range order {
		out = append(out, *latest[sym])
	}
	return out, nil
}

// LiabilityTransactionRow is one raw liability_transactions row.
type LiabilityTransactionRow struct {
	LoanID, TxnType                          string
	TxnDate                                  time.Time
	PrincipalComponent, InterestComponent    decimal.Decimal
	OutstandingAfter                         decimal.Decimal
}

func (s *Storage) LiabilityTransactionsUpTo(ctx context.Context, userID string, asOf time.Time) ([]LiabilityTransactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT loan_id, txn_type, txn_date, principal_component, interest_component, outstanding_after
		FROM liability_transactions WHERE user_id = ? AND txn_date <= ? ORDER BY loan_id, txn_date
	`, userID, asOf)
	if err != nil {
		return nil, domain.WrapStorageError("querying liability transactions", err)
	}
	defer rows.Close()

	var out []LiabilityTransactionRow
	for rows.Next() {
		var r LiabilityTransactionRow
		var principal, interest, outstanding string
		if err := rows.Scan(&r.LoanID, &r.TxnType, &r.TxnDate, &principal, &interest, &outstanding); err != nil {
			return nil, domain.WrapStorageError("scanning liability transaction", err)
		}
		r.PrincipalComponent, _ = decimal.NewFromString(principal)
		r.InterestComponent, _ = decimal.NewFromString(interest)
		r.OutstandingAfter, _ = decimal.NewFromString(outstanding)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating liability transactions", err)
	}
	return out, nil
}

// BankTransactionRow is one raw bank_transactions row within a date window,
// the Cash Flow statement's classification input (spec.md §4.9).
type BankTransactionRow struct {
	Bank, RawDescription       string
	TxnDate                    time.Time
	Withdrawal, Deposit        decimal.Decimal
}

func (s *Storage) BankTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]BankTransactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bank, raw_description, txn_date, withdrawal, deposit FROM bank_transactions
		WHERE user_id = ? AND txn_date BETWEEN ? AND ? ORDER BY txn_date
	`, userID, from, to)
	if err != nil {
		return nil, domain.WrapStorageError("querying bank transactions", err)
	}
	defer rows.Close()

	var out []BankTransactionRow
	for rows.Next() {
		var r BankTransactionRow
		var w, d string
		if err := rows.Scan(&r.Bank, &r.RawDescription, &r.TxnDate, &w, &d); err != nil {
			return nil, domain.WrapStorageError("scanning bank transaction", err)
		}
		r.Withdrawal, _ = decimal.NewFromString(w)
		r.Deposit, _ = decimal.NewFromString(d)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating bank transactions", err)
	}
	return out, nil
}
