// Package ledger is the Transaction Service's posting core: it turns a
// business event into a balanced double-entry Journal and persists it
// atomically, generalizing the teacher's PostingEngine
// (posting_engine.go) from a generic multi-currency ledger to the fixed
// Indian personal-finance Chart of Accounts spec.md §3/§4.2 describes.
package ledger

import (
	"context"

	"github.com/google/uuid"

	"pfas/domain"
	"pfas/store"
)

// ChartOfAccounts is the fixed, immutable-after-seeding tree spec.md §3
// requires. Codes follow the teacher's numeric convention (accounting.go's
// Account.Code) but the tree itself is domain-specific.
var ChartOfAccounts = []domain.Account{
	{Code: "1000", Name: "Assets", Type: domain.AccountAsset},
	{Code: "1100", Name: "Bank Accounts", Type: domain.AccountAsset},
	{Code: "1200", Name: "Mutual Fund Holdings", Type: domain.AccountAsset},
	{Code: "1210", Name: "Equity Holdings", Type: domain.AccountAsset},
	{Code: "1220", Name: "Foreign Holdings", Type: domain.AccountAsset},
	{Code: "1230", Name: "RSU/ESPP Holdings", Type: domain.AccountAsset},
	{Code: "1300", Name: "PPF Account", Type: domain.AccountAsset},
	{Code: "1310", Name: "EPF Account", Type: domain.AccountAsset},
	{Code: "1320", Name: "NPS Account", Type: domain.AccountAsset},
	{Code: "1400", Name: "Sovereign Gold Bonds", Type: domain.AccountAsset},

	{Code: "2000", Name: "Liabilities", Type: domain.AccountLiability},
	{Code: "2100", Name: "Home Loan Payable", Type: domain.AccountLiability},
	{Code: "2200", Name: "Personal Loan Payable", Type: domain.AccountLiability},

	{Code: "3000", Name: "Opening Balance Equity", Type: domain.AccountEquity},

	{Code: "4000", Name: "Income", Type: domain.AccountIncome},
	{Code: "4100", Name: "Salary Income", Type: domain.AccountIncome},
	{Code: "4200", Name: "Dividend Income", Type: domain.AccountIncome},
	{Code: "4300", Name: "Interest Income", Type: domain.AccountIncome},
	{Code: "4400", Name: "Short-Term Capital Gains", Type: domain.AccountIncome},
	{Code: "4500", Name: "Long-Term Capital Gains", Type: domain.AccountIncome},

	{Code: "5000", Name: "Expenses", Type: domain.AccountExpense},
	{Code: "5100", Name: "TDS Withheld", Type: domain.AccountExpense},
	{Code: "5200", Name: "Interest Paid on Loans", Type: domain.AccountExpense},
	{Code: "5300", Name: "Short-Term Capital Loss", Type: domain.AccountExpense},
	{Code: "5400", Name: "Long-Term Capital Loss", Type: domain.AccountExpense},
}

// SeedChartOfAccounts assigns IDs (parent links resolved by code match) and
// persists the tree. It is not idempotent: IDs are freshly generated on
// each call, so the ON CONFLICT(id) DO NOTHING in store.SeedAccounts never
// matches an existing row, and a second call fails on the accounts.code
// UNIQUE constraint. cmd/demo does not call it; it seeds its own chart
// through store.SeedAccounts.
func SeedChartOfAccounts(ctx context.Context, db *store.Storage) error {
	byCode := map[string]string{}
	seeded := make([]domain.Account, 0, len(ChartOfAccounts))
	for _, a := range ChartOfAccounts {
		a.ID = uuid.New().String()
		byCode[a.Code] = a.ID
		seeded = append(seeded, a)
	}
	for i, a := range seeded {
		if len(a.Code) > 2 {
			parentCode := a.Code[:2] + "00"
			if parentCode != a.Code {
				if pid, ok := byCode[parentCode]; ok {
					seeded[i].ParentID = pid
				}
			}
		}
	}
	return db.WithTx(ctx, func(tx *store.Tx) error {
		return db.SeedAccounts(ctx, tx, seeded)
	})
}
