package ledger

import "pfas/domain"

// Leg is one row of a posting rule: which account code a TxnKind's
// LegRole resolves to, and whether that leg is a debit or credit. This is
// the data-table spec.md §4.2 mandates in place of a hardcoded branch per
// transaction kind — adding a new TxnKind means adding a table row, not a
// new code path.
type Leg struct {
	Role        domain.LegRole
	AccountCode string
	Entry       domain.EntryType
}

// PostingRules maps each TxnKind to its legs. Each leg takes its amount from
// the caller's Posting with the same Role (principal, gain, tds); roles not
// present in a given posting call are simply skipped (e.g. LegGainCredit
// on a transaction with zero realized gain).
var PostingRules = map[domain.TxnKind][]Leg{
	domain.TxnStockBuy: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1210", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1100", Entry: domain.Credit},
	},
	domain.TxnStockSell: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1210", Entry: domain.Credit},
		{Role: domain.LegGainCredit, AccountCode: "4400", Entry: domain.Credit}, // every realized gain, short- or long-term; the split is recorded only in capital_gains_events
		{Role: domain.LegGainDebit, AccountCode: "5300", Entry: domain.Debit},
	},
	domain.TxnMFPurchase: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1200", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1100", Entry: domain.Credit},
	},
	domain.TxnMFRedemption: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1200", Entry: domain.Credit},
		{Role: domain.LegGainCredit, AccountCode: "4400", Entry: domain.Credit},
		{Role: domain.LegGainDebit, AccountCode: "5300", Entry: domain.Debit},
	},
	domain.TxnDividend: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "4200", Entry: domain.Credit},
		{Role: domain.LegTDSDebit, AccountCode: "5100", Entry: domain.Debit},
	},
	domain.TxnBankInterest: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "4300", Entry: domain.Credit},
	},
	domain.TxnSalaryCredit: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "4100", Entry: domain.Credit},
		{Role: domain.LegTDSDebit, AccountCode: "5100", Entry: domain.Debit},
	},
	domain.TxnRSUVest: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1230", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "4100", Entry: domain.Credit},
	},
	domain.TxnESPPPurchase: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1230", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1100", Entry: domain.Credit},
	},
	domain.TxnForeignSale: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1220", Entry: domain.Credit},
		{Role: domain.LegGainCredit, AccountCode: "4500", Entry: domain.Credit},
		{Role: domain.LegGainDebit, AccountCode: "5400", Entry: domain.Debit},
	},
	domain.TxnPPFContribution: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1300", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1100", Entry: domain.Credit},
	},
	domain.TxnEPFContribution: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1310", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "1100", Entry: domain.Credit},
	},
	domain.TxnLoanDisbursement: {
		{Role: domain.LegPrincipalDebit, AccountCode: "1100", Entry: domain.Debit},
		{Role: domain.LegPrincipalCredit, AccountCode: "2100", Entry: domain.Credit},
	},
	domain.TxnLoanEMI: {
		{Role: domain.LegPrincipalDebit, AccountCode: "2100", Entry: domain.Debit}, // principal component
		{Role: domain.LegGainDebit, AccountCode: "5200", Entry: domain.Debit},      // interest component
		{Role: domain.LegPrincipalCredit, AccountCode: "1100", Entry: domain.Credit},
	},
}
