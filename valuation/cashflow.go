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

// CashFlowActivity is the three-way classification spec.md §4.9 names.
type CashFlowActivity string

const (
	ActivityOperating CashFlowActivity = "OPERATING"
	ActivityInvesting CashFlowActivity = "INVESTING"
	ActivityFinancing CashFlowActivity = "FINANCING"
)

// CashFlowRule maps a narration keyword to an activity/category bucket,
// the rule table spec.md §4.9 describes. A rule carries no direction: each
// row's deposit counts as inflow and its withdrawal as outflow.
type CashFlowRule struct {
	Keyword  string
	Activity CashFlowActivity
	Category string
}

// DefaultCashFlowRules classifies the common Indian-retail narrations,
// grounded on original_source/services/valuation/cash_flow_service.py's
// CATEGORY_RULES table.
var DefaultCashFlowRules = []CashFlowRule{
	{"salary", ActivityOperating, "Salary"},
	{"interest", ActivityOperating, "Interest Income"},
	{"dividend", ActivityOperating, "Dividend Income"},
	{"rent", ActivityOperating, "Rent"},
	{"mutual fund", ActivityInvesting, "Mutual Fund"},
	{"mf ", ActivityInvesting, "Mutual Fund"},
	{"zerodha", ActivityInvesting, "Equity Trading"},
	{"stock", ActivityInvesting, "Equity Trading"},
	{"ppf", ActivityInvesting, "PPF"},
	{"nps", ActivityInvesting, "NPS"},
	{"emi", ActivityFinancing, "Loan EMI"},
	{"loan", ActivityFinancing, "Loan"},
	{"credit card", ActivityFinancing, "Credit Card"},
}

// CashFlowBucket is one category's net movement within the FY window.
type CashFlowBucket struct {
	Activity CashFlowActivity
	Category string
	Inflow   money.Money
	Outflow  money.Money
}

// CashFlowStatement is the Cash Flow report spec.md §4.9 names.
type CashFlowStatement struct {
	FY            string
	Buckets       []CashFlowBucket
	OpeningCash   money.Money
	ClosingCash   money.Money
	NetOperating  money.Money
	NetInvesting  money.Money
	NetFinancing  money.Money
}

type CashFlowService struct {
	db            *store.Storage
	balanceSheets *BalanceSheetService
	rules         []CashFlowRule
}

func NewCashFlowService(db *store.Storage) *CashFlowService {
	return &CashFlowService{db: db, balanceSheets: NewBalanceSheetService(db), rules: DefaultCashFlowRules}
}

func (c *CashFlowService) classify(narration string) (CashFlowActivity, string) {
	lower := strings.ToLower(narration)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Activity, r.Category
		}
	}
	return ActivityOperating, "Uncategorized"
}

// For computes the Cash Flow statement for (userID, fy), per spec.md §4.9:
// classify every bank transaction in the FY window, bucket by
// (activity, category), and pair with opening/closing cash from the
// Balance Sheet at the FY boundaries.
func (c *CashFlowService) For(ctx context.Context, userID, fy string, start, end time.Time) (CashFlowStatement, error) {
	rows, err := c.db.BankTransactionsBetween(ctx, userID, start, end)
	if err != nil {
		return CashFlowStatement{}, err
	}

	type key struct {
		activity CashFlowActivity
		category string
	}
	totals := map[key]*CashFlowBucket{}
	var order []key
	netByActivity := map[CashFlowActivity]decimal.Decimal{}

	for _, r := range rows {
		activity, category := c.classify(r.RawDescription)
		k := key{activity, category}
		bk, ok := totals[k]
		if !ok {
			bk = &CashFlowBucket{Activity: activity, Category: category}
			totals[k] = bk
			order = append(order, k)
		}
		bk.Inflow = bk.Inflow.Add(money.MoneyFromDecimal(r.Deposit))
		bk.Outflow = bk.Outflow.Add(money.MoneyFromDecimal(r.Withdrawal))
		netByActivity[activity] = netByActivity[activity].Add(r.Deposit).Sub(r.Withdrawal)
	}

	buckets := make([]CashFlowBucket, 0, len(order))
	for _, k := range order {
		buckets = append(buckets, *totals[k])
	}

	openingSheet, err := c.balanceSheets.As(ctx, userID, start.AddDate(0, 0, -1))
	if err != nil {
		return CashFlowStatement{}, err
	}
	closingSheet, err := c.balanceSheets.As(ctx, userID, end)
	if err != nil {
		return CashFlowStatement{}, err
	}

	return CashFlowStatement{
		FY: fy, Buckets: buckets,
		OpeningCash: bankCashOf(openingSheet), ClosingCash: bankCashOf(closingSheet),
		NetOperating: money.MoneyFromDecimal(netByActivity[ActivityOperating]),
		NetInvesting: money.MoneyFromDecimal(netByActivity[ActivityInvesting]),
		NetFinancing: money.MoneyFromDecimal(netByActivity[ActivityFinancing]),
	}, nil
}

func bankCashOf(sheet BalanceSheet) money.Money {
	total := decimal.Zero
	for _, h := range sheet.Holdings {
		if h.AssetClass == domain.AssetBank {
			total = total.Add(h.MarketValue.Decimal())
		}
	}
	return money.MoneyFromDecimal(total)
}
