package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pfas/advancetax"
	"pfas/bankintel"
	"pfas/costbasis"
	"pfas/domain"
	"pfas/golden"
	"pfas/income"
	"pfas/ingest"
	"pfas/ledger"
	"pfas/money"
	"pfas/parser"
	"pfas/parser/formats"
	"pfas/store"
	"pfas/taxrules"
	"pfas/txn"
	"pfas/valuation"
)

// standardChartOfAccounts is the account set every posting rule in
// ledger.PostingRules resolves against, the Go equivalent of the teacher's
// CreateStandardAccounts seeding step.
func standardChartOfAccounts() []domain.Account {
	def := []struct {
		code, name string
		typ        domain.AccountType
	}{
		{"1100", "Bank Accounts", domain.AccountAsset},
		{"1200", "Mutual Fund Holdings", domain.AccountAsset},
		{"1210", "Stock Holdings", domain.AccountAsset},
		{"1220", "Foreign Holdings", domain.AccountAsset},
		{"1230", "RSU/ESPP Holdings", domain.AccountAsset},
		{"1300", "PPF Balance", domain.AccountAsset},
		{"1310", "EPF Balance", domain.AccountAsset},
		{"2100", "Loans Payable", domain.AccountLiability},
		{"4100", "Salary Income", domain.AccountIncome},
		{"4200", "Dividend Income", domain.AccountIncome},
		{"4300", "Interest Income", domain.AccountIncome},
		{"4400", "Realized Capital Gains", domain.AccountIncome},
		{"4500", "Foreign Capital Gains", domain.AccountIncome},
		{"5100", "TDS Deducted", domain.AccountExpense},
		{"5200", "Loan Interest Expense", domain.AccountExpense},
		{"5300", "Realized Capital Losses", domain.AccountExpense},
		{"5400", "Foreign Capital Losses", domain.AccountExpense},
	}
	accounts := make([]domain.Account, 0, len(def))
	for _, d := range def {
		accounts = append(accounts, domain.Account{ID: uuid.New().String(), Code: d.code, Name: d.name, Type: d.typ})
	}
	return accounts
}

// bankDispatcher routes every ".csv" file whose name contains "bank" to
// the bank parser; the CAMS/Karvy/Zerodha/ICICI/NSDL/PPF readers share the
// same registry but this demo only exercises the bank statement path end
// to end, the way the teacher's demo exercises one representative flow
// per subsystem rather than every format.
func bankDispatcher(registry *parser.Registry) ingest.Dispatcher {
	return func(fileName string) (parser.Format, bool) {
		if strings.Contains(fileName, "bank") && strings.HasSuffix(fileName, ".csv") {
			return registry.Get("bank")
		}
		return nil, false
	}
}

func main() {
	fmt.Println("pfas — Personal Finance Aggregation & Reconciliation demo")
	fmt.Println("===========================================================")

	dbFile := "demo_pfas.db"
	os.Remove(dbFile)
	defer os.Remove(dbFile)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	db, err := store.Open(dbFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	defer db.Close()

	ctx := context.Background()
	userID := "demo-user"

	fmt.Println("\nStep 1: seeding user and chart of accounts")
	if err := db.WithTx(ctx, func(tx *store.Tx) error {
		if err := db.UpsertUser(ctx, tx, domain.User{ID: userID, Email: "demo@example.com", DisplayName: "Demo User", CreatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return db.SeedAccounts(ctx, tx, standardChartOfAccounts())
	}); err != nil {
		log.Fatal().Err(err).Msg("seeding")
	}
	fmt.Println("done: user + chart of accounts seeded")

	ledgerSvc, err := ledger.New(db)
	if err != nil {
		log.Fatal().Err(err).Msg("ledger")
	}
	costBasis := costbasis.New(db, domain.CostFIFO)
	txnSvc := txn.New(db, ledgerSvc)

	registry := parser.NewRegistry()
	registry.Register(&formats.BankParser{Reader: nil, Bank: "HDFC"})
	registry.Register(&formats.CAMSParser{Reader: nil})
	registry.Register(&formats.KarvyParser{Reader: nil})
	registry.Register(&formats.ZerodhaParser{Reader: nil})
	registry.Register(&formats.ICICIParser{Reader: nil})
	registry.Register(&formats.NSDLCASParser{Reader: nil})
	registry.Register(&formats.PPFParser{Reader: nil})

	bankClassifier := bankintel.NewKeywordClassifier()
	ingester := ingest.New(db, txnSvc, costBasis, bankDispatcher(registry), bankClassifier)

	fmt.Println("\nStep 2: ingesting a bank statement batch")
	bankCSV := "Date,Description,Debit,Credit,Balance\n" +
		"2024-04-05,SALARY CREDIT ACME CORP,,150000,150000\n" +
		"2024-05-01,SAVINGS INTEREST CREDIT,,850,150850\n" +
		"2024-05-10,ELECTRICITY BILL PAYMENT,2200,,148650\n"
	bankFormat, _ := registry.Get("bank")
	bankFormat.(*formats.BankParser).Reader = parser.NewCSVSheetReader(strings.NewReader(bankCSV))

	batch, err := ingester.IngestBatch(ctx, userID, []ingest.File{
		{Name: "hdfc_bank_apr2024.csv", Content: strings.NewReader(bankCSV)},
	}, false, false)
	if err != nil {
		log.Fatal().Err(err).Msg("ingest batch")
	}
	fmt.Printf("batch %s: %d/%d files succeeded, %d records posted\n", batch.BatchID, batch.FilesSuccess, batch.TotalFiles, batch.TotalRecords)

	fy := "2024-25"
	asOfDate, _ := time.Parse("2006-01-02", "2025-03-31")

	fmt.Println("\nStep 3: aggregating income and computing advance tax")
	taxRules := taxrules.New(db)
	incomeAgg := income.New(db, taxRules)
	calc := advancetax.New(db, incomeAgg, taxRules)

	computation, err := calc.Calculate(ctx, userID, fy, domain.RegimeNew, money.ZeroMoney)
	if err != nil {
		fmt.Printf("advance tax computation skipped: %v\n", err)
	} else {
		fmt.Printf("FY %s total tax liability: %s, balance payable: %s\n", fy, computation.TotalTaxLiability, computation.BalancePayable)
		for _, s := range advancetax.PaymentSchedule(computation.TotalTaxLiability) {
			fmt.Printf("  due %s (%s%%): %s\n", s.DueDate, s.Percent, s.Amount)
		}
	}

	fmt.Println("\nStep 4: valuation — balance sheet, cash flow, portfolio XIRR")
	balanceSheetSvc := valuation.NewBalanceSheetService(db)
	sheet, err := balanceSheetSvc.As(ctx, userID, asOfDate)
	if err != nil {
		fmt.Printf("balance sheet skipped: %v\n", err)
	} else {
		fmt.Printf("as of %s: %d holdings, %d loans, net worth %s\n", sheet.AsOf.Format("2006-01-02"), len(sheet.Holdings), len(sheet.Loans), sheet.NetWorth)
	}

	cashFlowSvc := valuation.NewCashFlowService(db)
	fyStart, fyEnd := fyBounds(fy)
	cashFlow, err := cashFlowSvc.For(ctx, userID, fy, fyStart, fyEnd)
	if err != nil {
		fmt.Printf("cash flow skipped: %v\n", err)
	} else {
		fmt.Printf("FY %s net operating cash flow: %s\n", fy, cashFlow.NetOperating)
	}

	portfolioSvc := valuation.NewPortfolioService(db)
	if xirr, err := portfolioSvc.MFXIRR(ctx, userID, asOfDate); err != nil {
		fmt.Printf("portfolio XIRR skipped: %v\n", err)
	} else {
		fmt.Printf("mutual fund XIRR: %.2f%% (converged=%v)\n", xirr.XIRR*100, xirr.Converged)
	}

	fmt.Println("\nStep 5: liability amortization")
	principal := money.MoneyFromInt(2500000)
	monthlyRate := decimal.NewFromFloat(0.0075) // 9% annual, monthly
	emi := valuation.EMI(principal, monthlyRate, 240)
	fmt.Printf("home loan EMI on %s @ 9%%/yr over 240 months: %s\n", principal, emi)

	fmt.Println("\nStep 6: golden-reference reconciliation")
	goldenRef := domain.GoldenReference{ID: uuid.New().String(), UserID: userID, Source: "NSDL_CAS", AsOfDate: asOfDate, ImportedAt: time.Now().UTC()}
	goldenHoldings := []domain.GoldenHolding{
		{ID: uuid.New().String(), GoldenRefID: goldenRef.ID, AssetClass: domain.AssetMFEquity, Folio: "FOLIO123", Name: "Acme Flexicap Fund", Units: money.UnitsFromDecimal(decimal.NewFromInt(1000)), MarketValue: money.MoneyFromInt(150000)},
	}
	if err := db.WithTx(ctx, func(tx *store.Tx) error {
		if err := db.InsertGoldenReference(ctx, tx, goldenRef); err != nil {
			return err
		}
		for _, h := range goldenHoldings {
			if err := db.InsertGoldenHolding(ctx, tx, h); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		log.Fatal().Err(err).Msg("seeding golden reference")
	}

	systemHoldings := []domain.SystemHolding{
		{AssetClass: domain.AssetMFEquity, Folio: "FOLIO123", Name: "Acme Flexicap Fund", Units: money.UnitsFromDecimal(decimal.NewFromInt(1000)), MarketValue: money.MoneyFromInt(149500)},
	}
	tol := domain.ToleranceConfig{
		AbsoluteTolerance: decimal.NewFromInt(100), PercentageTolerance: decimal.NewFromFloat(0.01),
		WarningThreshold: decimal.NewFromInt(500), ErrorThreshold: decimal.NewFromInt(2000), CriticalThreshold: decimal.NewFromInt(10000),
	}
	correlator := golden.NewCrossCorrelator(db)
	events, suspense, err := correlator.Reconcile(ctx, userID, goldenRef.ID, goldenHoldings, systemHoldings, tol, true)
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation")
	}
	fmt.Printf("reconciliation: %d events, %d suspense items opened\n", len(events), len(suspense))
	for _, e := range events {
		fmt.Printf("  %s: %s (diff %s)\n", e.Key, e.MatchResult, e.DiffValue)
	}

	suspenseMgr := golden.NewSuspenseManager(db)
	for _, item := range suspense {
		if err := suspenseMgr.Transition(ctx, userID, item.ID, domain.SuspenseOpen, domain.SuspenseInProgress, "investigating NAV mismatch"); err != nil {
			fmt.Printf("suspense transition failed: %v\n", err)
		}
	}

	scheduler := golden.NewScheduler(log)
	cfg := domain.ReconciliationConfig{Mode: domain.ReconScheduled, Frequency: "0 6 * * *", SuspenseEnabled: true, Tolerances: tol}
	if golden.ShouldSchedule(cfg) {
		if err := scheduler.Schedule(userID, cfg.Frequency, func(ctx context.Context, userID string) error {
			_, _, err := correlator.Reconcile(ctx, userID, goldenRef.ID, goldenHoldings, systemHoldings, tol, true)
			return err
		}); err != nil {
			fmt.Printf("scheduling reconciliation failed: %v\n", err)
		} else {
			fmt.Println("daily reconciliation scheduled at 06:00")
		}
	}

	fmt.Println("\nStep 7: bank-transaction categorization")
	for _, narration := range []string{"SALARY CREDIT ACME CORP", "ELECTRICITY BILL PAYMENT", "NEFT TRANSFER TO SAVINGS"} {
		category, err := bankClassifier.Classify(narration)
		if err != nil {
			fmt.Printf("  %q: classification failed: %v\n", narration, err)
			continue
		}
		fmt.Printf("  %q -> %s\n", narration, category)
	}

	fmt.Println("\ndemo complete")
}

func fyBounds(fy string) (time.Time, time.Time) {
	f, err := money.ParseFY(fy)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return f.Start(), f.End()
}
