package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pfas/bankintel"
	"pfas/costbasis"
	"pfas/domain"
	"pfas/ledger"
	"pfas/money"
	"pfas/parser"
	"pfas/store"
	"pfas/txn"
)

// dateLayouts covers the date renderings seen across CAMS/Karvy/Zerodha/
// ICICI/bank exports (original_source's parsers each hand-roll their own
// subset of these with pandas.to_datetime's format inference).
var dateLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006", "2-Jan-2006", "02-Jan-2006"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseDecimalField(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// applyRows routes every row a parser produced into the Transaction
// Service (or, for NSDL CAS holdings, the Golden-Reference store), within
// the batch's open tx, and returns how many it applied. A row whose date
// does not parse is skipped without recording a warning; any other error
// from a row is returned and fails the whole file.
func (in *Ingester) applyRows(ctx context.Context, tx *store.Tx, userID, fileHash, formatName string, result parser.ParseResult) (int, error) {
	applied := 0

	if formatName == "nsdlcas" && len(result.Holdings) > 0 {
		n, err := in.applyGoldenHoldings(ctx, tx, userID, result.Holdings)
		if err != nil {
			return applied, err
		}
		return n, nil
	}

	for i, row := range result.Transactions {
		ok, err := in.applyTransactionRow(ctx, tx, userID, fileHash, formatName, i, row)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

// applyTransactionRow maps one parsed transaction row to a ledger posting
// (and, for purchases, a new cost-basis lot), per the TxnKind/account
// routing spec.md §4.2 and §4.5 define.
func (in *Ingester) applyTransactionRow(ctx context.Context, tx *store.Tx, userID, fileHash, formatName string, idx int, row parser.Row) (bool, error) {
	naturalKey, _ := row.GetByAny("natural_key")

	switch formatName {
	case "cams", "karvy":
		return in.applyMFRow(ctx, tx, userID, fileHash, formatName, idx, row, naturalKey)
	case "zerodha":
		return in.applyZerodhaRow(ctx, tx, userID, fileHash, idx, row, naturalKey)
	case "icici":
		return in.applyICICIRow(ctx, tx, userID, fileHash, idx, row, naturalKey)
	case "ppf":
		return in.applyPPFRow(ctx, tx, userID, fileHash, idx, row, naturalKey)
	case "bank":
		return in.applyBankRow(ctx, tx, userID, fileHash, idx, row, naturalKey)
	default:
		return false, fmt.Errorf("no row mapping for format %q", formatName)
	}
}

// applyGoldenHoldings groups one NSDL CAS file's holding rows under a
// single GoldenReference header, the shape the Golden-Reference engine's
// cross correlator reads (spec.md §4.10 step 1), rather than the generic
// per-row AssetRecord upsert the transaction formats use.
func (in *Ingester) applyGoldenHoldings(ctx context.Context, tx *store.Tx, userID string, rows []parser.Row) (int, error) {
	now := time.Now().UTC()
	ref := domain.GoldenReference{
		ID: uuid.New().String(), UserID: userID, Source: "NSDL_CAS",
		AsOfDate: now, ImportedAt: now,
	}
	if err := in.db.InsertGoldenReference(ctx, tx, ref); err != nil {
		return 0, err
	}

	applied := 0
	for _, row := range rows {
		isin, _ := row.GetByAny("isin")
		folio, _ := row.GetByAny("folio")
		symbol, _ := row.GetByAny("symbol")
		unitsStr, _ := row.GetByAny("units")
		marketValueStr, _ := row.GetByAny("market_value")

		h := domain.GoldenHolding{
			ID: uuid.New().String(), GoldenRefID: ref.ID, AssetClass: domain.AssetMFEquity,
			ISIN: isin, Folio: folio, Symbol: symbol,
			Units:       money.UnitsFromDecimal(parseDecimalField(unitsStr)),
			MarketValue: money.MoneyFromDecimal(parseDecimalField(marketValueStr)),
		}
		if err := in.db.InsertGoldenHolding(ctx, tx, h); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// mfTxnKind classifies a CAMS/Karvy txn_type free-text field into a
// TxnKind, grounded on original_source/parsers/mf/cams.py's
// classify_transaction_type.
func mfTxnKind(txnType string, units decimal.Decimal) domain.TxnKind {
	lower := strings.ToLower(txnType)
	switch {
	case strings.Contains(lower, "dividend"):
		return domain.TxnDividend
	case strings.Contains(lower, "redeem"), strings.Contains(lower, "repurchase"):
		return domain.TxnMFRedemption
	case strings.Contains(lower, "purchase"), strings.Contains(lower, "sip"), strings.Contains(lower, "switch in"):
		return domain.TxnMFPurchase
	case units.IsNegative():
		return domain.TxnMFRedemption
	default:
		return domain.TxnMFPurchase
	}
}

// recordCapitalGainsEvent persists the STCG/LTCG classification of a
// realized sale so the Income Aggregator's source-table fallback doesn't
// need to re-derive it from the ledger (posting_rules.go routes every
// realized gain through one GAIN_CREDIT/GAIN_DEBIT leg regardless of
// holding period).
func (in *Ingester) recordCapitalGainsEvent(ctx context.Context, tx *store.Tx, userID, journalID string, assetClass domain.AssetClass, symbol string, saleDate time.Time, costResult costbasis.Result, source string) error {
	subClass := domain.SubSTCG
	if costResult.IsLongTerm {
		subClass = domain.SubLTCG
	}
	return in.db.InsertCapitalGainsEvent(ctx, tx, store.CapitalGainsEvent{
		ID: uuid.New().String(), UserID: userID, JournalID: journalID,
		FY: money.FYFromDate(saleDate).String(), AssetClass: assetClass,
		SubClassification: subClass, Symbol: symbol, SaleDate: saleDate,
		GrossGain: costResult.RealizedGain.Decimal(), ExemptionAmount: decimal.Zero,
		IsGrandfathered: costResult.IsGrandfathered, Source: source,
	})
}

func (in *Ingester) applyMFRow(ctx context.Context, tx *store.Tx, userID, fileHash, formatName string, idx int, row parser.Row, naturalKey string) (bool, error) {
	folio, _ := row.GetByAny("folio")
	scheme, _ := row.GetByAny("scheme")
	dateStr, _ := row.GetByAny("date")
	amountStr, _ := row.GetByAny("amount")
	unitsStr, _ := row.GetByAny("units")
	txnType, _ := row.GetByAny("txn_type")

	date, err := parseDate(dateStr)
	if err != nil {
		return false, nil // malformed row: skip, don't fail the file
	}
	amount := money.MoneyFromDecimal(parseDecimalField(amountStr).Abs())
	unitsDec := parseDecimalField(unitsStr)
	units := money.UnitsFromDecimal(unitsDec.Abs())
	kind := mfTxnKind(txnType, unitsDec)
	symbol := folio + "|" + scheme

	idemKey := txn.BuildIdempotencyKey(string(kind), fileHash, idx, naturalKey)
	assetRecord := domain.AssetRecord{
		Table:      "mf_transactions",
		NaturalKey: naturalKey,
		Data: map[string]any{
			"id": uuid.New().String(), "folio": folio, "scheme": scheme,
			"asset_class": string(domain.AssetMFEquity), "txn_date": date,
			"txn_type": txnType, "amount": amount.String(), "units": units.String(),
			"source": formatName,
		},
		OnConflict: domain.ConflictIgnore,
	}

	switch kind {
	case domain.TxnMFPurchase:
		if _, err := in.costBasis.RecordPurchase(ctx, tx, userID, domain.AssetMFEquity, symbol, date, units, amount, naturalKey, "INR"); err != nil {
			return false, err
		}
		res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
			UserID: userID, Kind: kind, TxnDate: date, Description: "MF purchase " + scheme,
			Source: formatName, IdempotencyKey: idemKey, ReferenceType: "mf_transactions",
			Postings:     []ledger.Posting{{Role: domain.LegPrincipalDebit, Amount: amount}, {Role: domain.LegPrincipalCredit, Amount: amount}},
			AssetRecords: []domain.AssetRecord{assetRecord},
		})
		return !res.IsDuplicate, err
	case domain.TxnMFRedemption:
		costResult, err := in.costBasis.CalculateCostBasis(ctx, tx, userID, domain.AssetMFEquity, symbol, units, date, &amount, nil)
		if err != nil {
			return false, err
		}
		postings := []ledger.Posting{
			{Role: domain.LegPrincipalDebit, Amount: amount},
			{Role: domain.LegPrincipalCredit, Amount: costResult.TotalCostBasis},
		}
		if costResult.RealizedGain.IsPositive() {
			postings = append(postings, ledger.Posting{Role: domain.LegGainCredit, Amount: costResult.RealizedGain})
		} else if costResult.RealizedGain.IsNegative() {
			postings = append(postings, ledger.Posting{Role: domain.LegGainDebit, Amount: costResult.RealizedGain.Neg()})
		}
		if err := in.costBasis.DepleteLots(ctx, tx, userID, domain.AssetMFEquity, symbol, costResult); err != nil {
			return false, err
		}
		res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
			UserID: userID, Kind: kind, TxnDate: date, Description: "MF redemption " + scheme,
			Source: formatName, IdempotencyKey: idemKey, ReferenceType: "mf_transactions",
			Postings: postings, AssetRecords: []domain.AssetRecord{assetRecord},
		})
		if err != nil || res.IsDuplicate {
			return !res.IsDuplicate, err
		}
		if err := in.recordCapitalGainsEvent(ctx, tx, userID, res.JournalID, domain.AssetMFEquity, symbol, date, costResult, formatName); err != nil {
			return false, err
		}
		return true, nil
	default: // dividend
		res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
			UserID: userID, Kind: kind, TxnDate: date, Description: "MF dividend " + scheme,
			Source: formatName, IdempotencyKey: idemKey, ReferenceType: "mf_transactions",
			Postings:     []ledger.Posting{{Role: domain.LegPrincipalDebit, Amount: amount}, {Role: domain.LegPrincipalCredit, Amount: amount}},
			AssetRecords: []domain.AssetRecord{assetRecord},
		})
		return !res.IsDuplicate, err
	}
}

func (in *Ingester) applyZerodhaRow(ctx context.Context, tx *store.Tx, userID, fileHash string, idx int, row parser.Row, naturalKey string) (bool, error) {
	symbol, _ := row.GetByAny("symbol")
	tradeDateStr, _ := row.GetByAny("trade_date")
	tradeType, _ := row.GetByAny("trade_type")
	quantityStr, _ := row.GetByAny("quantity")
	priceStr, _ := row.GetByAny("price")

	tradeDate, err := parseDate(tradeDateStr)
	if err != nil {
		return false, nil
	}
	quantity := parseDecimalField(quantityStr).Abs()
	price := parseDecimalField(priceStr)
	amount := money.MoneyFromDecimal(quantity.Mul(price))
	units := money.UnitsFromDecimal(quantity)

	isBuy := strings.Contains(strings.ToLower(tradeType), "buy")
	kind := domain.TxnStockSell
	if isBuy {
		kind = domain.TxnStockBuy
	}
	idemKey := txn.BuildIdempotencyKey(string(kind), fileHash, idx, naturalKey)
	assetRecord := domain.AssetRecord{
		Table:      "stock_trades",
		NaturalKey: naturalKey,
		Data: map[string]any{
			"id": uuid.New().String(), "symbol": symbol, "trade_type": tradeType,
			"trade_date": tradeDate, "quantity": units.String(), "price": price.StringFixed(2),
			"source": "zerodha",
		},
		OnConflict: domain.ConflictIgnore,
	}

	if isBuy {
		if _, err := in.costBasis.RecordPurchase(ctx, tx, userID, domain.AssetStock, symbol, tradeDate, units, amount, naturalKey, "INR"); err != nil {
			return false, err
		}
		res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
			UserID: userID, Kind: kind, TxnDate: tradeDate, Description: "Stock buy " + symbol,
			Source: "zerodha", IdempotencyKey: idemKey, ReferenceType: "stock_trades",
			Postings:     []ledger.Posting{{Role: domain.LegPrincipalDebit, Amount: amount}, {Role: domain.LegPrincipalCredit, Amount: amount}},
			AssetRecords: []domain.AssetRecord{assetRecord},
		})
		return !res.IsDuplicate, err
	}

	costResult, err := in.costBasis.CalculateCostBasis(ctx, tx, userID, domain.AssetStock, symbol, units, tradeDate, &amount, nil)
	if err != nil {
		return false, err
	}
	postings := []ledger.Posting{
		{Role: domain.LegPrincipalDebit, Amount: amount},
		{Role: domain.LegPrincipalCredit, Amount: costResult.TotalCostBasis},
	}
	if costResult.RealizedGain.IsPositive() {
		postings = append(postings, ledger.Posting{Role: domain.LegGainCredit, Amount: costResult.RealizedGain})
	} else if costResult.RealizedGain.IsNegative() {
		postings = append(postings, ledger.Posting{Role: domain.LegGainDebit, Amount: costResult.RealizedGain.Neg()})
	}
	if err := in.costBasis.DepleteLots(ctx, tx, userID, domain.AssetStock, symbol, costResult); err != nil {
		return false, err
	}
	res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
		UserID: userID, Kind: kind, TxnDate: tradeDate, Description: "Stock sell " + symbol,
		Source: "zerodha", IdempotencyKey: idemKey, ReferenceType: "stock_trades",
		Postings: postings, AssetRecords: []domain.AssetRecord{assetRecord},
	})
	if err != nil || res.IsDuplicate {
		return !res.IsDuplicate, err
	}
	if err := in.recordCapitalGainsEvent(ctx, tx, userID, res.JournalID, domain.AssetStock, symbol, tradeDate, costResult, "zerodha"); err != nil {
		return false, err
	}
	return true, nil
}

// applyICICIRow records an ICICI Direct capital-gains statement row into
// stock_trades as a reference-only row (no journal leg): these statements
// are the broker's own pre-computed gain report, not the source trade —
// the trade itself comes from the broker's tradebook (e.g. Zerodha) — so
// this just preserves the RTA's figures for the Golden-Reference engine to
// cross-check against.
func (in *Ingester) applyICICIRow(ctx context.Context, tx *store.Tx, userID, fileHash string, idx int, row parser.Row, naturalKey string) (bool, error) {
	symbol, _ := row.GetByAny("symbol")
	saleDateStr, _ := row.GetByAny("sale_date")
	purchaseDateStr, _ := row.GetByAny("purchase_date")
	quantityStr, _ := row.GetByAny("quantity")

	saleDate, err := parseDate(saleDateStr)
	if err != nil {
		return false, nil
	}
	var purchaseDate *time.Time
	if pd, err := parseDate(purchaseDateStr); err == nil {
		purchaseDate = &pd
	}

	idemKey := txn.BuildIdempotencyKey("ICICI_GAIN_REPORT", fileHash, idx, naturalKey)
	res, err := in.txnSvc.RecordAssetOnlyTx(ctx, tx, userID, []domain.AssetRecord{{
		Table:      "stock_trades",
		NaturalKey: naturalKey,
		Data: map[string]any{
			"id": uuid.New().String(), "symbol": symbol, "trade_type": "SELL",
			"trade_date": saleDate, "purchase_date": purchaseDate,
			"quantity": parseDecimalField(quantityStr).Abs().StringFixed(4),
			"price":    "0", "source": "icici",
		},
		OnConflict: domain.ConflictIgnore,
	}}, idemKey, "icici")
	return !res.IsDuplicate, err
}

func (in *Ingester) applyPPFRow(ctx context.Context, tx *store.Tx, userID, fileHash string, idx int, row parser.Row, naturalKey string) (bool, error) {
	account, _ := row.GetByAny("account_number")
	dateStr, _ := row.GetByAny("date")
	amountStr, _ := row.GetByAny("amount")
	txnType, _ := row.GetByAny("txn_type")

	date, err := parseDate(dateStr)
	if err != nil {
		return false, nil
	}
	amount := money.MoneyFromDecimal(parseDecimalField(amountStr).Abs())
	idemKey := txn.BuildIdempotencyKey(string(domain.TxnPPFContribution), fileHash, idx, naturalKey)

	res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
		UserID: userID, Kind: domain.TxnPPFContribution, TxnDate: date, Description: "PPF " + txnType,
		Source: "ppf", IdempotencyKey: idemKey, ReferenceType: "ppf_transactions",
		Postings: []ledger.Posting{{Role: domain.LegPrincipalDebit, Amount: amount}, {Role: domain.LegPrincipalCredit, Amount: amount}},
		AssetRecords: []domain.AssetRecord{{
			Table:      "ppf_transactions",
			NaturalKey: naturalKey,
			Data: map[string]any{
				"id": uuid.New().String(), "account_number": account,
				"txn_date": date, "txn_type": txnType, "amount": amount.String(),
			},
			OnConflict: domain.ConflictIgnore,
		}},
	})
	return !res.IsDuplicate, err
}

func (in *Ingester) applyBankRow(ctx context.Context, tx *store.Tx, userID, fileHash string, idx int, row parser.Row, naturalKey string) (bool, error) {
	dateStr, _ := row.GetByAny("date")
	description, _ := row.GetByAny("description")
	debitStr, _ := row.GetByAny("debit")
	creditStr, _ := row.GetByAny("credit")

	date, err := parseDate(dateStr)
	if err != nil {
		return false, nil
	}
	// The parse stage leaves the user component of the natural key blank
	// (spec.md §4.5: it doesn't know which user the file belongs to); the
	// ingester namespaces the final key by user now that it does, since the
	// key is a one-way SHA-256 digest that cannot be recomputed after the
	// fact without re-reading the row.
	userKeyedNaturalKey := userID + ":" + naturalKey

	category, err := in.bankClassifier.Classify(description)
	if err != nil {
		return false, err
	}

	credit := parseDecimalField(creditStr)
	assetRecord := domain.AssetRecord{
		Table:      "bank_transactions",
		NaturalKey: userKeyedNaturalKey,
		Data: map[string]any{
			"id": uuid.New().String(), "bank": "unknown", "txn_date": date,
			"raw_description": description, "category": string(category),
			"withdrawal": debitStr, "deposit": creditStr,
		},
		OnConflict: domain.ConflictIgnore,
	}

	if credit.IsPositive() {
		amount := money.MoneyFromDecimal(credit)
		idemKey := txn.BuildIdempotencyKey(string(domain.TxnBankInterest), fileHash, idx, userKeyedNaturalKey)
		kind := domain.TxnBankInterest
		if category == bankintel.CategorySalary {
			kind = domain.TxnSalaryCredit
		}
		res, err := in.txnSvc.RecordTx(ctx, tx, txn.RecordInput{
			UserID: userID, Kind: kind, TxnDate: date, Description: description,
			Source: "bank", IdempotencyKey: idemKey, ReferenceType: "bank_transactions",
			Postings:     []ledger.Posting{{Role: domain.LegPrincipalDebit, Amount: amount}, {Role: domain.LegPrincipalCredit, Amount: amount}},
			AssetRecords: []domain.AssetRecord{assetRecord},
		})
		return !res.IsDuplicate, err
	}

	// Debits (outflows) are not themselves taxable events; record as a
	// reference row only so the Golden-Reference engine can still match it.
	idemKey := txn.BuildIdempotencyKey("BANK_DEBIT", fileHash, idx, userKeyedNaturalKey)
	res, err := in.txnSvc.RecordAssetOnlyTx(ctx, tx, userID, []domain.AssetRecord{assetRecord}, idemKey, "bank")
	if err != nil {
		return false, err
	}
	return !res.IsDuplicate, nil
}
