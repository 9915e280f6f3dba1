package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pfas/domain"
	"pfas/money"
	"pfas/store"
)

// Posting is one leg amount keyed by role, the caller-supplied input to
// Post: e.g. a stock sale supplies PRINCIPAL_DEBIT/PRINCIPAL_CREDIT (sale
// proceeds / units sold at cost) plus GAIN_CREDIT or GAIN_DEBIT depending
// on whether the sale produced a gain or a loss.
type Posting struct {
	Role   domain.LegRole
	Amount money.Money
}

// Ledger is the Transaction Service's posting core, generalizing the
// teacher's PostingEngine (posting_engine.go): ValidateTransaction +
// PostTransaction collapsed into one Post call since pfas always builds
// balanced postings from the rules table rather than accepting arbitrary
// caller-supplied entries.
type Ledger struct {
	db   *store.Storage
	log  zerolog.Logger
	coa  map[string]domain.Account // by code
}

func New(db *store.Storage) (*Ledger, error) {
	l := &Ledger{db: db, log: db.Logger().With().Str("component", "ledger").Logger(), coa: map[string]domain.Account{}}
	return l, nil
}

func (l *Ledger) resolveAccount(ctx context.Context, code string) (domain.Account, error) {
	if a, ok := l.coa[code]; ok {
		return a, nil
	}
	a, err := l.db.GetAccountByCode(ctx, code)
	if err != nil {
		return domain.Account{}, err
	}
	l.coa[code] = a
	return a, nil
}

// Post builds a balanced Journal for kind from postings and persists it
// inside its own transaction, returning the existing journal unchanged if
// idempotencyKey was already recorded for this user (spec.md §4.4's
// replay-is-a-no-op rule, which the teacher's posting_engine.go does not
// itself implement but which event_store.go's "DeduplicationKey" concept
// grounds).
func (l *Ledger) Post(ctx context.Context, userID string, kind domain.TxnKind, txnDate time.Time, description, source, idempotencyKey, referenceType string, postings []Posting) (domain.Journal, error) {
	var j domain.Journal
	err := l.db.WithTx(ctx, func(tx *store.Tx) error {
		posted, err := l.PostTx(ctx, tx, userID, kind, txnDate, description, source, idempotencyKey, referenceType, postings)
		if err != nil {
			return err
		}
		j = posted
		return nil
	})
	if err != nil {
		return domain.Journal{}, err
	}
	l.log.Debug().Str("journal_id", j.ID).Str("kind", string(kind)).Msg("posted journal")
	return j, nil
}

// PostTx is Post's transaction-scoped core, for callers (the Batch
// Ingester) that already hold the store's single write transaction and
// would deadlock opening a nested one (spec.md §5's single-writer model).
// It re-checks idempotency against the open tx itself, so replaying an
// already-recorded idempotencyKey is a no-op even mid-batch.
func (l *Ledger) PostTx(ctx context.Context, tx *store.Tx, userID string, kind domain.TxnKind, txnDate time.Time, description, source, idempotencyKey, referenceType string, postings []Posting) (domain.Journal, error) {
	if existing, found, err := l.db.FindJournalByIdempotencyKey(ctx, tx, userID, idempotencyKey); err != nil {
		return domain.Journal{}, err
	} else if found {
		return existing, nil
	}

	rules, ok := PostingRules[kind]
	if !ok {
		return domain.Journal{}, domain.NewInvalid("no posting rule for transaction kind " + string(kind))
	}

	byRole := map[domain.LegRole]money.Money{}
	for _, p := range postings {
		byRole[p.Role] = byRole[p.Role].Add(p.Amount)
	}

	entries := make([]domain.JournalEntry, 0, len(rules))
	for _, rule := range rules {
		amt, has := byRole[rule.Role]
		if !has || amt.IsZero() {
			continue
		}
		account, err := l.resolveAccount(ctx, rule.AccountCode)
		if err != nil {
			return domain.Journal{}, err
		}
		entry := domain.JournalEntry{
			ID:        uuid.New().String(),
			AccountID: account.ID,
			Narration: description,
		}
		if rule.Entry == domain.Debit {
			entry.Debit = amt
			entry.Credit = money.ZeroMoney
		} else {
			entry.Credit = amt
			entry.Debit = money.ZeroMoney
		}
		entries = append(entries, entry)
	}

	if err := validateBalance(entries); err != nil {
		return domain.Journal{}, err
	}

	j := domain.Journal{
		ID:             uuid.New().String(),
		UserID:         userID,
		TxnDate:        txnDate,
		Description:    description,
		Source:         source,
		IdempotencyKey: idempotencyKey,
		ReferenceType:  referenceType,
		CreatedAt:      time.Now().UTC(),
	}
	for i := range entries {
		entries[i].JournalID = j.ID
	}

	if err := l.db.InsertJournal(ctx, tx, j, entries); err != nil {
		return domain.Journal{}, err
	}
	detail := auditDetail(j, entries)
	if err := l.db.InsertAuditLog(ctx, tx, domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		TableName: "journals",
		RecordID:  j.ID,
		Action:    "INSERT",
		NewValues: detail,
		Source:    source,
		At:        j.CreatedAt,
	}); err != nil {
		return domain.Journal{}, err
	}
	return j, nil
}

// validateBalance enforces spec.md §3's core invariant: Σdebit = Σcredit
// within money.MoneyTolerance, directly generalizing the teacher's
// PostingEngine.validateBalance (posting_engine.go) from int64 minor units
// to money.Money.
func validateBalance(entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return domain.NewUnbalancedJournal("journal has no non-zero entries, nothing to post")
	}
	debitTotal, creditTotal := money.ZeroMoney, money.ZeroMoney
	for _, e := range entries {
		debitTotal = debitTotal.Add(e.Debit)
		creditTotal = creditTotal.Add(e.Credit)
	}
	if !debitTotal.Equal(creditTotal) {
		return domain.NewUnbalancedJournal("debits " + debitTotal.String() + " != credits " + creditTotal.String())
	}
	return nil
}

// GetAccountBalance returns the net balance of accountCode, sign convention
// per the account's normal balance side — assets/expenses are normally
// debit balances, liabilities/equity/income are normally credit balances —
// generalizing the teacher's PostingEngine.CalculateAccountBalance /
// getBalanceMultiplier (posting_engine.go).
func (l *Ledger) GetAccountBalance(ctx context.Context, accountCode string) (money.Money, error) {
	account, err := l.resolveAccount(ctx, accountCode)
	if err != nil {
		return money.ZeroMoney, err
	}
	debitTotal, creditTotal, err := l.db.AccountBalanceTotals(ctx, account.ID)
	if err != nil {
		return money.ZeroMoney, err
	}
	if normalBalanceIsDebit(account.Type) {
		return debitTotal.Sub(creditTotal), nil
	}
	return creditTotal.Sub(debitTotal), nil
}

func normalBalanceIsDebit(t domain.AccountType) bool {
	return t == domain.AccountAsset || t == domain.AccountExpense
}
