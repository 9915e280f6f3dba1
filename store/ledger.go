package store

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/money"
)

// InsertJournal inserts j and all of entries atomically within tx. Callers
// (ledger.Post) are responsible for the Σdebit = Σcredit invariant — this
// layer only persists, grounded on the teacher's
// PostingEngine.PostTransaction (posting_engine.go), which also separates
// "validate" from "persist".
func (s *Storage) InsertJournal(ctx context.Context, tx *Tx, j domain.Journal, entries []domain.JournalEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO journals (id, user_id, txn_date, description, source, idempotency_key, reference_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.UserID, j.TxnDate, j.Description, j.Source, j.IdempotencyKey, j.ReferenceType, j.CreatedAt)
	if err != nil {
		return domain.WrapStorageError("inserting journal", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_entries (id, journal_id, account_id, debit, credit, narration)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return domain.WrapStorageError("preparing journal entry insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		debitVal, _ := e.Debit.Value()
		creditVal, _ := e.Credit.Value()
		if _, err := stmt.ExecContext(ctx, e.ID, j.ID, e.AccountID, debitVal, creditVal, e.Narration); err != nil {
			return domain.WrapStorageError("inserting journal entry", err)
		}
	}
	return nil
}

// FindJournalByIdempotencyKey supports the Transaction Service's
// replay-is-a-no-op rule (spec.md §4.4). Takes the open tx (not s.db) since
// the store's single-connection pool would otherwise deadlock a caller
// running inside WithTx (spec.md §5).
func (s *Storage) FindJournalByIdempotencyKey(ctx context.Context, tx *Tx, userID, key string) (domain.Journal, bool, error) {
	var j domain.Journal
	err := tx.QueryRowContext(ctx, `
		SELECT id, user_id, txn_date, description, source, idempotency_key, reference_type, created_at
		FROM journals WHERE user_id = ? AND idempotency_key = ?
	`, userID, key).Scan(&j.ID, &j.UserID, &j.TxnDate, &j.Description, &j.Source, &j.IdempotencyKey, &j.ReferenceType, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Journal{}, false, nil
	}
	if err != nil {
		return domain.Journal{}, false, domain.WrapStorageError("looking up journal by idempotency key", err)
	}
	return j, true, nil
}

// AccountBalanceTotals sums debits and credits posted to accountID,
// generalizing the teacher's PostingEngine.CalculateAccountBalance
// (posting_engine.go). Summation happens in Go over decimal.Decimal, never
// in SQL, since SQLite has no fixed-point aggregate and CAST(... AS REAL)
// would reintroduce binary floating-point error into money totals.
func (s *Storage) AccountBalanceTotals(ctx context.Context, accountID string) (debitTotal, creditTotal money.Money, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT debit, credit FROM journal_entries WHERE account_id = ?
	`, accountID)
	if err != nil {
		return money.ZeroMoney, money.ZeroMoney, domain.WrapStorageError("summing account balance", err)
	}
	defer rows.Close()

	debitSum, creditSum := decimal.Zero, decimal.Zero
	for rows.Next() {
		var debitStr, creditStr string
		if err := rows.Scan(&debitStr, &creditStr); err != nil {
			return money.ZeroMoney, money.ZeroMoney, domain.WrapStorageError("scanning journal entry", err)
		}
		d, err := decimal.NewFromString(debitStr)
		if err != nil {
			return money.ZeroMoney, money.ZeroMoney, domain.WrapStorageError("parsing debit", err)
		}
		c, err := decimal.NewFromString(creditStr)
		if err != nil {
			return money.ZeroMoney, money.ZeroMoney, domain.WrapStorageError("parsing credit", err)
		}
		debitSum = debitSum.Add(d)
		creditSum = creditSum.Add(c)
	}
	if err := rows.Err(); err != nil {
		return money.ZeroMoney, money.ZeroMoney, domain.WrapStorageError("iterating journal entries", err)
	}
	return money.MoneyFromDecimal(debitSum), money.MoneyFromDecimal(creditSum), nil
}
