package store

import (
	"context"
	"database/sql"

	"pfas/domain"
)

// UpsertUser inserts u, or updates DisplayName/DeactivatedAt if the row
// already exists, keyed on ID — used at signup and at deactivation.
func (s *Storage) UpsertUser(ctx context.Context, tx *Tx, u domain.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, created_at, deactivated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			deactivated_at = excluded.deactivated_at
	`, u.ID, u.Email, u.DisplayName, u.CreatedAt, u.DeactivatedAt)
	if err != nil {
		return domain.WrapStorageError("upserting user", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, created_at, deactivated_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt, &u.DeactivatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.NewNotFound("user " + id)
	}
	if err != nil {
		return domain.User{}, domain.WrapStorageError("fetching user", err)
	}
	return u, nil
}

// SeedAccounts inserts the chart of accounts for use at first-run wiring
// time (see cmd/demo). An account whose id already exists is skipped; one
// whose code already exists under a different id fails on the code UNIQUE
// constraint.
func (s *Storage) SeedAccounts(ctx context.Context, tx *Tx, accounts []domain.Account) error {
	for _, a := range accounts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, parent_id, code, name, type)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, a.ID, nullIfEmpty(a.ParentID), a.Code, a.Name, string(a.Type))
		if err != nil {
			return domain.WrapStorageError("seeding account "+a.Code, err)
		}
	}
	return nil
}

func (s *Storage) GetAccountByCode(ctx context.Context, code string) (domain.Account, error) {
	var a domain.Account
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, parent_id, code, name, type FROM accounts WHERE code = ?
	`, code).Scan(&a.ID, &parent, &a.Code, &a.Name, &a.Type)
	if err == sql.ErrNoRows {
		return domain.Account{}, domain.NewNotFound("account code " + code)
	}
	if err != nil {
		return domain.Account{}, domain.WrapStorageError("fetching account", err)
	}
	a.ParentID = parent.String
	return a, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
