package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
)

// ForeignIncomeEvent is one foreign dividend/interest event, the Income
// Aggregator's FOREIGN_DIVIDEND/FOREIGN_INTEREST source (spec.md §9's DTAA
// Open Question resolution).
type ForeignIncomeEvent struct {
	ID, UserID, NaturalKey, Symbol, Country, IncomeType string
	EventDate                                           time.Time
	GrossAmountUSD, ExchangeRate, WithholdingTaxUSD      decimal.Decimal
}

func (s *Storage) InsertForeignIncomeEvent(ctx context.Context, tx *Tx, e ForeignIncomeEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO foreign_income_events
			(id, user_id, natural_key, symbol, country, income_type, event_date, gross_amount_usd, exchange_rate, withholding_tax_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, natural_key) DO NOTHING
	`, e.ID, e.UserID, e.NaturalKey, e.Symbol, e.Country, e.IncomeType, e.EventDate,
		e.GrossAmountUSD.String(), e.ExchangeRate.String(), e.WithholdingTaxUSD.String())
	if err != nil {
		return domain.WrapStorageError("inserting foreign income event", err)
	}
	return nil
}

func (s *Storage) ForeignIncomeEventsBetween(ctx context.Context, userID string, from, to time.Time) ([]ForeignIncomeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, natural_key, symbol, country, income_type, event_date, gross_amount_usd, exchange_rate, withholding_tax_usd
		FROM foreign_income_events WHERE user_id = ? AND event_date BETWEEN ? AND ?
		ORDER BY event_date
	`, userID, from, to)
	if err != nil {
		return nil, domain.WrapStorageError("querying foreign income events", err)
	}
	defer rows.Close()

	var out []ForeignIncomeEvent
	for rows.Next() {
		var e ForeignIncomeEvent
		var gross, fx, wht string
		if err := rows.Scan(&e.ID, &e.UserID, &e.NaturalKey, &e.Symbol, &e.Country, &e.IncomeType, &e.EventDate, &gross, &fx, &wht); err != nil {
			return nil, domain.WrapStorageError("scanning foreign income event", err)
		}
		e.GrossAmountUSD, _ = decimal.NewFromString(gross)
		e.ExchangeRate, _ = decimal.NewFromString(fx)
		e.WithholdingTaxUSD, _ = decimal.NewFromString(wht)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating foreign income events", err)
	}
	return out, nil
}
