package golden

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/money"
	"pfas/store"
)

// holdingKey builds the ISIN-then-folio-then-symbol-then-name match key
// spec.md §4.10 step 2 names.
func holdingKey(isin, folio, symbol, name string) string {
	switch {
	case isin != "":
		return "isin:" + isin
	case folio != "":
		return "folio:" + folio
	case symbol != "":
		return "symbol:" + symbol
	default:
		return "name:" + name
	}
}

// CrossCorrelator reconciles one GoldenReference's holdings against the
// system's computed holdings, per spec.md §4.10's algorithm.
type CrossCorrelator struct {
	db *store.Storage
}

func NewCrossCorrelator(db *store.Storage) *CrossCorrelator {
	return &CrossCorrelator{db: db}
}

// Reconcile runs the full cross-correlation for one golden reference,
// writing a ReconciliationEvent per comparison and a SuspenseItem(OPEN)
// for every MISMATCH when suspense is enabled, all inside one transaction.
func (c *CrossCorrelator) Reconcile(ctx context.Context, userID, goldenRefID string, golden []domain.GoldenHolding, system []domain.SystemHolding, tol domain.ToleranceConfig, suspenseEnabled bool) ([]domain.ReconciliationEvent, []domain.SuspenseItem, error) {
	goldenByKey := map[string]domain.GoldenHolding{}
	for _, g := range golden {
		goldenByKey[holdingKey(g.ISIN, g.Folio, g.Symbol, g.Name)] = g
	}
	systemByKey := map[string]domain.SystemHolding{}
	for _, s := range system {
		systemByKey[holdingKey(s.ISIN, s.Folio, s.Symbol, s.Name)] = s
	}

	keys := map[string]bool{}
	for k := range goldenByKey {
		keys[k] = true
	}
	for k := range systemByKey {
		keys[k] = true
	}

	var events []domain.ReconciliationEvent
	var suspenseItems []domain.SuspenseItem
	now := time.Now().UTC()

	err := c.db.WithTx(ctx, func(tx *store.Tx) error {
		for key := range keys {
			g, hasGolden := goldenByKey[key]
			s, hasSystem := systemByKey[key]

			var event domain.ReconciliationEvent
			event.ID = uuid.New().String()
			event.UserID = userID
			event.GoldenRefID = goldenRefID
			event.Key = key
			event.CreatedAt = now

			switch {
			case !hasGolden:
				event.AssetClass = s.AssetClass
				event.MatchResult = domain.MatchMissingGolden
				event.DiffUnits = s.Units
				event.DiffValue = s.MarketValue
				event.Severity = domain.SeverityWarning
			case !hasSystem:
				event.AssetClass = g.AssetClass
				event.MatchResult = domain.MatchMissingSystem
				event.DiffUnits = g.Units
				event.DiffValue = g.MarketValue
				event.Severity = domain.SeverityWarning
			default:
				event.AssetClass = g.AssetClass
				diffValue := s.MarketValue.Sub(g.MarketValue)
				diffUnits := s.Units.Sub(g.Units)
				event.DiffUnits = diffUnits
				event.DiffValue = diffValue
				event.MatchResult, event.Severity = classify(diffValue, g.MarketValue, tol)
			}

			if err := c.db.InsertReconciliationEvent(ctx, tx, event); err != nil {
				return err
			}
			events = append(events, event)

			if event.MatchResult == domain.MatchMismatch && suspenseEnabled {
				item := domain.SuspenseItem{
					ID: uuid.New().String(), UserID: userID, EventID: event.ID,
					Status: domain.SuspenseOpen, Notes: "", OpenedAt: now,
				}
				if err := c.db.InsertSuspenseItem(ctx, tx, item); err != nil {
					return err
				}
				suspenseItems = append(suspenseItems, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return events, suspenseItems, nil
}

// classify is spec.md §4.10 steps 3-4: EXACT/WITHIN_TOLERANCE/MISMATCH
// from the diff, then severity from the diff's absolute magnitude.
func classify(diff, goldenValue money.Money, tol domain.ToleranceConfig) (domain.MatchResult, domain.Severity) {
	absDiff := diff.Decimal().Abs()

	var result domain.MatchResult
	switch {
	case absDiff.IsZero():
		result = domain.MatchExact
	case withinTolerance(absDiff, goldenValue, tol):
		result = domain.MatchWithinTolerance
	default:
		result = domain.MatchMismatch
	}

	severity := domain.SeverityInfo
	switch {
	case absDiff.GreaterThanOrEqual(tol.CriticalThreshold):
		severity = domain.SeverityCritical
	case absDiff.GreaterThanOrEqual(tol.ErrorThreshold):
		severity = domain.SeverityError
	case absDiff.GreaterThanOrEqual(tol.WarningThreshold):
		severity = domain.SeverityWarning
	}
	return result, severity
}

func withinTolerance(absDiff decimal.Decimal, goldenValue money.Money, tol domain.ToleranceConfig) bool {
	if absDiff.LessThanOrEqual(tol.AbsoluteTolerance) {
		return true
	}
	golden := goldenValue.Decimal()
	if golden.IsZero() {
		return false
	}
	pct := absDiff.Div(golden.Abs())
	return pct.LessThanOrEqual(tol.PercentageTolerance)
}
