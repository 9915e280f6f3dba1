// Package taxrules is the Tax-Rules Service: a pure reader over the rule
// tables with a small in-memory cache keyed by (FY, regime, …), grounded on
// original_source/services/tax_rules_service.py. No arithmetic lives here —
// callers apply the rates this package returns (spec.md §4.7).
package taxrules

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pfas/domain"
	"pfas/store"
)

// Service caches rule-table lookups for the lifetime of the process. Each
// cache is write-once-per-key (spec.md §5: "the latter is write-once-per-
// key"), so a key is never invalidated — only ever filled the first time
// it's requested.
type Service struct {
	db *store.Storage

	mu           sync.RWMutex
	slabs        map[slabKey][]store.IncomeTaxSlab
	cgRates      map[cgKey]store.CapitalGainsRate
	stdDeduction map[stdDeductionKey]decimal.Decimal
	surcharge    map[surchargeKey][]store.SurchargeBracket
	cess         map[cessKey]decimal.Decimal
	rebate       map[rebateKey]rebateLimit
	chapterVIA   map[chapterVIAKey]decimal.Decimal
	dtaa         map[dtaaKey]store.DTAARate
}

type slabKey struct {
	fy     string
	regime domain.TaxRegime
	asOf   time.Time
}

type cgKey struct {
	fy         string
	assetClass domain.AssetClass
	gainType   domain.SubClassification
	asOf       time.Time
}

type stdDeductionKey struct {
	fy       string
	regime   domain.TaxRegime
	category string
	asOf     time.Time
}

type surchargeKey struct {
	fy         string
	incomeType string
	asOf       time.Time
}

type cessKey struct {
	fy   string
	asOf time.Time
}

type rebateKey struct {
	fy     string
	regime domain.TaxRegime
	asOf   time.Time
}

type rebateLimit struct {
	incomeCap decimal.Decimal
	maxRebate decimal.Decimal
}

type chapterVIAKey struct {
	fy      string
	regime  domain.TaxRegime
	section string
	asOf    time.Time
}

type dtaaKey struct {
	country, incomeType string
	asOf                time.Time
}

func New(db *store.Storage) *Service {
	return &Service{
		db:           db,
		slabs:        map[slabKey][]store.IncomeTaxSlab{},
		cgRates:      map[cgKey]store.CapitalGainsRate{},
		stdDeduction: map[stdDeductionKey]decimal.Decimal{},
		surcharge:    map[surchargeKey][]store.SurchargeBracket{},
		cess:         map[cessKey]decimal.Decimal{},
		rebate:       map[rebateKey]rebateLimit{},
		chapterVIA:   map[chapterVIAKey]decimal.Decimal{},
		dtaa:         map[dtaaKey]store.DTAARate{},
	}
}

// Slabs returns the ordered slab table for (fy, regime) effective asOf.
func (s *Service) Slabs(ctx context.Context, fy string, regime domain.TaxRegime, asOf time.Time) ([]store.IncomeTaxSlab, error) {
	key := slabKey{fy, regime, asOf}
	s.mu.RLock()
	if v, ok := s.slabs[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	v, err := s.db.SlabsFor(ctx, fy, regime, asOf)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.slabs[key] = v
	s.mu.Unlock()
	return v, nil
}

// CapitalGainsRate returns the STCG/LTCG rate (and exemption, for LTCG) for
// an asset class.
func (s *Service) CapitalGainsRate(ctx context.Context, fy string, assetClass domain.AssetClass, gainType domain.SubClassification, asOf time.Time) (store.CapitalGainsRate, error) {
	key := cgKey{fy, assetClass, gainType, asOf}
	s.mu.RLock()
	if v, ok := s.cgRates[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	v, err := s.db.CapitalGainsRateFor(ctx, fy, assetClass, gainType, asOf)
	if err != nil {
		return store.CapitalGainsRate{}, err
	}
	s.mu.Lock()
	s.cgRates[key] = v
	s.mu.Unlock()
	return v, nil
}

// StandardDeduction returns the flat deduction amount for category (e.g.
// "SALARY").
func (s *Service) StandardDeduction(ctx context.Context, fy string, regime domain.TaxRegime, category string, asOf time.Time) (decimal.Decimal, error) {
	key := stdDeductionKey{fy, regime, category, asOf}
	s.mu.RLock()
	if v, ok := s.stdDeduction[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	v, err := s.db.StandardDeductionFor(ctx, fy, regime, category, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	s.stdDeduction[key] = v
	s.mu.Unlock()
	return v, nil
}

// SurchargeRate returns the surcharge rate applicable at income, per the
// bracket table for incomeType ("NORMAL" or "EQUITY_CAPPED", the
// equity-capped-at-15% rule spec.md §4.7 calls out).
func (s *Service) SurchargeRate(ctx context.Context, fy, incomeType string, income decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	key := surchargeKey{fy, incomeType, asOf}
	s.mu.RLock()
	brackets, ok := s.surcharge[key]
	s.mu.RUnlock()
	if !ok {
		var err error
		brackets, err = s.db.SurchargeBrackets(ctx, fy, incomeType, asOf)
		if err != nil {
			return decimal.Zero, err
		}
		s.mu.Lock()
		s.surcharge[key] = brackets
		s.mu.Unlock()
	}

	rate := decimal.Zero
	for _, b := range brackets {
		if income.LessThan(b.LowerIncome) {
			continue
		}
		if b.UpperIncome != nil && income.GreaterThan(*b.UpperIncome) {
			continue
		}
		rate = b.SurchargeRate
	}
	return rate, nil
}

// CessRate returns the health-and-education cess rate for fy.
func (s *Service) CessRate(ctx context.Context, fy string, asOf time.Time) (decimal.Decimal, error) {
	key := cessKey{fy, asOf}
	s.mu.RLock()
	if v, ok := s.cess[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	v, err := s.db.CessRateFor(ctx, fy, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	s.cess[key] = v
	s.mu.Unlock()
	return v, nil
}

// RebateLimit returns the §87A income cap and max rebate for (fy, regime).
func (s *Service) RebateLimit(ctx context.Context, fy string, regime domain.TaxRegime, asOf time.Time) (incomeCap, maxRebate decimal.Decimal, err error) {
	key := rebateKey{fy, regime, asOf}
	s.mu.RLock()
	if v, ok := s.rebate[key]; ok {
		s.mu.RUnlock()
		return v.incomeCap, v.maxRebate, nil
	}
	s.mu.RUnlock()

	cap, rebate, err := s.db.RebateLimitFor(ctx, fy, regime, asOf)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	s.mu.Lock()
	s.rebate[key] = rebateLimit{incomeCap: cap, maxRebate: rebate}
	s.mu.Unlock()
	return cap, rebate, nil
}

// ChapterVIALimit returns the deduction ceiling for a Chapter VI-A section
// (e.g. "80C", "80TTA") under regime.
func (s *Service) ChapterVIALimit(ctx context.Context, fy string, regime domain.TaxRegime, section string, asOf time.Time) (decimal.Decimal, error) {
	key := chapterVIAKey{fy, regime, section, asOf}
	s.mu.RLock()
	if v, ok := s.chapterVIA[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	v, err := s.db.ChapterVIALimit(ctx, fy, regime, section, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	s.chapterVIA[key] = v
	s.mu.Unlock()
	return v, nil
}

// DTAARate returns the withholding rate and credit method for (country,
// incomeType), the foreign-tax-credit lookup spec.md §9's Open Question
// resolution calls for, grounded on
// original_source/services/foreign/dtaa_calculator.py.
func (s *Service) DTAARate(ctx context.Context, country, incomeType string, asOf time.Time) (store.DTAARate, error) {
	key := dtaaKey{country, incomeType, asOf}
	s.mu.RLock()
	if v, ok := s.dtaa[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	v, err := s.db.DTAARateFor(ctx, country, incomeType, asOf)
	if err != nil {
		return store.DTAARate{}, err
	}
	s.mu.Lock()
	s.dtaa[key] = v
	s.mu.Unlock()
	return v, nil
}
