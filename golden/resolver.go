// Package golden is the Golden-Reference Reconciliation Engine: the Truth
// Resolver, Cross Correlator, and suspense-item lifecycle spec.md §4.10
// describes, grounded on
// original_source/services/golden_reference/cross_correlator.py and
// truth_resolver.py.
package golden

import (
	"context"

	"pfas/domain"
	"pfas/store"
)

// defaultSourceOrder is the code-default authoritative-source ordering per
// asset class, grounded on original_source/services/golden_reference/
// truth_resolver.py's DEFAULT_SOURCES table: depository statements beat
// registrar statements beat broker-derived figures for listed securities;
// passbook entries are themselves authoritative for PF/PPF/NPS, so they
// have no external "golden" competitor.
var defaultSourceOrder = map[domain.AssetClass][]string{
	domain.AssetMFEquity: {"NSDL_CAS", "CAMS_CAS"},
	domain.AssetMFDebt:   {"NSDL_CAS", "CAMS_CAS"},
	domain.AssetStock:    {"NSDL_CAS", "CDSL_CAS"},
	domain.AssetSGB:      {"NSDL_CAS"},
}

// TruthResolver returns the ordered list of authoritative sources for a
// (metric, asset_class) pair: config-file overrides beat per-user DB
// overrides beat the code default, per spec.md §4.10.
type TruthResolver struct {
	db *store.Storage
}

func NewTruthResolver(db *store.Storage) *TruthResolver {
	return &TruthResolver{db: db}
}

// SourcesFor returns the ordered source list for (userID, metric,
// assetClass). cfg may be nil when no per-user reconciliation.json was
// loaded; its SourceOverrides, if present, wins over everything else.
func (r *TruthResolver) SourcesFor(ctx context.Context, userID, metric string, assetClass domain.AssetClass, cfg *domain.ReconciliationConfig) ([]string, error) {
	if cfg != nil {
		if sources, ok := cfg.SourceOverrides[metric+":"+string(assetClass)]; ok && len(sources) > 0 {
			return sources, nil
		}
	}

	dbOverride, err := r.db.TruthResolverOverridesFor(ctx, userID, metric, assetClass)
	if err != nil {
		return nil, err
	}
	if len(dbOverride) > 0 {
		return dbOverride, nil
	}

	if defaults, ok := defaultSourceOrder[assetClass]; ok {
		return defaults, nil
	}
	return nil, nil
}
