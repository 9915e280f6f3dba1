package store

import (
	"context"

	"pfas/domain"
)

// TruthResolverOverride is one per-user (metric, asset_class) priority
// entry, spec.md §4.10's "per-user overrides in a rule table take
// precedence [over code defaults]".
type TruthResolverOverride struct {
	ID, UserID, Metric, Source string
	AssetClass                 domain.AssetClass
	Priority                   int
}

func (s *Storage) InsertTruthResolverOverride(ctx context.Context, tx *Tx, o TruthResolverOverride) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO truth_resolver_overrides (id, user_id, metric, asset_class, source, priority)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, metric, asset_class, priority) DO UPDATE SET source = excluded.source
	`, o.ID, o.UserID, o.Metric, o.AssetClass, o.Source, o.Priority)
	if err != nil {
		return domain.WrapStorageError("inserting truth resolver override", err)
	}
	return nil
}

// TruthResolverOverridesFor returns the ordered (by priority ascending)
// source list a user has configured for (metric, assetClass), or an empty
// slice when none exist.
func (s *Storage) TruthResolverOverridesFor(ctx context.Context, userID, metric string, assetClass domain.AssetClass) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source FROM truth_resolver_overrides
		WHERE user_id = ? AND metric = ? AND asset_class = ?
		ORDER BY priority ASC
	`, userID, metric, assetClass)
	if err != nil {
		return nil, domain.WrapStorageError("querying truth resolver overrides", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, domain.WrapStorageError("scanning truth resolver override", err)
		}
		out = append(out, source)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating truth resolver overrides", err)
	}
	return out, nil
}
