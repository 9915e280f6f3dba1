package store

import (
	"context"
	"fmt"
	"sort"

	"pfas/domain"
)

// UpsertAssetRecord writes rec.Data into rec.Table, keyed by rec.NaturalKey,
// honoring rec.OnConflict (spec.md §4.5). Column order is derived from the
// map's keys at call time since each parser produces a different row
// shape; the natural_key and user_id columns are always present in the
// per-asset migrations (0002_asset_tables.up.sql).
func (s *Storage) UpsertAssetRecord(ctx context.Context, tx *Tx, userID string, rec domain.AssetRecord) error {
	cols := make([]string, 0, len(rec.Data)+2)
	vals := make([]any, 0, len(rec.Data)+2)
	cols = append(cols, "user_id", "natural_key")
	vals = append(vals, userID, rec.NaturalKey)

	keys := make([]string, 0, len(rec.Data))
	for k := range rec.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic column order for reproducible SQL/tests
	for _, k := range keys {
		cols = append(cols, k)
		vals = append(vals, rec.Data[k])
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "?"
	}

	var conflictClause string
	switch rec.OnConflict {
	case domain.ConflictIgnore:
		conflictClause = "ON CONFLICT(user_id, natural_key) DO NOTHING"
	case domain.ConflictReplace:
		setClauses := make([]string, 0, len(keys))
		for _, k := range keys {
			setClauses = append(setClauses, fmt.Sprintf("%s = excluded.%s", k, k))
		}
		conflictClause = "ON CONFLICT(user_id, natural_key) DO UPDATE SET " + joinComma(setClauses)
	case domain.ConflictFail:
		conflictClause = ""
	default:
		conflictClause = "ON CONFLICT(user_id, natural_key) DO NOTHING"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) %s",
		rec.Table, joinComma(cols), joinComma(placeholders), conflictClause,
	)
	if _, err := tx.ExecContext(ctx, query, vals...); err != nil {
		return domain.WrapStorageError("upserting asset record into "+rec.Table, err)
	}
	return nil
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}
