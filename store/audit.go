package store

import (
	"context"

	"pfas/domain"
)

// InsertAuditLog writes one audit row in the same transaction as the
// mutation it describes, per spec.md §3 invariant 6. Grounded on the
// teacher's EventStore.AppendEvent (event_store.go), generalized from a
// bbolt-keyed event envelope to a relational row.
func (s *Storage) InsertAuditLog(ctx context.Context, tx *Tx, a domain.AuditLog) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, table_name, record_id, action, old_values, new_values, source, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.TableName, a.RecordID, a.Action, a.OldValues, a.NewValues, a.Source, a.At)
	if err != nil {
		return domain.WrapStorageError("inserting audit log", err)
	}
	return nil
}

// AuditTrailFor returns every audit row recorded against one table+record,
// oldest first — used by tests asserting "exactly one row per mutation".
func (s *Storage) AuditTrailFor(ctx context.Context, tableName, recordID string) ([]domain.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, table_name, record_id, action, old_values, new_values, source, at
		FROM audit_log WHERE table_name = ? AND record_id = ? ORDER BY at ASC
	`, tableName, recordID)
	if err != nil {
		return nil, domain.WrapStorageError("querying audit trail", err)
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.TableName, &a.RecordID, &a.Action, &a.OldValues, &a.NewValues, &a.Source, &a.At); err != nil {
			return nil, domain.WrapStorageError("scanning audit log", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorageError("iterating audit trail", err)
	}
	return out, nil
}
