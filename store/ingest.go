package store

import (
	"context"
	"database/sql"

	"pfas/domain"
)

// FindProcessedFile looks a file up by hash for the Batch Ingester's
// skip-on-replay check, grounded on
// original_source/services/batch_ingester.py's processed_files SELECT.
// Takes the open tx (not s.db) since the store's single-connection pool
// would otherwise deadlock a caller running inside WithTx (spec.md §5).
func (s *Storage) FindProcessedFile(ctx context.Context, tx *Tx, userID, fileHash string) (domain.ProcessedFile, bool, error) {
	var f domain.ProcessedFile
	err := tx.QueryRowContext(ctx, `
		SELECT id, file_hash, user_id, batch_id, parser, records_count, status, error_message, processed_at
		FROM processed_files WHERE user_id = ? AND file_hash = ?
	`, userID, fileHash).Scan(&f.ID, &f.FileHash, &f.UserID, &f.BatchID, &f.Parser, &f.RecordsCount, &f.Status, &f.ErrorMessage, &f.ProcessedAt)
	if err == sql.ErrNoRows {
		return domain.ProcessedFile{}, false, nil
	}
	if err != nil {
		return domain.ProcessedFile{}, false, domain.WrapStorageError("looking up processed file", err)
	}
	return f, true, nil
}

func (s *Storage) InsertProcessedFile(ctx context.Context, tx *Tx, f domain.ProcessedFile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO processed_files (id, file_hash, user_id, batch_id, parser, records_count, status, error_message, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.FileHash, f.UserID, f.BatchID, f.Parser, f.RecordsCount, f.Status, f.ErrorMessage, f.ProcessedAt)
	if err != nil {
		return domain.WrapStorageError("inserting processed file", err)
	}
	return nil
}

func (s *Storage) InsertBatchRun(ctx context.Context, tx *Tx, b domain.BatchRun) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO batch_runs (id, user_id, files_count, records_count, status, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.UserID, b.FilesCount, b.RecordsCount, b.Status, b.StartedAt, b.CompletedAt)
	if err != nil {
		return domain.WrapStorageError("inserting batch run", err)
	}
	return nil
}

func (s *Storage) UpdateBatchRun(ctx context.Context, tx *Tx, b domain.BatchRun) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE batch_runs SET files_count = ?, records_count = ?, status = ?, completed_at = ? WHERE id = ?
	`, b.FilesCount, b.RecordsCount, b.Status, b.CompletedAt, b.ID)
	if err != nil {
		return domain.WrapStorageError("updating batch run", err)
	}
	return nil
}
