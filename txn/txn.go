// Package txn is the single write path every ingestion/record operation
// funnels through (spec.md §4.4), generalizing the teacher's
// PostingEngine.PostTransaction (posting_engine.go) with the asset-table
// upsert and per-row audit logging original_source's batch ingester and
// transaction recorder perform around it.
package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pfas/domain"
	"pfas/ledger"
	"pfas/store"
)

type Service struct {
	db     *store.Storage
	ledger *ledger.Ledger
	log    zerolog.Logger
}

func New(db *store.Storage, l *ledger.Ledger) *Service {
	return &Service{db: db, ledger: l, log: db.Logger().With().Str("component", "txn").Logger()}
}

// Result mirrors spec.md §4.4's Record return shape.
type Result struct {
	Status      domain.RecordStatus
	JournalID   string
	AssetIDs    []string
	IsDuplicate bool
}

// RecordInput bundles the parameters Record needs; postings is empty for
// asset-only records (RecordAssetOnly below).
type RecordInput struct {
	UserID         string
	Kind           domain.TxnKind
	TxnDate        time.Time
	Description    string
	Source         string
	IdempotencyKey string
	ReferenceType  string
	Postings       []ledger.Posting
	AssetRecords   []domain.AssetRecord
}

// BuildIdempotencyKey constructs the stable key spec.md §4.4 specifies:
// "{kind}:{file_hash[:8]}:{row_idx}:{natural_id}".
func BuildIdempotencyKey(kind, fileHash string, rowIdx int, naturalID string) string {
	prefix := fileHash
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("%s:%s:%d:%s", kind, prefix, rowIdx, naturalID)
}

// Record posts a journal (if postings is non-empty) and upserts every
// AssetRecord, all within its own transaction, per spec.md §4.4 steps 1-6.
func (s *Service) Record(ctx context.Context, in RecordInput) (Result, error) {
	var result Result
	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		r, err := s.RecordTx(ctx, tx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// RecordTx is Record's transaction-scoped core, for callers (the Batch
// Ingester) that already hold the store's single write transaction.
func (s *Service) RecordTx(ctx context.Context, tx *store.Tx, in RecordInput) (Result, error) {
	if existing, found, err := s.db.FindJournalByIdempotencyKey(ctx, tx, in.UserID, in.IdempotencyKey); err != nil {
		return Result{}, err
	} else if found {
		return Result{Status: domain.StatusSuccess, JournalID: existing.ID, IsDuplicate: true}, nil
	}

	var journalID string
	assetIDs := make([]string, 0, len(in.AssetRecords))

	if len(in.Postings) > 0 {
		j, err := s.ledger.PostTx(ctx, tx, in.UserID, in.Kind, in.TxnDate, in.Description, in.Source, in.IdempotencyKey, in.ReferenceType, in.Postings)
		if err != nil {
			return Result{}, err
		}
		journalID = j.ID
	}

	for _, rec := range in.AssetRecords {
		if err := s.upsertOne(ctx, tx, in.UserID, in.Source, rec); err != nil {
			return Result{}, err
		}
		assetIDs = append(assetIDs, rec.NaturalKey)
	}

	return Result{Status: domain.StatusSuccess, JournalID: journalID, AssetIDs: assetIDs}, nil
}

// RecordAssetOnly is Record without a journal leg, for reference rows
// (broker metadata, holdings snapshots) that never touch the ledger —
// spec.md §4.4's RecordAssetOnly.
func (s *Service) RecordAssetOnly(ctx context.Context, userID string, assetRecords []domain.AssetRecord, idempotencyKey, source, description string) (Result, error) {
	var result Result
	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		r, err := s.RecordAssetOnlyTx(ctx, tx, userID, assetRecords, idempotencyKey, source)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// RecordAssetOnlyTx is RecordAssetOnly's transaction-scoped core, for
// callers that already hold the store's single write transaction.
func (s *Service) RecordAssetOnlyTx(ctx context.Context, tx *store.Tx, userID string, assetRecords []domain.AssetRecord, idempotencyKey, source string) (Result, error) {
	if existing, found, err := s.db.FindJournalByIdempotencyKey(ctx, tx, userID, idempotencyKey); err != nil {
		return Result{}, err
	} else if found {
		return Result{Status: domain.StatusSuccess, JournalID: existing.ID, IsDuplicate: true}, nil
	}

	assetIDs := make([]string, 0, len(assetRecords))
	for _, rec := range assetRecords {
		if err := s.upsertOne(ctx, tx, userID, source, rec); err != nil {
			return Result{}, err
		}
		assetIDs = append(assetIDs, rec.NaturalKey)
	}
	return Result{Status: domain.StatusSuccess, AssetIDs: assetIDs}, nil
}

func (s *Service) upsertOne(ctx context.Context, tx *store.Tx, userID, source string, rec domain.AssetRecord) error {
	if rec.OnConflict == domain.ConflictFail {
		// Surface DuplicateKey explicitly rather than letting the bare
		// INSERT's constraint violation bubble up as an opaque driver error.
		existing, err := s.assetRecordExists(ctx, tx, rec)
		if err != nil {
			return err
		}
		if existing {
			return domain.NewDuplicateKey("asset record " + rec.NaturalKey + " already exists in " + rec.Table)
		}
	}
	if err := s.db.UpsertAssetRecord(ctx, tx, userID, rec); err != nil {
		return err
	}
	return s.db.InsertAuditLog(ctx, tx, domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		TableName: rec.Table,
		RecordID:  rec.NaturalKey,
		Action:    "INSERT",
		Source:    source,
		At:        time.Now().UTC(),
	})
}

func (s *Service) assetRecordExists(ctx context.Context, tx *store.Tx, rec domain.AssetRecord) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM " + rec.Table + " WHERE natural_key = ?"
	if err := tx.QueryRowContext(ctx, query, rec.NaturalKey).Scan(&count); err != nil {
		return false, domain.WrapStorageError("checking asset record existence", err)
	}
	return count > 0, nil
}
