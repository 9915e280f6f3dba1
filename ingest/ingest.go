// Package ingest is the Batch Ingester: atomic ingestion of a set of files,
// grounded on original_source/services/batch_ingester.py's
// FileResult/BatchResult dataclasses and "all files in one transaction,
// all-or-nothing" design, implementing spec.md §4.6's algorithm.
package ingest

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pfas/bankintel"
	"pfas/costbasis"
	"pfas/domain"
	"pfas/parser"
	"pfas/store"
	"pfas/txn"
)

// File is one input to a batch: its name (used for extension dispatch),
// content, and an optional password for encrypted statements.
type File struct {
	Name     string
	Content  io.Reader
	Password string
}

// FileResult mirrors original_source's FileResult dataclass.
type FileResult struct {
	FileName     string
	Status       domain.FileStatus
	RecordsCount int
	ErrorMessage string
	FileHash     string
}

// BatchResult mirrors original_source's BatchResult dataclass.
type BatchResult struct {
	Success      bool
	BatchID      string
	TotalFiles   int
	FilesSuccess int
	FilesFailed  int
	FilesSkipped int
	TotalRecords int
	FileResults  []FileResult
	ErrorMessage string
}

// Dispatcher maps a file name to the Format that should parse it — the
// ingester's `dispatch(file.extension)` step (spec.md §4.6). Left to the
// caller to populate from parser.Registry plus a name/extension rule,
// since the concrete extension-to-parser wiring is deployment-specific.
type Dispatcher func(fileName string) (parser.Format, bool)

type Ingester struct {
	db             *store.Storage
	txnSvc         *txn.Service
	costBasis      *costbasis.Tracker
	dispatch       Dispatcher
	bankClassifier bankintel.Classifier
	log            zerolog.Logger
}

func New(db *store.Storage, txnSvc *txn.Service, costBasis *costbasis.Tracker, dispatch Dispatcher, bankClassifier bankintel.Classifier) *Ingester {
	return &Ingester{
		db: db, txnSvc: txnSvc, costBasis: costBasis, dispatch: dispatch, bankClassifier: bankClassifier,
		log: db.Logger().With().Str("component", "ingest").Logger(),
	}
}

// errDryRun is a sentinel returned from inside WithTx to force a rollback
// on an otherwise-successful dry run (spec.md §4.6: "dry-run mode parses
// and validates but rolls back").
var errDryRun = domain.NewInvalid("dry run: rolling back by design")

// IngestBatch runs spec.md §4.6's algorithm: for each file, skip if
// already processed successfully, dispatch to a parser, record the
// outcome, and on stopOnError abort the whole batch on first failure. With
// dryRun the transaction always rolls back regardless of outcome. The
// whole batch runs inside one transaction (spec.md §5's single-writer
// model), so every step below must use the passed-in tx rather than
// opening a transaction of its own.
func (in *Ingester) IngestBatch(ctx context.Context, userID string, files []File, stopOnError, dryRun bool) (result BatchResult, err error) {
	batchID := uuid.New().String()
	result = BatchResult{BatchID: batchID, TotalFiles: len(files)}

	defer func() {
		if p := recover(); p != nil {
			result.Success = false
			result.ErrorMessage = "panic during batch ingestion"
			err = domain.WrapBatchIngestionError("panic", panicAsError(p))
		}
	}()

	txErr := in.db.WithTx(ctx, func(tx *store.Tx) error {
		batch := domain.BatchRun{
			ID:        batchID,
			UserID:    userID,
			Status:    domain.BatchRunning,
			StartedAt: time.Now().UTC(),
		}
		if err := in.db.InsertBatchRun(ctx, tx, batch); err != nil {
			return err
		}

		for _, f := range files {
			fr, hardFail, err := in.ingestOne(ctx, tx, userID, batchID, f)
			if err != nil {
				return err
			}
			result.FileResults = append(result.FileResults, fr)
			switch fr.Status {
			case domain.FileSuccess:
				result.FilesSuccess++
				result.TotalRecords += fr.RecordsCount
			case domain.FileFailed:
				result.FilesFailed++
			case domain.FileSkipped:
				result.FilesSkipped++
			}
			if hardFail && stopOnError {
				return domain.WrapBatchIngestionError("file failed: "+fr.FileName, nil)
			}
		}

		completedAt := time.Now().UTC()
		status := domain.BatchSuccess
		if result.FilesFailed > 0 {
			status = domain.BatchFailed
		}
		batch.Status = status
		batch.FilesCount = result.TotalFiles
		batch.RecordsCount = result.TotalRecords
		batch.CompletedAt = &completedAt
		if err := in.db.UpdateBatchRun(ctx, tx, batch); err != nil {
			return err
		}

		if dryRun {
			return errDryRun
		}
		return nil
	})

	if txErr != nil && txErr != errDryRun {
		result.Success = false
		result.ErrorMessage = txErr.Error()
		return result, txErr
	}
	result.Success = result.FilesFailed == 0
	return result, nil
}

// ingestOne handles a single file. The returned bool reports whether the
// file outcome should abort the batch under stop-on-error; a non-nil error
// always aborts regardless (it signals a store failure, not a bad file).
func (in *Ingester) ingestOne(ctx context.Context, tx *store.Tx, userID, batchID string, f File) (FileResult, bool, error) {
	hash, content, err := hashFile(f.Content)
	if err != nil {
		return FileResult{FileName: f.Name, Status: domain.FileFailed, ErrorMessage: err.Error()}, true, nil
	}

	if existing, found, err := in.db.FindProcessedFile(ctx, tx, userID, hash); err != nil {
		return FileResult{}, true, err
	} else if found && existing.Status == domain.FileSuccess {
		return FileResult{FileName: f.Name, Status: domain.FileSkipped, FileHash: hash}, false, nil
	}

	format, ok := in.dispatch(f.Name)
	if !ok {
		fr := FileResult{FileName: f.Name, Status: domain.FileFailed, ErrorMessage: "no parser for file", FileHash: hash}
		if err := in.recordProcessedFile(ctx, tx, userID, batchID, format, fr); err != nil {
			return FileResult{}, true, err
		}
		return fr, true, nil
	}

	parseResult, err := format.Parse(parser.Source{Name: f.Name, Reader: content, Password: f.Password})
	if err != nil || !parseResult.Success {
		msg := "parse failed"
		if err != nil {
			msg = err.Error()
		} else if len(parseResult.Errors) > 0 {
			msg = parseResult.Errors[0]
		}
		fr := FileResult{FileName: f.Name, Status: domain.FileFailed, ErrorMessage: msg, FileHash: hash}
		if err := in.recordProcessedFile(ctx, tx, userID, batchID, format, fr); err != nil {
			return FileResult{}, true, err
		}
		return fr, true, nil
	}

	recordCount, err := in.applyRows(ctx, tx, userID, hash, format.Name(), parseResult)
	if err != nil {
		fr := FileResult{FileName: f.Name, Status: domain.FileFailed, ErrorMessage: err.Error(), FileHash: hash}
		if rerr := in.recordProcessedFile(ctx, tx, userID, batchID, format, fr); rerr != nil {
			return FileResult{}, true, rerr
		}
		return fr, true, nil
	}

	fr := FileResult{FileName: f.Name, Status: domain.FileSuccess, RecordsCount: recordCount, FileHash: hash}
	if err := in.recordProcessedFile(ctx, tx, userID, batchID, format, fr); err != nil {
		return FileResult{}, true, err
	}
	return fr, false, nil
}

func (in *Ingester) recordProcessedFile(ctx context.Context, tx *store.Tx, userID, batchID string, format parser.Format, fr FileResult) error {
	parserName := ""
	if format != nil {
		parserName = format.Name()
	}
	pf := domain.ProcessedFile{
		ID:           uuid.New().String(),
		FileHash:     fr.FileHash,
		UserID:       userID,
		BatchID:      batchID,
		Parser:       parserName,
		RecordsCount: fr.RecordsCount,
		Status:       fr.Status,
		ErrorMessage: fr.ErrorMessage,
		ProcessedAt:  time.Now().UTC(),
	}
	if err := in.db.InsertProcessedFile(ctx, tx, pf); err != nil {
		return err
	}
	return in.db.InsertAuditLog(ctx, tx, domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		TableName: "processed_files",
		RecordID:  pf.ID,
		Action:    "INSERT",
		Source:    "batch_ingester",
		At:        pf.ProcessedAt,
	})
}

// hashFile computes the MD5 digest spec.md §4.6 specifies ("h ← md5(file)")
// while buffering the content so it can still be parsed afterward.
func hashFile(r io.Reader) (string, io.Reader, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:]), bytes.NewReader(content), nil
}

func panicAsError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return domain.NewInvalid("panic: non-error value")
}
