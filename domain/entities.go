// Package domain holds the core entities, enums, and typed error kinds
// shared by every pfas service. It is grounded on the teacher's
// accounting.go (type-only package, no business logic) but the entity set
// here is the one spec.md §3 describes: a ledger plus per-asset-class
// denormalized rows instead of a generic multi-currency ledger.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"pfas/money"
)

// User is the identity envelope every row carries user_id against.
// Soft-delete only: DeactivatedAt is set, rows are never destroyed.
type User struct {
	ID            string
	Email         string
	DisplayName   string
	CreatedAt     time.Time
	DeactivatedAt *time.Time
}

// Account is a node in the immutable-after-seeding Chart of Accounts.
type Account struct {
	ID       string
	ParentID string
	Code     string // e.g. "1101"
	Name     string
	Type     AccountType
}

// Journal is one row per business transaction (spec.md §3).
type Journal struct {
	ID             string
	UserID         string
	TxnDate        time.Time
	Description    string
	Source         string // parser identifier
	IdempotencyKey string
	ReferenceType  string
	CreatedAt      time.Time
}

// JournalEntry is a single debit or credit leg. Exactly one of Debit/Credit
// is positive, per spec.md §3 invariant.
type JournalEntry struct {
	ID        string
	JournalID string
	AccountID string
	Debit     money.Money
	Credit    money.Money
	Narration string
}

// Lot is a cost-basis purchase lot, spec.md §3. UnitsRemaining is the only
// field ever mutated post-insert.
type Lot struct {
	ID               string
	UserID           string
	AssetType        AssetClass
	Symbol           string
	AcquisitionDate  time.Time
	UnitsAcquired    money.Units
	UnitsRemaining   money.Units
	CostPerUnit      money.Money
	TotalCost        money.Money
	Currency         string
	Reference        string
}

// IsDepleted matches the teacher-style Lot.is_depleted property from
// original_source/services/mf/fifo_tracker.py and cost_basis_tracker.py.
func (l Lot) IsDepleted() bool {
	return !l.UnitsRemaining.GreaterThan(money.ZeroUnits) && !l.UnitsRemaining.IsNegative()
}

// AssetRecord is the generic envelope the Transaction Service upserts into
// a per-asset-class denormalized table (mf_transactions, stock_trades, …).
// Table names and natural keys are parser-specific (spec.md §4.5 table).
type AssetRecord struct {
	Table      string
	NaturalKey string // precomputed per §4.5's per-parser natural key rule
	Data       map[string]any
	OnConflict OnConflict
}

// ProcessedFile records successful (or failed) ingestion of one file, for
// skip-on-replay (spec.md §3, §4.6).
type ProcessedFile struct {
	ID            string
	FileHash      string
	UserID        string
	BatchID       string
	Parser        string
	RecordsCount  int
	Status        FileStatus
	ErrorMessage  string
	ProcessedAt   time.Time
}

// BatchRun records one ingestion batch (spec.md §3, §4.6).
type BatchRun struct {
	ID            string
	UserID        string
	FilesCount    int
	RecordsCount  int
	Status        BatchStatus
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// AuditLog is the append-only trail every mutation produces exactly one
// row of, in the same transaction as the mutation (spec.md §3 invariant 6),
// grounded on the teacher's JournalEvent/EventStore pattern
// (event_store.go) but stored as a relational row instead of a bbolt-keyed
// event envelope.
type AuditLog struct {
	ID         string
	UserID     string
	TableName  string
	RecordID   string
	Action     string // "INSERT" | "UPDATE"
	OldValues  string // JSON, empty on INSERT
	NewValues  string // JSON
	Source     string
	At         time.Time
}

// IncomeSummary is the denormalized per-FY bucket table spec.md §3
// describes, keyed by income_type x sub_classification x sub_grouping.
type IncomeSummary struct {
	ID                   string
	UserID               string
	FY                   string
	IncomeType           IncomeType
	SubClassification    SubClassification
	SubGrouping          string
	Gross                money.Money
	Deductions           money.Money
	Taxable              money.Money
	TDS                  money.Money
	ApplicableRateType   TaxRateType
}

// AdvanceTaxComputation is the stored result per (user, FY, regime); only
// one row per (user, FY) has IsLatest = true (spec.md §3 invariant 5).
type AdvanceTaxComputation struct {
	ID                  string
	UserID              string
	FY                  string
	Regime              TaxRegime
	ComputedAt          time.Time
	IsLatest            bool
	GrossTotalIncome    money.Money
	TotalDeductions     money.Money
	TaxableIncome       money.Money
	TaxOnSlabIncome     money.Money
	TaxOnSTCGEquity     money.Money
	TaxOnLTCGEquity     money.Money
	RebateAmount        money.Money
	SurchargeRate       decimal.Decimal
	SurchargeAmount     money.Money
	CessRate            decimal.Decimal
	CessAmount          money.Money
	TotalTaxLiability   money.Money
	TDSDeducted         money.Money
	AdvanceTaxPaid      money.Money
	BalancePayable      money.Money
	DetailJSON          string
}

// GoldenReference is one parsed external "truth" statement header (NSDL
// CAS, CAMS CAS, etc), spec.md §3/§4.10.
type GoldenReference struct {
	ID         string
	UserID     string
	Source     string // "NSDL_CAS", "CAMS_CAS", …
	AsOfDate   time.Time
	ImportedAt time.Time
}

// GoldenHolding is one row within a GoldenReference.
type GoldenHolding struct {
	ID          string
	GoldenRefID string
	AssetClass  AssetClass
	ISIN        string
	Folio       string
	Symbol      string
	Name        string
	Units       money.Units
	MarketValue money.Money
}

// SystemHolding is the in-system equivalent computed from asset tables /
// lots, shaped to compare 1:1 against a GoldenHolding.
type SystemHolding struct {
	AssetClass  AssetClass
	ISIN        string
	Folio       string
	Symbol      string
	Name        string
	Units       money.Units
	MarketValue money.Money
}

// ReconciliationEvent is written for every comparison the cross correlator
// makes (spec.md §4.10 step 5).
type ReconciliationEvent struct {
	ID           string
	UserID       string
	GoldenRefID  string
	AssetClass   AssetClass
	Key          string
	MatchResult  MatchResult
	Severity     Severity
	DiffUnits    money.Units
	DiffValue    money.Money
	CreatedAt    time.Time
}

// SuspenseItem is an open discrepancy awaiting resolution (spec.md §4.10).
type SuspenseItem struct {
	ID          string
	UserID      string
	EventID     string
	Status      SuspenseStatus
	Notes       string
	OpenedAt    time.Time
	ResolvedAt  *time.Time
}
