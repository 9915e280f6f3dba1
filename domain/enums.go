package domain

// AccountType mirrors the teacher's AccountType (accounting.go) but the
// Chart of Accounts here is the fixed Indian-taxpayer tree from spec.md §3,
// seeded once and immutable thereafter.
type AccountType string

const (
	AccountAsset     AccountType = "ASSET"
	AccountLiability AccountType = "LIABILITY"
	AccountEquity    AccountType = "EQUITY"
	AccountIncome    AccountType = "INCOME"
	AccountExpense   AccountType = "EXPENSE"
)

// EntryType is DEBIT or CREDIT, same shape as the teacher's EntryType.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// AssetClass enumerates the holding types the cost-basis tracker and
// valuation services key on.
type AssetClass string

const (
	AssetMFEquity      AssetClass = "MF_EQUITY"
	AssetMFDebt        AssetClass = "MF_DEBT"
	AssetStock         AssetClass = "STOCK"
	AssetForeignStock  AssetClass = "FOREIGN_STOCK"
	AssetRSU           AssetClass = "RSU"
	AssetESPP          AssetClass = "ESPP"
	AssetPPF           AssetClass = "PPF"
	AssetEPF           AssetClass = "EPF"
	AssetNPS           AssetClass = "NPS"
	AssetBank          AssetClass = "BANK"
	AssetSGB           AssetClass = "SGB"
)

// TxnKind names the business-event kinds the Journal posting-rules table
// (spec.md §4.2) maps to debit/credit legs.
type TxnKind string

const (
	TxnStockBuy        TxnKind = "STOCK_BUY"
	TxnStockSell       TxnKind = "STOCK_SELL"
	TxnMFPurchase      TxnKind = "MF_PURCHASE"
	TxnMFRedemption    TxnKind = "MF_REDEMPTION"
	TxnDividend        TxnKind = "DIVIDEND"
	TxnBankInterest    TxnKind = "BANK_INTEREST"
	TxnSalaryCredit    TxnKind = "SALARY_CREDIT"
	TxnRSUVest         TxnKind = "RSU_VEST"
	TxnESPPPurchase    TxnKind = "ESPP_PURCHASE"
	TxnForeignSale     TxnKind = "FOREIGN_SALE"
	TxnPPFContribution TxnKind = "PPF_CONTRIBUTION"
	TxnEPFContribution TxnKind = "EPF_CONTRIBUTION"
	TxnLoanDisbursement TxnKind = "LOAN_DISBURSEMENT"
	TxnLoanEMI         TxnKind = "LOAN_EMI"
)

// LegRole distinguishes the two legs of a posting-rule row so the same
// TxnKind can route gains differently from principal (spec.md §4.2 table).
type LegRole string

const (
	LegPrincipalDebit LegRole = "PRINCIPAL_DEBIT"
	LegPrincipalCredit LegRole = "PRINCIPAL_CREDIT"
	LegGainCredit      LegRole = "GAIN_CREDIT"
	LegGainDebit       LegRole = "GAIN_DEBIT"
	LegTDSDebit        LegRole = "TDS_DEBIT"
)

// CostMethod is FIFO or AVERAGE, spec.md §4.3.
type CostMethod string

const (
	CostFIFO    CostMethod = "FIFO"
	CostAverage CostMethod = "AVERAGE"
)

// OnConflict governs how the Transaction Service upserts an AssetRecord,
// spec.md §4.4.
type OnConflict string

const (
	ConflictIgnore  OnConflict = "IGNORE"
	ConflictReplace OnConflict = "REPLACE"
	ConflictFail    OnConflict = "FAIL"
)

// RecordStatus mirrors the Result discriminator from spec.md §9
// ("Exceptions-for-control-flow. Replaced with typed result values").
type RecordStatus string

const (
	StatusSuccess RecordStatus = "SUCCESS"
	StatusFailed  RecordStatus = "FAILED"
)

// FileStatus / BatchStatus back ProcessedFile / BatchRun (spec.md §3, §4.6).
type FileStatus string

const (
	FileSkipped FileStatus = "SKIPPED"
	FileSuccess FileStatus = "SUCCESS"
	FileFailed  FileStatus = "FAILED"
)

type BatchStatus string

const (
	BatchRunning BatchStatus = "RUNNING"
	BatchSuccess BatchStatus = "SUCCESS"
	BatchFailed  BatchStatus = "FAILED"
)

// IncomeType / SubClassification bucket IncomeRecord rows for the
// aggregator and advance-tax calculator, spec.md §4.8.
type IncomeType string

const (
	IncomeSalary         IncomeType = "SALARY"
	IncomeCapitalGains   IncomeType = "CAPITAL_GAINS"
	IncomeOtherSources   IncomeType = "OTHER_SOURCES"
	IncomeHouseProperty  IncomeType = "HOUSE_PROPERTY"
	IncomeBusiness       IncomeType = "BUSINESS"
	IncomeForeign        IncomeType = "FOREIGN"
)

type SubClassification string

const (
	SubSTCG        SubClassification = "STCG"
	SubLTCG        SubClassification = "LTCG"
	SubSpeculative SubClassification = "SPECULATIVE"
	SubDelivery    SubClassification = "DELIVERY"
	SubIntraday    SubClassification = "INTRADAY"
	SubFNO         SubClassification = "FNO"
	SubDividend    SubClassification = "DIVIDEND"
	SubInterest    SubClassification = "INTEREST"
)

// TaxRateType tags the rate a bucket of income is taxed at — spec.md §4.8
// step 1/5 ("applicable_tax_rate_type").
type TaxRateType string

const (
	RateSlab     TaxRateType = "SLAB"
	RateFlat10   TaxRateType = "FLAT_10"
	RateFlat12_5 TaxRateType = "FLAT_12.5"
	RateFlat15   TaxRateType = "FLAT_15"
	RateFlat20   TaxRateType = "FLAT_20"
)

// TaxRegime is OLD or NEW, spec.md §4.8.
type TaxRegime string

const (
	RegimeOld TaxRegime = "OLD"
	RegimeNew TaxRegime = "NEW"
)

// MatchResult / Severity / SuspenseStatus back the Golden-Reference engine,
// spec.md §4.10.
type MatchResult string

const (
	MatchExact           MatchResult = "EXACT"
	MatchWithinTolerance MatchResult = "WITHIN_TOLERANCE"
	MatchMismatch        MatchResult = "MISMATCH"
	MatchMissingGolden   MatchResult = "MISSING_GOLDEN"
	MatchMissingSystem   MatchResult = "MISSING_SYSTEM"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

type SuspenseStatus string

const (
	SuspenseOpen       SuspenseStatus = "OPEN"
	SuspenseInProgress SuspenseStatus = "IN_PROGRESS"
	SuspenseResolved   SuspenseStatus = "RESOLVED"
	SuspenseWrittenOff SuspenseStatus = "WRITTEN_OFF"
)

// ReconciliationMode governs how often the golden-reference engine runs,
// read from reconciliation.json (spec.md §6).
type ReconciliationMode string

const (
	ReconManual    ReconciliationMode = "manual"
	ReconScheduled ReconciliationMode = "scheduled"
	ReconOnIngest  ReconciliationMode = "on_ingest"
)
