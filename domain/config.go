package domain

import "github.com/shopspring/decimal"

// ToleranceConfig is the Cross Correlator's per-severity thresholds,
// spec.md §4.10 step 3/4.
type ToleranceConfig struct {
	AbsoluteTolerance   decimal.Decimal `json:"absolute_tolerance"`
	PercentageTolerance decimal.Decimal `json:"percentage_tolerance"`
	WarningThreshold    decimal.Decimal `json:"warning_threshold"`
	ErrorThreshold      decimal.Decimal `json:"error_threshold"`
	CriticalThreshold   decimal.Decimal `json:"critical_threshold"`
}

// ReconciliationConfig is the per-user reconciliation.json shape (spec.md
// §6). SourceOverrides keys are "<metric>:<asset_class>", values an
// ordered list of source names taking precedence over the Truth
// Resolver's code defaults.
type ReconciliationConfig struct {
	Mode            ReconciliationMode  `json:"mode"`
	Frequency       string              `json:"frequency"`
	SuspenseEnabled bool                `json:"suspense_enabled"`
	Tolerances      ToleranceConfig     `json:"tolerances"`
	SourceOverrides map[string][]string `json:"source_overrides"`
}

// PasswordStore is the per-user passwords.json shape (spec.md §6): a
// format/file name keyed to its decryption password.
type PasswordStore map[string]string

// ConfigSource lets the core consume per-user reconciliation and password
// configuration without owning its file-loading, which spec.md §1 lists as
// an external collaborator ("configuration-file loading").
type ConfigSource interface {
	ReconciliationConfigFor(userID string) (ReconciliationConfig, error)
	PasswordsFor(userID string) (PasswordStore, error)
}
