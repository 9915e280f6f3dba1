package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the abstract error kinds from spec.md §7. Callers
// branch on Kind with errors.As, not on string matching, mirroring the
// teacher's PostingError{Code, Message} shape (posting_engine.go) but made
// wrap-able so a Kind survives through fmt.Errorf("%w", ...) chains.
type ErrorKind string

const (
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindInvalid               ErrorKind = "INVALID"
	KindDuplicateKey          ErrorKind = "DUPLICATE_KEY"
	KindUnbalancedJournal     ErrorKind = "UNBALANCED_JOURNAL"
	KindInsufficientUnits     ErrorKind = "INSUFFICIENT_UNITS"
	KindAccountingBalance     ErrorKind = "ACCOUNTING_BALANCE_ERROR"
	KindParseError            ErrorKind = "PARSE_ERROR"
	KindPasswordRequired      ErrorKind = "PASSWORD_REQUIRED"
	KindInvalidPassword       ErrorKind = "INVALID_PASSWORD"
	KindStorageError          ErrorKind = "STORAGE_ERROR"
	KindBatchIngestionError   ErrorKind = "BATCH_INGESTION_ERROR"
)

// Error is the single error type every component in pfas returns for
// domain-level failures. Plain Go errors (programmer mistakes, context
// cancellation) are returned unwrapped.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, &Error{Kind: KindNotFound}) match on Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func NewNotFound(msg string) *Error            { return New(KindNotFound, msg) }
func NewInvalid(msg string) *Error             { return New(KindInvalid, msg) }
func NewDuplicateKey(msg string) *Error        { return New(KindDuplicateKey, msg) }
func NewUnbalancedJournal(msg string) *Error   { return New(KindUnbalancedJournal, msg) }
func NewInsufficientUnits(msg string) *Error   { return New(KindInsufficientUnits, msg) }
func NewAccountingBalance(msg string) *Error   { return New(KindAccountingBalance, msg) }
func NewParseError(msg string) *Error          { return New(KindParseError, msg) }
func NewPasswordRequired(msg string) *Error    { return New(KindPasswordRequired, msg) }
func NewInvalidPassword(msg string) *Error     { return New(KindInvalidPassword, msg) }
func WrapStorageError(msg string, cause error) *Error {
	return Wrap(KindStorageError, msg, cause)
}
func WrapBatchIngestionError(msg string, cause error) *Error {
	return Wrap(KindBatchIngestionError, msg, cause)
}

// IsKind is a convenience wrapper around errors.Is for a bare Kind check.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
