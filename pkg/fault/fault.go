// Package fault is the error taxonomy shared by the event substrate and the
// ledger services. Consumers use the kind of an error to decide between
// retrying (transient), dead-lettering (validation, governance) and silently
// absorbing duplicates.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the consumer runner and the HTTP layer.
type Kind int

const (
	// KindInternal is the zero value: unexpected failures.
	KindInternal Kind = iota
	// KindValidation marks malformed or logically inconsistent payloads.
	KindValidation
	// KindGovernance marks ledger-state rejections: closed periods, missing
	// or inactive accounts. Retrying cannot fix these.
	KindGovernance
	// KindNotFound marks missing referenced data.
	KindNotFound
	// KindConflict marks already-closed/already-done conflicts.
	KindConflict
	// KindDuplicate marks re-delivery of an already-processed event. A normal
	// path, not an error condition.
	KindDuplicate
	// KindTransient marks failures worth retrying: connection loss, publish
	// failure, serialization conflicts.
	KindTransient
)

// Error codes used across the substrate.
const (
	CodeNotBalanced         = "NOT_BALANCED"
	CodeNoPeriodForDate     = "NO_PERIOD_FOR_DATE"
	CodePeriodClosed        = "PERIOD_CLOSED"
	CodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	CodeAccountInactive     = "ACCOUNT_INACTIVE"
	CodeEntryNotFound       = "ENTRY_NOT_FOUND"
	CodeAlreadyReversed     = "ALREADY_REVERSED"
	CodePeriodAlreadyClosed = "PERIOD_ALREADY_CLOSED"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeDuplicateEvent      = "DUPLICATE_EVENT"
	CodeHashMismatch        = "HASH_MISMATCH"
	CodeTransient           = "TRANSIENT"
)

// Error is a classified error.
type Error struct {
	kind Kind
	code string
	msg  string
	err  error
}

// New creates a classified error.
func New(kind Kind, code, format string, args ...any) *Error {
	return &Error{kind: kind, code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, code string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, code: code, msg: err.Error(), err: err}
}

// Wrapf classifies an underlying error with a contextual message.
func Wrapf(kind Kind, code string, err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, code: code, msg: fmt.Sprintf(format, args...) + ": " + err.Error(), err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the classification.
func (e *Error) Kind() Kind { return e.kind }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or empty for unclassified errors.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.code
	}
	return ""
}

// Recoverable reports whether the consumer should retry err. Only transient
// failures are retried; validation and governance rejections reflect data the
// caller cannot fix by retrying, and internal errors need an operator.
func Recoverable(err error) bool {
	return KindOf(err) == KindTransient
}

// IsDuplicate reports whether err marks an already-processed event.
func IsDuplicate(err error) bool {
	return KindOf(err) == KindDuplicate
}
