package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every LedgerError unwraps to exactly one of these so callers
// can branch with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency unavailable")
	ErrUnaudited  = errors.New("committed but unaudited")
)

// Repository errors
var (
	ErrLoanNotFound     = errors.New("loan not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrOptimisticLock   = errors.New("version mismatch - optimistic lock failed")
	ErrPaymentIDTaken   = errors.New("payment id already in use")
	ErrInstallmentTaken = errors.New("installment already has a payment")
	ErrIDSpaceExhausted = errors.New("identifier retry budget exhausted")
)

// LedgerError carries enough context for a caller to decide whether to
// retry, correct the input or escalate.
type LedgerError struct {
	Kind              error
	LoanID            string
	InstallmentNumber int
	Reason            string
	Err               error
}

func (e *LedgerError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.LoanID != "" {
		fmt.Fprintf(&b, " (loan_id=%s", e.LoanID)
		if e.InstallmentNumber > 0 {
			fmt.Fprintf(&b, ", installment=%d", e.InstallmentNumber)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LedgerError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewValidationError(loanID string, installment int, reason string) error {
	return &LedgerError{Kind: ErrValidation, LoanID: loanID, InstallmentNumber: installment, Reason: reason}
}

func NewNotFoundError(loanID string, installment int, reason string, err error) error {
	return &LedgerError{Kind: ErrNotFound, LoanID: loanID, InstallmentNumber: installment, Reason: reason, Err: err}
}

func NewConflictError(loanID string, installment int, reason string, err error) error {
	return &LedgerError{Kind: ErrConflict, LoanID: loanID, InstallmentNumber: installment, Reason: reason, Err: err}
}

func NewDependencyError(loanID string, installment int, reason string, err error) error {
	return &LedgerError{Kind: ErrDependency, LoanID: loanID, InstallmentNumber: installment, Reason: reason, Err: err}
}

// NewUnauditedError reports a mutation that committed but whose audit entry
// could not be written. The mutation is not rolled back.
func NewUnauditedError(loanID string, installment int, err error) error {
	return &LedgerError{Kind: ErrUnaudited, LoanID: loanID, InstallmentNumber: installment, Reason: "audit append failed after commit", Err: err}
}

// AsLedgerError extracts the LedgerError from an error chain.
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
