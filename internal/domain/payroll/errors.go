package payroll

import (
	"errors"
	"fmt"
)

// ErrorKind classifies calculation and posting failures so the transport
// layer can map them to status codes without string matching.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConfiguration  ErrorKind = "configuration"
	KindState          ErrorKind = "state"
	KindReconciliation ErrorKind = "reconciliation"
)

// Error carries enough context (staff, period, field) for the caller to act
// on. Core functions fail fast with one of these; they never log or retry.
type Error struct {
	Kind    ErrorKind
	StaffID string
	Period  Period
	Field   string
	Message string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		msg += " (field " + e.Field + ")"
	}
	if e.StaffID != "" {
		msg += fmt.Sprintf(" [staff %s period %s]", e.StaffID, e.Period)
	}
	return msg
}

func validationError(staffID string, period Period, field, message string) *Error {
	return &Error{Kind: KindValidation, StaffID: staffID, Period: period, Field: field, Message: message}
}

func configurationError(field, message string) *Error {
	return &Error{Kind: KindConfiguration, Field: field, Message: message}
}

func stateError(staffID string, period Period, message string) *Error {
	return &Error{Kind: KindState, StaffID: staffID, Period: period, Message: message}
}

func reconciliationError(message string) *Error {
	return &Error{Kind: KindReconciliation, Message: message}
}

// IsKind reports whether err is a payroll Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind == kind
	}
	return false
}

var (
	ErrSalaryNotFound = errors.New("salary record not found")
	ErrEntryNotFound  = errors.New("ledger entry not found")
)
