package xero

import (
	"fmt"
	"strings"
)

// AuthError reports missing, corrupt, or expired credentials. It is never
// retried beyond the single refresh-and-retry and is user-actionable
// (reauthenticate).
type AuthError struct {
	Op  string // Operation that caused the error
	Err error  // Original error, if any
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Err == nil {
		return "xero auth: " + e.Op
	}
	return "xero auth: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AuthError) Unwrap() error {
	return e.Err
}

// ResolutionError reports that a category has no matching expense account in
// strict mode. It lists the known account names to aid correction upstream.
type ResolutionError struct {
	Category string
	Known    []string
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no expense account matches category %q; known accounts: %s",
		e.Category, strings.Join(e.Known, ", "))
}

// TaxRateError reports that a tax rate could not be found or created.
type TaxRateError struct {
	Rate float64
	Body string
	Err  error
}

// Error implements the error interface
func (e *TaxRateError) Error() string {
	msg := fmt.Sprintf("tax rate for %g%% could not be resolved", e.Rate)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *TaxRateError) Unwrap() error {
	return e.Err
}

// BookingError reports that the ledger API rejected an invoice. Body carries
// the raw response text verbatim for operator diagnosis.
type BookingError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *BookingError) Error() string {
	return fmt.Sprintf("xero rejected invoice (HTTP %d): %s", e.StatusCode, e.Body)
}
