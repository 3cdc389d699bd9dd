package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexDate is a custom type for the date strings suppliers put on invoices.
// It accepts ISO dates ("2006-01-02") and day-first slash dates
// ("02/01/2006"), which is how European invoice dates are written.
type FlexDate struct {
	time.Time
}

var flexDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
}

// ParseFlexDate parses a date string in any of the accepted layouts.
func ParseFlexDate(s string) (FlexDate, error) {
	if s == "" {
		return FlexDate{}, nil
	}
	for _, layout := range flexDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FlexDate{t}, nil
		}
	}
	return FlexDate{}, fmt.Errorf("unrecognized date format: %q", s)
}

// UnmarshalJSON implements custom unmarshaling for invoice date strings
func (d *FlexDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	// Handle null/empty dates
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseFlexDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// MarshalJSON implements custom marshaling for invoice date strings
func (d FlexDate) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format("2006-01-02"))
}

// ISO returns the date formatted as YYYY-MM-DD, or "" for the zero date.
func (d FlexDate) ISO() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// LineItem represents a single item on a payable invoice. Amount is the net
// (pre-tax) amount. Category is free text and is resolved to a ledger
// account code during booking.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
}

// InvoiceDraft is a validated, transient invoice waiting to be booked. The
// source of truth after submission is the ledger's invoice ID; drafts are
// never persisted locally.
type InvoiceDraft struct {
	InvoiceNumber string     `json:"invoice_number"`
	Supplier      string     `json:"supplier"`
	Date          FlexDate   `json:"date"`
	DueDate       FlexDate   `json:"due_date,omitempty"`
	CurrencyCode  string     `json:"currency_code,omitempty"`
	Total         float64    `json:"total"`
	VATRate       float64    `json:"vat_rate"`
	LineItems     []LineItem `json:"line_items"`

	// PDF holds the source document bytes when the caller wants it attached
	// to the booked invoice. Optional.
	PDF []byte `json:"-"`
}

// ValidationError reports a malformed invoice draft. It is raised before
// any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns a string representation of the error
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid invoice draft: field %q %s", e.Field, e.Reason)
}

// Validate checks the draft for required fields and expected shapes.
func (d *InvoiceDraft) Validate() error {
	if d.InvoiceNumber == "" {
		return &ValidationError{Field: "invoice_number", Reason: "is required"}
	}
	if d.Supplier == "" {
		return &ValidationError{Field: "supplier", Reason: "is required"}
	}
	if d.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if d.Total <= 0 {
		return &ValidationError{Field: "total", Reason: "must be a positive amount"}
	}
	if d.VATRate < 0 {
		return &ValidationError{Field: "vat_rate", Reason: "must not be negative"}
	}
	if len(d.LineItems) == 0 {
		return &ValidationError{Field: "line_items", Reason: "must be a non-empty list"}
	}
	for i, li := range d.LineItems {
		if li.Description == "" {
			return &ValidationError{Field: fmt.Sprintf("line_items[%d].description", i), Reason: "is required"}
		}
		if li.Amount <= 0 {
			return &ValidationError{Field: fmt.Sprintf("line_items[%d].amount", i), Reason: "must be a positive amount"}
		}
	}
	return nil
}

// EffectiveDueDate returns the draft's due date, defaulting to the invoice
// date plus 30 days when absent.
func (d *InvoiceDraft) EffectiveDueDate() FlexDate {
	if !d.DueDate.IsZero() {
		return d.DueDate
	}
	return FlexDate{d.Date.AddDate(0, 0, 30)}
}

// Attachment upload outcomes reported on a BookingResult.
const (
	AttachmentUploaded = "uploaded"
	AttachmentFailed   = "failed"
)

// BatchItemResult is one slot of a batch booking outcome: either a result
// or an error message, in the same position as the input draft.
type BatchItemResult struct {
	Result *BookingResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// BookingResult is the outcome of booking one invoice draft. A failed
// attachment upload degrades the result, it never invalidates it.
type BookingResult struct {
	InvoiceID        string  `json:"xero_invoice_id"`
	Status           string  `json:"status"`
	Total            float64 `json:"total"`
	DueDate          string  `json:"due_date"`
	Reference        string  `json:"reference"`
	AttachmentStatus string  `json:"attachment_status,omitempty"`
	AttachmentError  string  `json:"attachment_error,omitempty"`
}
