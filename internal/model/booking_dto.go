package model

import (
	"encoding/base64"
	"fmt"

	"github.com/tmcfarlane/payables-booking-service/internal/domain"
)

// LineItemDTO is one invoice line as received over HTTP.
type LineItemDTO struct {
	Description string  `json:"description" example:"Office chairs"`
	Amount      float64 `json:"amount" example:"200"`
	Category    string  `json:"category,omitempty" example:"Office Equipment"`
}

// BookingRequest is the request body for booking a payable invoice.
type BookingRequest struct {
	InvoiceNumber string          `json:"invoice_number" example:"INV-001"`
	Supplier      string          `json:"supplier" example:"Lakeside Business Center AG"`
	Date          domain.FlexDate `json:"date" swaggertype:"string" example:"2025-06-15"`
	DueDate       domain.FlexDate `json:"due_date,omitempty" swaggertype:"string" example:"15/07/2025"`
	CurrencyCode  string          `json:"currency_code,omitempty" example:"CHF"`
	Total         float64         `json:"total" example:"250"`
	VATRate       float64         `json:"vat_rate" example:"8.1"`
	LineItems     []LineItemDTO   `json:"line_items"`

	// PDFBase64 optionally carries the source document for attachment.
	PDFBase64 string `json:"pdf_base64,omitempty"`
}

// ToDomain converts the request into an invoice draft.
func (r *BookingRequest) ToDomain() (*domain.InvoiceDraft, error) {
	draft := &domain.InvoiceDraft{
		InvoiceNumber: r.InvoiceNumber,
		Supplier:      r.Supplier,
		Date:          r.Date,
		DueDate:       r.DueDate,
		CurrencyCode:  r.CurrencyCode,
		Total:         r.Total,
		VATRate:       r.VATRate,
		LineItems:     make([]domain.LineItem, 0, len(r.LineItems)),
	}
	for _, li := range r.LineItems {
		draft.LineItems = append(draft.LineItems, domain.LineItem{
			Description: li.Description,
			Amount:      li.Amount,
			Category:    li.Category,
		})
	}
	if r.PDFBase64 != "" {
		pdf, err := base64.StdEncoding.DecodeString(r.PDFBase64)
		if err != nil {
			return nil, fmt.Errorf("pdf_base64 is not valid base64: %w", err)
		}
		draft.PDF = pdf
	}
	return draft, nil
}

// BookingSuccessResponse wraps a booking result for HTTP callers.
type BookingSuccessResponse struct {
	Success bool                  `json:"success" example:"true"`
	Result  *domain.BookingResult `json:"result"`
}

// ResolveAccountRequest asks for a category-to-account resolution.
type ResolveAccountRequest struct {
	Category string `json:"category" example:"Office Supplies"`
	// Mode is "existing_only" (default) or "create_allowed".
	Mode string `json:"mode,omitempty" example:"existing_only"`
}

// ResolveAccountResponse carries the resolved account code.
type ResolveAccountResponse struct {
	Category    string `json:"category"`
	AccountCode string `json:"account_code"`
}

// ErrorDetail provides field-level error information
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}
