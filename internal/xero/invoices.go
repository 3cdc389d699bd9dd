package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
)

// InvoiceLine is one resolved line item ready for submission: the account
// code has already been resolved and the tax type chosen.
type InvoiceLine struct {
	Description string  `json:"Description"`
	Quantity    float64 `json:"Quantity"`
	UnitAmount  float64 `json:"UnitAmount"`
	AccountCode string  `json:"AccountCode"`
	TaxType     string  `json:"TaxType,omitempty"`
}

// InvoiceRequest is a fully resolved ACCPAY invoice for submission. Amounts
// are tax-exclusive; the ledger adds VAT per line from the tax type.
type InvoiceRequest struct {
	InvoiceNumber string
	Supplier      string
	Date          string // YYYY-MM-DD
	DueDate       string // YYYY-MM-DD
	CurrencyCode  string
	Lines         []InvoiceLine
}

// Invoice is the ledger's record of a submitted invoice.
type Invoice struct {
	InvoiceID string  `json:"InvoiceID"`
	Status    string  `json:"Status"`
	Total     float64 `json:"Total"`
	DueDate   string  `json:"DueDateString"`
	Reference string  `json:"Reference"`
}

// UnmarshalJSON tolerates responses that carry DueDate but not DueDateString.
func (inv *Invoice) UnmarshalJSON(b []byte) error {
	type alias Invoice
	aux := struct {
		*alias
		DueDateAlt string `json:"DueDate"`
	}{alias: (*alias)(inv)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if inv.DueDate == "" {
		inv.DueDate = aux.DueDateAlt
	}
	return nil
}

// CreateInvoice submits a draft ACCPAY invoice. The POST is the atomic
// commit point: any failure before a 2xx leaves nothing half-submitted.
// Non-2xx responses surface as a BookingError carrying the raw body.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	currency := req.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	payload, err := json.Marshal(map[string]any{
		"Invoices": []map[string]any{{
			"Type":            "ACCPAY",
			"Contact":         map[string]string{"Name": req.Supplier},
			"Date":            req.Date,
			"DueDate":         req.DueDate,
			"LineAmountTypes": "Exclusive",
			"LineItems":       req.Lines,
			"InvoiceNumber":   req.InvoiceNumber,
			"Reference":       req.InvoiceNumber,
			"CurrencyCode":    currency,
			"Status":          "DRAFT",
		}},
	})
	if err != nil {
		return nil, err
	}

	status, body, err := c.postJSON(ctx, "/Invoices", payload)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &BookingError{StatusCode: status, Body: string(body)}
	}

	var envelope struct {
		Invoices []Invoice `json:"Invoices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Invoices) == 0 {
		return nil, &BookingError{StatusCode: status, Body: string(body)}
	}
	return &envelope.Invoices[0], nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AttachmentFilename builds a safe PDF filename from an invoice number.
func AttachmentFilename(invoiceNumber string) string {
	name := unsafeFilenameChars.ReplaceAllString(invoiceNumber, "_")
	if name == "" {
		name = "invoice"
	}
	return name + ".pdf"
}

// UploadAttachment uploads raw PDF bytes to an existing invoice. Callers
// treat a failure here as non-fatal: an already-booked invoice is more
// valuable than a clean failure.
func (c *Client) UploadAttachment(ctx context.Context, invoiceID, filename string, pdf []byte) error {
	path := fmt.Sprintf("/Invoices/%s/Attachments/%s", url.PathEscape(invoiceID), url.PathEscape(filename))
	status, body, err := c.putRaw(ctx, path, "application/pdf", pdf)
	if err != nil {
		return err
	}
	if !is2xx(status) {
		return fmt.Errorf("attachment upload failed (HTTP %d): %s", status, string(body))
	}
	return nil
}
