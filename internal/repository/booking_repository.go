package repository

import (
	"context"
	"time"

	"github.com/tmcfarlane/payables-booking-service/internal/domain"
)

// BookingRecord is the audit trail entry for one booked invoice.
type BookingRecord struct {
	ID               string    `json:"id,omitempty"`
	XeroInvoiceID    string    `json:"xero_invoice_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	Supplier         string    `json:"supplier"`
	Total            float64   `json:"total"`
	CurrencyCode     string    `json:"currency_code"`
	DueDate          string    `json:"due_date"`
	Status           string    `json:"status"`
	AttachmentStatus string    `json:"attachment_status,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// NewBookingRecord builds an audit record from a draft and its result.
func NewBookingRecord(draft *domain.InvoiceDraft, result *domain.BookingResult) *BookingRecord {
	return &BookingRecord{
		XeroInvoiceID:    result.InvoiceID,
		InvoiceNumber:    draft.InvoiceNumber,
		Supplier:         draft.Supplier,
		Total:            result.Total,
		CurrencyCode:     draft.CurrencyCode,
		DueDate:          result.DueDate,
		Status:           result.Status,
		AttachmentStatus: result.AttachmentStatus,
	}
}

// BookingRepository defines the interface for the booking audit log
type BookingRepository interface {
	// RecordBooking stores the outcome of a successful booking
	RecordBooking(ctx context.Context, record *BookingRecord) error

	// ListBookings retrieves recorded bookings with pagination, newest first
	ListBookings(ctx context.Context, offset, limit int) ([]*BookingRecord, error)
}
