package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgreSQL booking repository
func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// RecordBooking stores the outcome of a successful booking
func (r *PostgresBookingRepository) RecordBooking(ctx context.Context, record *BookingRecord) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO bookings (xero_invoice_id, invoice_number, supplier, total, currency_code, due_date, status, attachment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, record.XeroInvoiceID, record.InvoiceNumber, record.Supplier, record.Total,
		record.CurrencyCode, record.DueDate, record.Status, record.AttachmentStatus).Scan(
		&record.ID, &record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking record: %w", err)
	}
	return nil
}

// ListBookings retrieves recorded bookings with pagination, newest first
func (r *PostgresBookingRepository) ListBookings(ctx context.Context, offset, limit int) ([]*BookingRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, xero_invoice_id, invoice_number, supplier, total, currency_code, due_date, status, attachment_status, created_at
		FROM bookings
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	records := []*BookingRecord{}
	for rows.Next() {
		var record BookingRecord
		if err := rows.Scan(
			&record.ID, &record.XeroInvoiceID, &record.InvoiceNumber, &record.Supplier,
			&record.Total, &record.CurrencyCode, &record.DueDate, &record.Status,
			&record.AttachmentStatus, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking records: %w", err)
	}

	return records, nil
}
