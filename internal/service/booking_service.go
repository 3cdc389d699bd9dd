package service

import (
	"context"
	"log"

	"github.com/tmcfarlane/payables-booking-service/internal/domain"
	"github.com/tmcfarlane/payables-booking-service/internal/repository"
	"github.com/tmcfarlane/payables-booking-service/internal/storage"
	"github.com/tmcfarlane/payables-booking-service/internal/xero"
)

// BookingServicer defines the interface for booking payable invoices
type BookingServicer interface {
	// BookInvoice books a single validated invoice draft as a draft bill
	BookInvoice(ctx context.Context, draft *domain.InvoiceDraft) (*domain.BookingResult, error)

	// BookInvoicesBatch categorizes and books a list of drafts, isolating
	// failures per item
	BookInvoicesBatch(ctx context.Context, drafts []*domain.InvoiceDraft) []domain.BatchItemResult
}

// BookingService orchestrates date normalization, tax-rate resolution,
// per-line account resolution, invoice submission, and optional PDF
// attachment into one booking operation.
type BookingService struct {
	client      *xero.Client
	accounts    *xero.AccountResolver
	taxRates    *xero.TaxRateResolver
	categorizer Categorizer
	repo        repository.BookingRepository
	archive     *storage.PDFArchiver
}

// NewBookingService creates a new booking service.
func NewBookingService(client *xero.Client, accounts *xero.AccountResolver, taxRates *xero.TaxRateResolver, categorizer Categorizer) *BookingService {
	return &BookingService{
		client:      client,
		accounts:    accounts,
		taxRates:    taxRates,
		categorizer: categorizer,
	}
}

// SetRepository sets the audit repository for booked invoices. Optional;
// recording failures are logged and never fail a booking.
func (s *BookingService) SetRepository(repo repository.BookingRepository) {
	s.repo = repo
}

// SetArchive sets the PDF archive. Optional; archiving is best-effort.
func (s *BookingService) SetArchive(archive *storage.PDFArchiver) {
	s.archive = archive
}

// BookInvoice runs the booking pipeline for one draft. Every stage failure
// is fatal for the draft except the attachment upload, which degrades the
// result instead.
func (s *BookingService) BookInvoice(ctx context.Context, draft *domain.InvoiceDraft) (*domain.BookingResult, error) {
	// 1. Validate before any network call.
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// 2. Dates: invoice date is already normalized by FlexDate parsing;
	// the due date defaults to invoice date + 30 days.
	invoiceDate := draft.Date.ISO()
	dueDate := draft.EffectiveDueDate().ISO()

	// 3. Tax type. Zero-rated invoices use the NONE sentinel and must never
	// trigger tax-rate traffic.
	taxType := xero.TaxTypeNone
	if draft.VATRate != 0 {
		resolved, err := s.taxRates.Resolve(ctx, draft.VATRate)
		if err != nil {
			return nil, err
		}
		taxType = resolved
	}

	// 4. Resolve every line item to an account code. The booking path is
	// strict: an unknown category fails the draft rather than misfiling it.
	lines := make([]xero.InvoiceLine, 0, len(draft.LineItems))
	for _, li := range draft.LineItems {
		if li.Category == "" {
			return nil, &domain.ValidationError{
				Field:  "line_items",
				Reason: "all line items need a category before booking",
			}
		}
		code, err := s.accounts.Resolve(ctx, li.Category, xero.ExistingOnly)
		if err != nil {
			return nil, err
		}
		lines = append(lines, xero.InvoiceLine{
			Description: li.Description,
			Quantity:    1,
			UnitAmount:  li.Amount,
			AccountCode: code,
			TaxType:     taxType,
		})
	}

	// 5. Submit. This is the atomic commit point.
	invoice, err := s.client.CreateInvoice(ctx, xero.InvoiceRequest{
		InvoiceNumber: draft.InvoiceNumber,
		Supplier:      draft.Supplier,
		Date:          invoiceDate,
		DueDate:       dueDate,
		CurrencyCode:  draft.CurrencyCode,
		Lines:         lines,
	})
	if err != nil {
		return nil, err
	}

	result := &domain.BookingResult{
		InvoiceID: invoice.InvoiceID,
		Status:    invoice.Status,
		Total:     invoice.Total,
		DueDate:   invoice.DueDate,
		Reference: invoice.Reference,
	}

	// 6. Optional attachment. Failure is recorded on the result, never
	// rolled back into a booking failure.
	if len(draft.PDF) > 0 {
		filename := xero.AttachmentFilename(draft.InvoiceNumber)
		if s.archive != nil {
			if _, err := s.archive.ArchivePDF(draft.PDF, filename); err != nil {
				log.Printf("Error archiving PDF for %s: %v", draft.InvoiceNumber, err)
			}
		}
		if err := s.client.UploadAttachment(ctx, invoice.InvoiceID, filename, draft.PDF); err != nil {
			result.AttachmentStatus = domain.AttachmentFailed
			result.AttachmentError = err.Error()
		} else {
			result.AttachmentStatus = domain.AttachmentUploaded
		}
	}

	if s.repo != nil {
		if err := s.repo.RecordBooking(ctx, repository.NewBookingRecord(draft, result)); err != nil {
			// Log the error but keep the successful result.
			log.Printf("Error recording booking %s: %v", invoice.InvoiceID, err)
		}
	}

	return result, nil
}

// BookInvoicesBatch applies categorization then booking across a list of
// drafts. A failure for one draft becomes an error slot; it never aborts
// sibling drafts, and the output preserves input order.
func (s *BookingService) BookInvoicesBatch(ctx context.Context, drafts []*domain.InvoiceDraft) []domain.BatchItemResult {
	results := make([]domain.BatchItemResult, len(drafts))

	for i, draft := range drafts {
		if err := s.categorizeMissing(ctx, draft); err != nil {
			log.Printf("Categorization failed for %s, defaulting categories: %v", draft.InvoiceNumber, err)
			for j := range draft.LineItems {
				if draft.LineItems[j].Category == "" {
					draft.LineItems[j].Category = FallbackCategory
				}
			}
		}

		result, err := s.BookInvoice(ctx, draft)
		if err != nil {
			results[i] = domain.BatchItemResult{Error: err.Error()}
			continue
		}
		results[i] = domain.BatchItemResult{Result: result}
	}

	return results
}

// categorizeMissing invokes the categorization collaborator once per draft
// when any line item lacks a category, and patches the missing ones from
// its description-to-category mapping.
func (s *BookingService) categorizeMissing(ctx context.Context, draft *domain.InvoiceDraft) error {
	needsCategory := false
	for _, li := range draft.LineItems {
		if li.Category == "" {
			needsCategory = true
			break
		}
	}
	if !needsCategory || s.categorizer == nil {
		return nil
	}

	allowed, err := s.accounts.ListExpenseAccounts(ctx)
	if err != nil {
		return err
	}

	categorized, err := s.categorizer.Categorize(ctx, CategorizationRequest{
		InvoiceNumber:   draft.InvoiceNumber,
		Supplier:        draft.Supplier,
		LineItems:       draft.LineItems,
		AllowedAccounts: allowed,
	})
	if err != nil {
		return err
	}

	byDescription := make(map[string]string, len(categorized.Categories))
	for _, c := range categorized.Categories {
		byDescription[c.Description] = c.Category
	}
	for j := range draft.LineItems {
		if draft.LineItems[j].Category != "" {
			continue
		}
		if category, ok := byDescription[draft.LineItems[j].Description]; ok && category != "" {
			draft.LineItems[j].Category = category
		} else {
			draft.LineItems[j].Category = FallbackCategory
		}
	}
	return nil
}
