package handler

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/tmcfarlane/payables-booking-service/internal/domain"
	"github.com/tmcfarlane/payables-booking-service/internal/model"
	"github.com/tmcfarlane/payables-booking-service/internal/service"
)

// BookingHandler handles HTTP requests for booking payable invoices
type BookingHandler struct {
	booker service.BookingServicer
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(booker service.BookingServicer) *BookingHandler {
	return &BookingHandler{
		booker: booker,
	}
}

// RegisterRoutes registers the handler's routes with the given router
func (h *BookingHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/v1/invoices/book", h.BookInvoice)
	router.POST("/v1/invoices/batch", h.BookInvoicesBatch)
}

// BookInvoice handles a request to book a single payable invoice
// @Summary Book a payable invoice
// @Description Resolve categories to expense accounts and create a draft ACCPAY invoice in Xero, optionally attaching the source PDF
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body model.BookingRequest true "Invoice draft"
// @Success 200 {object} model.BookingSuccessResponse "Invoice booked"
// @Failure 400 {object} model.ErrorResponse "Malformed draft"
// @Failure 401 {object} model.ErrorResponse "Reauthentication required"
// @Failure 422 {object} model.ErrorResponse "Category could not be resolved"
// @Failure 502 {object} model.ErrorResponse "Ledger rejected the invoice"
// @Router /v1/invoices/book [post]
func (h *BookingHandler) BookInvoice(c *gin.Context) {
	var request model.BookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := request.ToDomain()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	log.Printf("Booking invoice %s from %s (%d line items)",
		draft.InvoiceNumber, draft.Supplier, len(draft.LineItems))
	result, err := h.booker.BookInvoice(c.Request.Context(), draft)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	respondOK(c, model.BookingSuccessResponse{
		Success: true,
		Result:  result,
	})
}

// BookInvoicesBatch handles a request to book multiple invoice drafts
// @Summary Book a batch of payable invoices
// @Description Categorize uncategorized line items, then book each draft; failures are isolated per item and the response preserves input order
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoices body []model.BookingRequest true "Invoice drafts"
// @Success 200 {array} domain.BatchItemResult "One result or error per draft"
// @Failure 400 {object} model.ErrorResponse "Malformed request body"
// @Router /v1/invoices/batch [post]
func (h *BookingHandler) BookInvoicesBatch(c *gin.Context) {
	var requests []model.BookingRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	drafts := make([]*domain.InvoiceDraft, 0, len(requests))
	for i := range requests {
		draft, err := requests[i].ToDomain()
		if err != nil {
			// A draft that cannot even be decoded still occupies its slot.
			draft = &domain.InvoiceDraft{InvoiceNumber: requests[i].InvoiceNumber}
		}
		drafts = append(drafts, draft)
	}

	log.Printf("Booking batch of %d invoices", len(drafts))
	results := h.booker.BookInvoicesBatch(c.Request.Context(), drafts)
	respondOK(c, results)
}
