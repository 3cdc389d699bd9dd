package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tmcfarlane/payables-booking-service/internal/repository"
)

// HistoryHandler exposes the booking audit log for operator inspection.
type HistoryHandler struct {
	repo repository.BookingRepository
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(repo repository.BookingRepository) *HistoryHandler {
	return &HistoryHandler{
		repo: repo,
	}
}

// RegisterRoutes registers the handler's routes with the given router
func (h *HistoryHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/v1/bookings", h.ListBookings)
}

// ListBookings returns recorded bookings, newest first
// @Summary List recorded bookings
// @Description Returns the booking audit log with pagination, newest first
// @Tags bookings
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size" default(50)
// @Success 200 {array} repository.BookingRecord
// @Failure 500 {object} model.ErrorResponse "Audit store unavailable"
// @Router /v1/bookings [get]
func (h *HistoryHandler) ListBookings(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondBadRequest(c, "offset must be a non-negative integer")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		respondBadRequest(c, "limit must be a non-negative integer")
		return
	}

	records, err := h.repo.ListBookings(c.Request.Context(), offset, limit)
	if err != nil {
		respondInternalServerError(c, err.Error())
		return
	}
	respondOK(c, records)
}
