package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tmcfarlane/payables-booking-service/internal/domain"
	"github.com/tmcfarlane/payables-booking-service/internal/model"
	"github.com/tmcfarlane/payables-booking-service/internal/xero"
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, message string, details ...model.ErrorDetail) {
	response := model.ErrorResponse{
		Status:  http.StatusText(statusCode),
		Message: message,
		Details: details,
	}
	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, http.StatusBadRequest, message, details...)
}

// respondInternalServerError sends a 500 Internal Server Error response
func respondInternalServerError(c *gin.Context, message string) {
	respondWithError(c, http.StatusInternalServerError, message)
}

// respondOK sends a 200 OK response with data
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// respondBookingError maps the booking error taxonomy onto HTTP statuses:
// malformed drafts are the caller's fault, auth errors need reauthentication,
// unresolvable categories are actionable 422s, and ledger rejections
// surface as a bad gateway with the raw response text.
func respondBookingError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var authErr *xero.AuthError
	var resolutionErr *xero.ResolutionError
	var taxRateErr *xero.TaxRateError
	var bookingErr *xero.BookingError

	switch {
	case errors.As(err, &validationErr):
		respondBadRequest(c, validationErr.Error(),
			model.ErrorDetail{Field: validationErr.Field, Message: validationErr.Reason})
	case errors.As(err, &authErr):
		respondWithError(c, http.StatusUnauthorized, authErr.Error())
	case errors.As(err, &resolutionErr):
		respondWithError(c, http.StatusUnprocessableEntity, resolutionErr.Error())
	case errors.As(err, &taxRateErr):
		respondWithError(c, http.StatusBadGateway, taxRateErr.Error())
	case errors.As(err, &bookingErr):
		respondWithError(c, http.StatusBadGateway, bookingErr.Error())
	default:
		respondInternalServerError(c, err.Error())
	}
}
