package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tmcfarlane/payables-booking-service/internal/model"
	"github.com/tmcfarlane/payables-booking-service/internal/xero"
)

// AccountHandler exposes expense-account inspection and resolution for
// admin and debugging callers.
type AccountHandler struct {
	accounts *xero.AccountResolver
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *xero.AccountResolver) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
	}
}

// RegisterRoutes registers the handler's routes with the given router
func (h *AccountHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/v1/accounts/expense", h.ListExpenseAccounts)
	router.GET("/v1/accounts/mapping", h.CachedMapping)
	router.POST("/v1/accounts/resolve", h.ResolveAccount)
}

// ListExpenseAccounts returns all EXPENSE accounts from the ledger
// @Summary List expense accounts
// @Description Returns all EXPENSE accounts (name and code), populating the cache if empty
// @Tags accounts
// @Produce json
// @Success 200 {array} xero.Account
// @Failure 401 {object} model.ErrorResponse "Reauthentication required"
// @Router /v1/accounts/expense [get]
func (h *AccountHandler) ListExpenseAccounts(c *gin.Context) {
	accounts, err := h.accounts.ListExpenseAccounts(c.Request.Context())
	if err != nil {
		respondBookingError(c, err)
		return
	}
	respondOK(c, accounts)
}

// CachedMapping dumps the in-process category-to-code cache
// @Summary Dump the account cache
// @Description Returns the current in-process category-to-account-code mapping without populating it
// @Tags accounts
// @Produce json
// @Success 200 {object} map[string]string
// @Router /v1/accounts/mapping [get]
func (h *AccountHandler) CachedMapping(c *gin.Context) {
	respondOK(c, h.accounts.CachedMapping())
}

// ResolveAccount resolves one category to an account code
// @Summary Resolve a category to an account code
// @Description Resolves a free-text category, optionally allowing account creation ("create_allowed")
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body model.ResolveAccountRequest true "Category and mode"
// @Success 200 {object} model.ResolveAccountResponse
// @Failure 400 {object} model.ErrorResponse "Missing category or unknown mode"
// @Failure 422 {object} model.ErrorResponse "Category could not be resolved"
// @Router /v1/accounts/resolve [post]
func (h *AccountHandler) ResolveAccount(c *gin.Context) {
	var request model.ResolveAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if request.Category == "" {
		respondBadRequest(c, "category is required")
		return
	}

	mode := xero.ExistingOnly
	switch request.Mode {
	case "", "existing_only":
	case "create_allowed":
		mode = xero.CreateAllowed
	default:
		respondBadRequest(c, "mode must be existing_only or create_allowed")
		return
	}

	code, err := h.accounts.Resolve(c.Request.Context(), request.Category, mode)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	respondOK(c, model.ResolveAccountResponse{
		Category:    request.Category,
		AccountCode: code,
	})
}
