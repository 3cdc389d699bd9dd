package service

import (
	"context"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/tmcfarlane/payables-booking-service/internal/domain"
	"github.com/tmcfarlane/payables-booking-service/internal/xero"
)

// FallbackCategory is assigned to line items nothing else could classify.
const FallbackCategory = "General Expenses"

// categorizerThreshold is the minimum similarity between a line item
// description and an account name for the match to be used.
const categorizerThreshold = 0.60

// CategorizationRequest carries one draft's line items plus the accounts
// they may be assigned to.
type CategorizationRequest struct {
	InvoiceNumber   string
	Supplier        string
	LineItems       []domain.LineItem
	AllowedAccounts []xero.Account
}

// CategoryAssignment maps one line item description to a category.
type CategoryAssignment struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	AccountName string `json:"account_name"`
	AccountCode string `json:"account_code"`
}

// CategorizationResult is the collaborator's answer for one draft.
type CategorizationResult struct {
	Categories []CategoryAssignment `json:"categories"`
}

// Categorizer assigns expense categories to uncategorized line items. The
// production deployment may plug in an LLM-backed implementation; the
// default is similarity-based matching against the allowed account names.
type Categorizer interface {
	Categorize(ctx context.Context, req CategorizationRequest) (*CategorizationResult, error)
}

// FuzzyCategorizer matches line item descriptions to allowed account names
// with a partial-overlap string similarity.
type FuzzyCategorizer struct {
	metric *metrics.SorensenDice
}

// NewFuzzyCategorizer creates a new fuzzy categorizer.
func NewFuzzyCategorizer() *FuzzyCategorizer {
	m := metrics.NewSorensenDice()
	m.CaseSensitive = false
	m.NgramSize = 2
	return &FuzzyCategorizer{metric: m}
}

// Categorize assigns each line item the best-matching allowed account name,
// falling back to the first "General*" account and then FallbackCategory.
func (f *FuzzyCategorizer) Categorize(_ context.Context, req CategorizationRequest) (*CategorizationResult, error) {
	fallback := f.fallbackAccount(req.AllowedAccounts)

	result := &CategorizationResult{Categories: make([]CategoryAssignment, 0, len(req.LineItems))}
	for _, li := range req.LineItems {
		account := fallback
		bestScore := 0.0
		for _, candidate := range req.AllowedAccounts {
			score := strutil.Similarity(li.Description, candidate.Name, f.metric)
			if score > bestScore {
				bestScore = score
				if score >= categorizerThreshold {
					account = candidate
				}
			}
		}
		result.Categories = append(result.Categories, CategoryAssignment{
			Description: li.Description,
			Category:    account.Name,
			AccountName: account.Name,
			AccountCode: account.Code,
		})
	}
	return result, nil
}

// fallbackAccount picks the catch-all account: the first one whose name
// starts with "general", else the first account, else General Expenses.
func (f *FuzzyCategorizer) fallbackAccount(allowed []xero.Account) xero.Account {
	for _, acc := range allowed {
		if strings.HasPrefix(strings.ToLower(acc.Name), "general") {
			return acc
		}
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	return xero.Account{Name: FallbackCategory, Code: xero.GeneralExpensesCode}
}
