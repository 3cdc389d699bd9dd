package service

import (
	"context"
	"testing"

	"github.com/tmcfarlane/payables-booking-service/internal/domain"
	"github.com/tmcfarlane/payables-booking-service/internal/xero"
)

func allowedAccounts() []xero.Account {
	return []xero.Account{
		{Name: "Office Supplies", Code: "420"},
		{Name: "Travel", Code: "494"},
		{Name: "General Expenses", Code: "400"},
	}
}

func TestCategorizeMatchesDescriptions(t *testing.T) {
	categorizer := NewFuzzyCategorizer()

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{
		InvoiceNumber: "INV-1",
		Supplier:      "ACME",
		LineItems: []domain.LineItem{
			{Description: "office supplies restock", Amount: 100},
			{Description: "travel", Amount: 50},
		},
		AllowedAccounts: allowedAccounts(),
	})
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if len(result.Categories) != 2 {
		t.Fatalf("Categorize() returned %d assignments, expected 2", len(result.Categories))
	}
	if result.Categories[0].Category != "Office Supplies" || result.Categories[0].AccountCode != "420" {
		t.Errorf("assignment 0 = %+v, expected Office Supplies / 420", result.Categories[0])
	}
	if result.Categories[1].Category != "Travel" || result.Categories[1].AccountCode != "494" {
		t.Errorf("assignment 1 = %+v, expected Travel / 494", result.Categories[1])
	}
}

func TestCategorizeUnmatchedFallsBackToGeneral(t *testing.T) {
	categorizer := NewFuzzyCategorizer()

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{
		LineItems: []domain.LineItem{
			{Description: "zzqx", Amount: 10},
		},
		AllowedAccounts: allowedAccounts(),
	})
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if got := result.Categories[0].Category; got != "General Expenses" {
		t.Errorf("unmatched description categorized as %q, expected General Expenses", got)
	}
}

func TestCategorizeNoGeneralAccountUsesFirst(t *testing.T) {
	categorizer := NewFuzzyCategorizer()

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{
		LineItems: []domain.LineItem{
			{Description: "zzqx", Amount: 10},
		},
		AllowedAccounts: []xero.Account{
			{Name: "Office Supplies", Code: "420"},
			{Name: "Travel", Code: "494"},
		},
	})
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if got := result.Categories[0].Category; got != "Office Supplies" {
		t.Errorf("fallback category = %q, expected the first allowed account", got)
	}
}

func TestCategorizeEmptyAllowedList(t *testing.T) {
	categorizer := NewFuzzyCategorizer()

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{
		LineItems: []domain.LineItem{
			{Description: "printer paper", Amount: 10},
		},
	})
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	assignment := result.Categories[0]
	if assignment.Category != FallbackCategory {
		t.Errorf("category = %q, expected %q", assignment.Category, FallbackCategory)
	}
	if assignment.AccountCode != xero.GeneralExpensesCode {
		t.Errorf("account code = %q, expected %q", assignment.AccountCode, xero.GeneralExpensesCode)
	}
}
