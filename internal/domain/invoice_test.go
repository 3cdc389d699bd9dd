package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseFlexDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "iso", input: "2025-07-15", expected: "2025-07-15"},
		{name: "day first slashes", input: "15/07/2025", expected: "2025-07-15"},
		{name: "single digit day and month", input: "5/7/2025", expected: "2025-07-05"},
		{name: "empty is zero date", input: "", expected: ""},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "us month first rejected", input: "07/15/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlexDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFlexDate(%q) succeeded, expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFlexDate(%q) error = %v", tt.input, err)
			}
			if got.ISO() != tt.expected {
				t.Errorf("ParseFlexDate(%q).ISO() = %q, expected %q", tt.input, got.ISO(), tt.expected)
			}
		})
	}
}

func TestFlexDateJSONRoundTrip(t *testing.T) {
	var draft InvoiceDraft
	payload := `{"invoice_number":"INV-1","supplier":"ACME","date":"15/07/2025","total":100,"vat_rate":20,"line_items":[{"description":"widgets","amount":100}]}`
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if draft.Date.ISO() != "2025-07-15" {
		t.Errorf("date = %q, expected 2025-07-15", draft.Date.ISO())
	}

	out, err := json.Marshal(draft.Date)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != `"2025-07-15"` {
		t.Errorf("marshaled date = %s, expected ISO form", out)
	}

	var zero FlexDate
	out, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != "null" {
		t.Errorf("zero date marshaled as %s, expected null", out)
	}
}

func validDraft() InvoiceDraft {
	date, _ := ParseFlexDate("2025-07-15")
	return InvoiceDraft{
		InvoiceNumber: "INV-42",
		Supplier:      "ACME Ltd",
		Date:          date,
		Total:         120,
		VATRate:       20,
		LineItems: []LineItem{
			{Description: "widgets", Amount: 100, Category: "Office Supplies"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*InvoiceDraft)
		field   string
	}{
		{name: "valid", mutate: func(d *InvoiceDraft) {}},
		{name: "missing invoice number", mutate: func(d *InvoiceDraft) { d.InvoiceNumber = "" }, field: "invoice_number"},
		{name: "missing supplier", mutate: func(d *InvoiceDraft) { d.Supplier = "" }, field: "supplier"},
		{name: "missing date", mutate: func(d *InvoiceDraft) { d.Date = FlexDate{} }, field: "date"},
		{name: "zero total", mutate: func(d *InvoiceDraft) { d.Total = 0 }, field: "total"},
		{name: "negative total", mutate: func(d *InvoiceDraft) { d.Total = -5 }, field: "total"},
		{name: "negative vat", mutate: func(d *InvoiceDraft) { d.VATRate = -1 }, field: "vat_rate"},
		{name: "no line items", mutate: func(d *InvoiceDraft) { d.LineItems = nil }, field: "line_items"},
		{name: "blank line description", mutate: func(d *InvoiceDraft) { d.LineItems[0].Description = "" }, field: "line_items[0].description"},
		{name: "zero line amount", mutate: func(d *InvoiceDraft) { d.LineItems[0].Amount = 0 }, field: "line_items[0].amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			err := draft.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, expected valid draft", err)
				}
				return
			}
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("Validate() error = %v, expected ValidationError", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, expected %q", valErr.Field, tt.field)
			}
		})
	}
}

func TestEffectiveDueDate(t *testing.T) {
	draft := validDraft()
	if got := draft.EffectiveDueDate().ISO(); got != "2025-08-14" {
		t.Errorf("EffectiveDueDate() = %q, expected invoice date plus 30 days", got)
	}

	due, _ := ParseFlexDate("2025-07-31")
	draft.DueDate = due
	if got := draft.EffectiveDueDate().ISO(); got != "2025-07-31" {
		t.Errorf("EffectiveDueDate() = %q, expected the explicit due date", got)
	}
}
