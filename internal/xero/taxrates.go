package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// TaxTypeNone is the ledger's sentinel for zero-rated invoices. Callers map
// a 0% VAT rate to it directly; the resolver is never invoked for it.
const TaxTypeNone = "NONE"

// taxRateEpsilon guards the floating-point comparison of VAT percentages.
const taxRateEpsilon = 1e-6

// TaxRateResolver guarantees a tax rate record exists for an arbitrary VAT
// percentage. Rates are re-queried on each resolution: they change rarely,
// but correctness must not rely on staleness.
type TaxRateResolver struct {
	client *Client
}

// NewTaxRateResolver creates a resolver backed by the given API client.
func NewTaxRateResolver(client *Client) *TaxRateResolver {
	return &TaxRateResolver{client: client}
}

type taxRatesEnvelope struct {
	TaxRates []struct {
		Name          string `json:"Name"`
		TaxType       string `json:"TaxType"`
		Status        string `json:"Status"`
		TaxComponents []struct {
			Name string  `json:"Name"`
			Rate float64 `json:"Rate"`
			Type string  `json:"Type"`
		} `json:"TaxComponents"`
	} `json:"TaxRates"`
}

// Resolve returns the tax type identifier for the given VAT percentage,
// creating a rate record if none exists yet.
func (r *TaxRateResolver) Resolve(ctx context.Context, ratePercent float64) (string, error) {
	taxType, err := r.find(ctx, ratePercent)
	if err != nil {
		return "", err
	}
	if taxType != "" {
		return taxType, nil
	}

	payload, err := json.Marshal(map[string]any{
		"TaxRates": []map[string]any{{
			"Name":   fmt.Sprintf("Expenses %g%%", ratePercent),
			"Status": "ACTIVE",
			"TaxComponents": []map[string]any{{
				"Name": "VAT",
				"Rate": ratePercent,
				"Type": "INPUT",
			}},
		}},
	})
	if err != nil {
		return "", err
	}

	status, body, err := r.client.putJSON(ctx, "/TaxRates", payload)
	if err != nil {
		return "", &TaxRateError{Rate: ratePercent, Err: err}
	}
	if is2xx(status) {
		var envelope taxRatesEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.TaxRates) > 0 {
			return envelope.TaxRates[0].TaxType, nil
		}
		return "", &TaxRateError{Rate: ratePercent, Body: string(body)}
	}

	if status == http.StatusBadRequest {
		// Another caller may have created the same rate between our fetch
		// and create. Re-fetch and match again before giving up.
		taxType, err := r.find(ctx, ratePercent)
		if err != nil {
			return "", err
		}
		if taxType != "" {
			return taxType, nil
		}
	}

	return "", &TaxRateError{Rate: ratePercent, Body: string(body)}
}

// find fetches all tax rates and returns the identifier of the first one
// with a component percentage within epsilon of the wanted rate, or "".
func (r *TaxRateResolver) find(ctx context.Context, ratePercent float64) (string, error) {
	status, body, err := r.client.get(ctx, "/TaxRates")
	if err != nil {
		return "", &TaxRateError{Rate: ratePercent, Err: err}
	}
	if !is2xx(status) {
		return "", &TaxRateError{Rate: ratePercent, Body: string(body)}
	}

	var envelope taxRatesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &TaxRateError{Rate: ratePercent, Err: err}
	}

	for _, rate := range envelope.TaxRates {
		for _, component := range rate.TaxComponents {
			if math.Abs(component.Rate-ratePercent) < taxRateEpsilon {
				return rate.TaxType, nil
			}
		}
	}
	return "", nil
}
