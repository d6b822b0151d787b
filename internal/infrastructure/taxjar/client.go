package taxjar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brnno-tech/brnno-api/internal/config"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// Client calls the external tax-jurisdiction service. Any failure — timeout,
// rejected jurisdiction, malformed address, non-2xx — is returned as an
// error for the estimator's fallback tier to absorb.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.TaxServiceURL,
		apiKey:  cfg.TaxServiceAPIKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type taxRequest struct {
	AmountCents int64  `json:"amount_cents"`
	ToZip       string `json:"to_zip,omitempty"`
	ToState     string `json:"to_state,omitempty"`
	ToStreet    string `json:"to_street,omitempty"`
}

type taxResponse struct {
	TaxCents   int64 `json:"tax_cents"`
	TotalCents int64 `json:"total_cents"`
}

// Calculate prices the subtotal as a single line item against the best
// available address. The service address, when present, wins over the
// billing postal code: tax follows where the service is performed.
func (c *Client) Calculate(ctx context.Context, subtotalCents int64, j domain.Jurisdiction) (domain.TaxBreakdown, error) {
	if c.baseURL == "" {
		return domain.TaxBreakdown{}, fmt.Errorf("tax service not configured")
	}

	body, err := json.Marshal(taxRequest{
		AmountCents: subtotalCents,
		ToZip:       j.PostalCode,
		ToState:     j.Region,
		ToStreet:    j.ServiceAddress,
	})
	if err != nil {
		return domain.TaxBreakdown{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/taxes", bytes.NewReader(body))
	if err != nil {
		return domain.TaxBreakdown{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.TaxBreakdown{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.TaxBreakdown{}, fmt.Errorf("tax service returned %d", resp.StatusCode)
	}

	var tr taxResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return domain.TaxBreakdown{}, err
	}
	if tr.TaxCents < 0 || tr.TotalCents != subtotalCents+tr.TaxCents {
		return domain.TaxBreakdown{}, fmt.Errorf("tax service returned inconsistent breakdown")
	}
	return domain.TaxBreakdown{
		Subtotal: subtotalCents,
		Tax:      tr.TaxCents,
		Total:    tr.TotalCents,
	}, nil
}
