package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultOxapayBaseURL = "https://api.oxapay.com"

	// Invoice lifetime in minutes before the gateway expires it.
	oxapayInvoiceLifetime = 30
)

// OxapayClient creates crypto payment invoices and polls their status.
type OxapayClient struct {
	merchantKey string
	apiKey      string
	baseURL     string
	httpClient  *http.Client
}

// NewOxapayClient creates an Oxapay client. apiKey is the optional general
// API key sent alongside the merchant key; baseURL may be empty for the
// production endpoint.
func NewOxapayClient(merchantKey, apiKey, baseURL string) *OxapayClient {
	if baseURL == "" {
		baseURL = DefaultOxapayBaseURL
	}
	return &OxapayClient{
		merchantKey: merchantKey,
		apiKey:      apiKey,
		baseURL:     baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OxapayInvoice is the input for invoice creation.
type OxapayInvoice struct {
	OrderID     string
	AmountUSD   float64
	Description string
	ReturnURL   string
	Email       string
}

// CreateInvoice asks Oxapay for a hosted payment link. A result code of 100
// together with a payLink is the only success shape.
func (c *OxapayClient) CreateInvoice(ctx context.Context, inv OxapayInvoice) (payLink string, trackID string, raw []byte, err error) {
	payload := map[string]any{
		"merchant":       c.merchantKey,
		"amount":         inv.AmountUSD,
		"currency":       "USD",
		"lifeTime":       oxapayInvoiceLifetime,
		"feePaidByPayer": 0,
		"underPaidCover": 0,
		"returnUrl":      inv.ReturnURL,
		"description":    inv.Description,
		"orderId":        inv.OrderID,
		"email":          inv.Email,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", nil, fmt.Errorf("marshal oxapay invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/merchants/request", bytes.NewReader(body))
	if err != nil {
		return "", "", nil, fmt.Errorf("build oxapay request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", nil, fmt.Errorf("oxapay request: %w", err)
	}
	defer resp.Body.Close()

	raw, err = readAllBody(resp)
	if err != nil {
		return "", "", nil, err
	}

	var parsed struct {
		Result  json.Number `json:"result"`
		Message string      `json:"message"`
		PayLink string      `json:"payLink"`
		TrackID json.Number `json:"trackId"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", raw, fmt.Errorf("decode oxapay response: %w", err)
	}

	if parsed.Result.String() != "100" || parsed.PayLink == "" {
		msg := parsed.Message
		if msg == "" {
			msg = "Crypto gateway rejected the invoice."
		}
		return "", "", raw, &GatewayError{Gateway: "oxapay", Message: msg}
	}

	return parsed.PayLink, parsed.TrackID.String(), raw, nil
}

// GetInvoiceStatus polls an invoice by order id and returns its raw status
// string ("paid", "confirming", "waiting", "failed", ...).
func (c *OxapayClient) GetInvoiceStatus(ctx context.Context, orderID string) (string, error) {
	payload := map[string]any{
		"merchant": c.merchantKey,
		"orderId":  orderID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal oxapay inquiry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/merchants/inquiry", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build oxapay inquiry: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("oxapay inquiry: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Result  json.Number `json:"result"`
		Status  string      `json:"status"`
		Message string      `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode oxapay inquiry: %w", err)
	}

	if parsed.Result.String() != "100" {
		msg := parsed.Message
		if msg == "" {
			msg = "Failed to query invoice status"
		}
		return "", &GatewayError{Gateway: "oxapay", Message: msg}
	}

	return parsed.Status, nil
}

func (c *OxapayClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("general_api_key", c.apiKey)
	}
}

func readAllBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read oxapay response: %w", err)
	}
	return buf.Bytes(), nil
}
