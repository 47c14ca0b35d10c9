package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const (
	DefaultCashfreeBaseURL = "https://api.cashfree.com"
	cashfreeAPIVersion     = "2022-01-01"

	// Cashfree requires a phone number; the original product never
	// collects one, so a sentinel is sent.
	defaultCustomerPhone = "9999999999"
)

var customerIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// CashfreeClient creates and inspects Cashfree PG orders (UPI payments).
type CashfreeClient struct {
	appID      string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewCashfreeClient creates a Cashfree client. baseURL may be empty for the
// production endpoint.
func NewCashfreeClient(appID, secretKey, baseURL string) *CashfreeClient {
	if baseURL == "" {
		baseURL = DefaultCashfreeBaseURL
	}
	return &CashfreeClient{
		appID:     appID,
		secretKey: secretKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CashfreeOrder is the input for order creation.
type CashfreeOrder struct {
	OrderID       string
	Amount        float64
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	ReturnURL     string
}

// SanitizeCustomerID makes an identifier acceptable to Cashfree: only
// alphanumerics, underscore and dash, at most 45 characters.
func SanitizeCustomerID(raw string) string {
	cleaned := customerIDSanitizer.ReplaceAllString(raw, "_")
	if len(cleaned) > 45 {
		cleaned = cleaned[:45]
	}
	return cleaned
}

// CreateOrder registers an order with Cashfree and returns the hosted
// payment link.
func (c *CashfreeClient) CreateOrder(ctx context.Context, order CashfreeOrder) (payLink string, raw []byte, err error) {
	phone := order.CustomerPhone
	if phone == "" {
		phone = defaultCustomerPhone
	}

	payload := map[string]any{
		"order_id":       order.OrderID,
		"order_amount":   order.Amount,
		"order_currency": "INR",
		"customer_details": map[string]string{
			"customer_id":    SanitizeCustomerID(order.CustomerEmail),
			"customer_email": order.CustomerEmail,
			"customer_phone": phone,
			"customer_name":  order.CustomerName,
		},
		"order_meta": map[string]string{
			"return_url": order.ReturnURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("marshal cashfree order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pg/orders", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("build cashfree request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("cashfree request: %w", err)
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read cashfree response: %w", err)
	}

	var parsed struct {
		PaymentLink string `json:"payment_link"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", raw, fmt.Errorf("decode cashfree response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = "Payment Gateway Error"
		}
		return "", raw, &GatewayError{Gateway: "cashfree", Message: msg}
	}
	if parsed.PaymentLink == "" {
		return "", raw, &GatewayError{Gateway: "cashfree", Message: "Payment link not returned by gateway."}
	}

	return parsed.PaymentLink, raw, nil
}

// GetOrderStatus queries the authoritative order status. Webhook bodies are
// never trusted directly; this lookup is the source of truth.
func (c *CashfreeClient) GetOrderStatus(ctx context.Context, orderID string) (string, error) {
	endpoint := fmt.Sprintf("%s/pg/orders/%s", c.baseURL, url.PathEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build cashfree status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cashfree status request: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		OrderStatus string `json:"order_status"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode cashfree status response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = "Failed to verify order"
		}
		return "", &GatewayError{Gateway: "cashfree", Message: msg}
	}

	return parsed.OrderStatus, nil
}

func (c *CashfreeClient) setHeaders(req *http.Request) {
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", cashfreeAPIVersion)
}
