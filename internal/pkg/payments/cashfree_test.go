package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeCustomerID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "user_example_com"},
		{"plain-id_123", "plain-id_123"},
		{"spaces and (chars)!", "spaces_and__chars__"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeCustomerID(tt.in))
	}

	long := SanitizeCustomerID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Len(t, long, 45)
}

func TestCashfreeCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders", r.URL.Path)
		assert.Equal(t, "app-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2022-01-01", r.Header.Get("x-api-version"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "order_abc", payload["order_id"])
		assert.Equal(t, "INR", payload["order_currency"])

		customer := payload["customer_details"].(map[string]any)
		assert.Equal(t, "buyer_example_com", customer["customer_id"])
		assert.Equal(t, "9999999999", customer["customer_phone"])

		json.NewEncoder(w).Encode(map[string]string{
			"payment_link": "https://payments.cashfree.com/order/abc",
		})
	}))
	defer srv.Close()

	client := NewCashfreeClient("app-id", "secret", srv.URL)
	link, _, err := client.CreateOrder(context.Background(), CashfreeOrder{
		OrderID:       "order_abc",
		Amount:        99,
		CustomerEmail: "buyer@example.com",
		CustomerName:  "Buyer",
		ReturnURL:     "https://app.example/payment-status?order_id={order_id}&order_status={order_status}",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://payments.cashfree.com/order/abc", link)
}

func TestCashfreeCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "authentication failed"})
	}))
	defer srv.Close()

	client := NewCashfreeClient("bad", "bad", srv.URL)
	_, _, err := client.CreateOrder(context.Background(), CashfreeOrder{
		OrderID:       "order_x",
		Amount:        10,
		CustomerEmail: "b@example.com",
	})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "authentication failed", gwErr.Message)
}

func TestCashfreeGetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/orders/order_abc", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"order_status": "PAID"})
	}))
	defer srv.Close()

	client := NewCashfreeClient("app-id", "secret", srv.URL)
	status, err := client.GetOrderStatus(context.Background(), "order_abc")

	require.NoError(t, err)
	assert.Equal(t, "PAID", status)
}
