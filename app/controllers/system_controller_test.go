package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemStatus(t *testing.T) map[string]any {
	t.Helper()
	app := fiber.New()
	app.Get("/system-status", NewSystemController().HandleSystemStatus)

	resp, err := app.Test(httptest.NewRequest("GET", "/system-status", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSystemStatusUnconfigured(t *testing.T) {
	for _, key := range []string{
		"NEW_API_KEY", "API_KEY", "API_ENDPOINT", "PROVIDER_MODEL",
		"OXAPAY_MERCHANT_ID", "OXAPAY_API_ID", "UPI_APP_ID", "UPI_SECRET_KEY",
		"PUBLIC_APP_BASE_URL",
	} {
		t.Setenv(key, "")
	}

	body := systemStatus(t)

	assert.Equal(t, false, body["imageApiKeyPresent"])
	assert.Equal(t, "https://api.a4f.co/v1/images/generations", body["imageEndpoint"])
	assert.Equal(t, "provider-4/imagen-3.5", body["providerModel"])
	assert.Equal(t, false, body["oxapayMerchantPresent"])
	assert.Equal(t, false, body["oxapayApiPresent"])
	assert.Equal(t, false, body["upiAppPresent"])
	assert.Equal(t, false, body["upiSecretPresent"])
	assert.Nil(t, body["publicAppBaseUrl"])
}

func TestSystemStatusConfigured(t *testing.T) {
	t.Setenv("NEW_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key") // fallback key still counts as present
	t.Setenv("API_ENDPOINT", "https://images.example.com/v1")
	t.Setenv("PROVIDER_MODEL", "provider-1/test")
	t.Setenv("OXAPAY_MERCHANT_ID", "m")
	t.Setenv("OXAPAY_API_ID", "a")
	t.Setenv("UPI_APP_ID", "app")
	t.Setenv("UPI_SECRET_KEY", "secret")
	t.Setenv("PUBLIC_APP_BASE_URL", "https://glimmer.example.com")

	body := systemStatus(t)

	assert.Equal(t, true, body["imageApiKeyPresent"])
	assert.Equal(t, "https://images.example.com/v1", body["imageEndpoint"])
	assert.Equal(t, "provider-1/test", body["providerModel"])
	assert.Equal(t, true, body["oxapayMerchantPresent"])
	assert.Equal(t, true, body["oxapayApiPresent"])
	assert.Equal(t, true, body["upiAppPresent"])
	assert.Equal(t, true, body["upiSecretPresent"])
	assert.Equal(t, "https://glimmer.example.com", body["publicAppBaseUrl"])
}
