package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glimmerlab/glimmer/internal/pkg/env"
	"github.com/glimmerlab/glimmer/internal/pkg/imagegen"
)

// SystemController exposes deployment diagnostics.
type SystemController struct{}

// NewSystemController creates the system controller.
func NewSystemController() *SystemController {
	return &SystemController{}
}

// HandleSystemStatus reports which integrations are configured. Only key
// presence is exposed, never the values, so the endpoint can stay public
// for quick deployment checks.
func (sc *SystemController) HandleSystemStatus(c *fiber.Ctx) error {
	var baseURL any
	if v := env.GetEnv("PUBLIC_APP_BASE_URL", ""); v != "" {
		baseURL = v
	}

	return c.JSON(fiber.Map{
		"imageApiKeyPresent":    env.GetEnv("NEW_API_KEY", env.GetEnv("API_KEY", "")) != "",
		"imageEndpoint":         env.GetEnv("API_ENDPOINT", imagegen.DefaultEndpoint),
		"providerModel":         env.GetEnv("PROVIDER_MODEL", imagegen.DefaultModel),
		"oxapayMerchantPresent": env.GetEnv("OXAPAY_MERCHANT_ID", "") != "",
		"oxapayApiPresent":      env.GetEnv("OXAPAY_API_ID", "") != "",
		"upiAppPresent":         env.GetEnv("UPI_APP_ID", "") != "",
		"upiSecretPresent":      env.GetEnv("UPI_SECRET_KEY", "") != "",
		"publicAppBaseUrl":      baseURL,
	})
}
