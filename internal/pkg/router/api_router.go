package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/glimmerlab/glimmer/app/controllers"
	"github.com/glimmerlab/glimmer/app/repository"
	"github.com/glimmerlab/glimmer/internal/pkg/database"
	"github.com/glimmerlab/glimmer/internal/pkg/env"
	"github.com/glimmerlab/glimmer/internal/pkg/ledger"
	"github.com/glimmerlab/glimmer/internal/pkg/middleware"
	"github.com/glimmerlab/glimmer/internal/pkg/payments"
	"github.com/glimmerlab/glimmer/pkg/logger"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	log := logger.New()
	db := database.GetDB()
	repos := repository.GetGlobalFactory().GetRepositories()
	ledgerSvc := ledger.NewService(db)
	paymentSvc := payments.NewService(payments.NewStore(db), log)

	auth := controllers.NewAuthController(repos, log)
	generate := controllers.NewGenerateController(repos, ledgerSvc, log)
	payment := controllers.NewPaymentController(repos, paymentSvc, log)
	admin := controllers.NewAdminController(repos, ledgerSvc, log)
	settings := controllers.NewSettingsController(repos, log)
	system := controllers.NewSystemController()

	// Browser clients live on a different origin; the API is token
	// authenticated so the CORS surface stays broad.
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}), limiter.New(limiter.Config{
		Max:        env.GetInt("RATE_LIMIT_MAX", 120),
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage(),
	}))

	v1 := api.Group("/v1")

	v1.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})

	// Public
	v1.Post("/auth/register", auth.HandleRegister)
	v1.Post("/auth/login", auth.HandleLogin)
	v1.Get("/system-status", system.HandleSystemStatus)
	v1.Get("/settings", settings.HandlePublicSettings)
	v1.Get("/plans", settings.HandleListPlans)
	v1.Post("/payments/cashfree-webhook", payment.HandleCashfreeWebhook)

	// Authenticated
	authed := v1.Group("", middleware.JWTProtected())
	authed.Get("/profile", auth.HandleProfile)
	authed.Get("/credits/history", payment.HandleCreditHistory)
	authed.Post("/generate", generate.HandleGenerate)

	authed.Post("/payments/upi-intent", payment.HandleUPIIntent)
	authed.Post("/payments/oxapay-intent", payment.HandleOxapayIntent)
	authed.Post("/payments/verify", payment.HandleVerify)
	authed.Get("/payments/cashfree/order-status", payment.HandleCashfreeOrderStatus)
	authed.Get("/payments/orders/:orderID", payment.HandleOrderStatus)
	authed.Get("/payments/transactions", payment.HandleTransactionHistory)
	authed.Get("/payments/history", payment.HandleUnifiedHistory)
	authed.Post("/payments/requests", payment.HandleSubmitPaymentRequest)
	authed.Get("/payments/requests", payment.HandleListPaymentRequests)

	// Admin
	adm := v1.Group("/admin", middleware.JWTProtected(), middleware.RequireAdmin())
	adm.Get("/users", admin.HandleListUsers)
	adm.Put("/users/:id/credits", admin.HandleSetUserCredits)
	adm.Delete("/users/:id", admin.HandleDeleteUser)
	adm.Get("/transactions", admin.HandleListTransactions)
	adm.Get("/payment-requests", admin.HandleListPaymentRequests)
	adm.Post("/payment-requests/:id/approve", admin.HandleApprovePaymentRequest)
	adm.Post("/payment-requests/:id/reject", admin.HandleRejectPaymentRequest)
	adm.Post("/plans", admin.HandleCreatePlan)
	adm.Put("/plans/:id", admin.HandleUpdatePlan)
	adm.Delete("/plans/:id", admin.HandleDeletePlan)
	adm.Put("/settings", admin.HandleUpdateSetting)
	adm.Get("/credit-history", admin.HandleAllCreditHistory)
}

// limiterStorage keeps rate-limit counters in Redis so limits hold across
// replicas.
func limiterStorage() fiber.Storage {
	return redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     env.GetInt("CACHE_PORT", 6379),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
		Reset:    false,
	})
}
