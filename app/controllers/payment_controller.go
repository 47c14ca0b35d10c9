package controllers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/app/repository"
	"github.com/glimmerlab/glimmer/internal/pkg/payments"
	"github.com/glimmerlab/glimmer/internal/pkg/usercontext"
)

// PaymentController handles purchase intents, verification and the manual
// payment request flow.
type PaymentController struct {
	repos    *repository.Repositories
	payments *payments.Service
	log      *slog.Logger
}

// NewPaymentController creates the payment controller.
func NewPaymentController(repos *repository.Repositories, svc *payments.Service, log *slog.Logger) *PaymentController {
	return &PaymentController{repos: repos, payments: svc, log: log}
}

type intentRequest struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
	Credits int     `json:"credits"`
	Plan    string  `json:"plan"`
}

func (pc *PaymentController) currentUser(c *fiber.Ctx) (*models.User, error) {
	return pc.repos.User.GetByID(usercontext.UserID(c))
}

// HandleUPIIntent opens a Cashfree order and returns the hosted checkout link.
func (pc *PaymentController) HandleUPIIntent(c *fiber.Ctx) error {
	var req intentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Amount <= 0 || req.Credits <= 0 {
		return badRequest(c, "Amount and credits must be positive")
	}

	user, err := pc.currentUser(c)
	if err != nil || user == nil {
		return notFound(c, "User not found")
	}

	intent, err := pc.payments.CreateUPIIntent(c.Context(), user, payments.IntentInput{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Credits: req.Credits,
		Plan:    req.Plan,
	})
	if err != nil {
		return pc.intentError(c, err)
	}
	return c.JSON(intent)
}

// HandleOxapayIntent opens a crypto invoice and returns the payment link.
func (pc *PaymentController) HandleOxapayIntent(c *fiber.Ctx) error {
	var req intentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Amount <= 0 || req.Credits <= 0 {
		return badRequest(c, "Amount and credits must be positive")
	}

	user, err := pc.currentUser(c)
	if err != nil || user == nil {
		return notFound(c, "User not found")
	}

	intent, err := pc.payments.CreateOxapayIntent(c.Context(), user, payments.IntentInput{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Credits: req.Credits,
		Plan:    req.Plan,
	})
	if err != nil {
		return pc.intentError(c, err)
	}
	return c.JSON(intent)
}

func (pc *PaymentController) intentError(c *fiber.Ctx, err error) error {
	var cfgErr *payments.ConfigError
	if errors.As(err, &cfgErr) {
		return serverError(c, cfgErr.Error())
	}
	var gwErr *payments.GatewayError
	if errors.As(err, &gwErr) {
		return jsonError(c, fiber.StatusBadGateway, "Payment Gateway Error", gwErr.Message)
	}
	pc.log.Error("intent creation failed", "err", err)
	return serverError(c, "Failed to create payment intent")
}

// HandleVerify settles an order on behalf of its owner. Verifying an already
// completed order returns success with the current balance and credits
// nothing.
func (pc *PaymentController) HandleVerify(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Query("order_id"))
	if orderID == "" {
		var body struct {
			OrderID string `json:"order_id"`
		}
		if err := c.BodyParser(&body); err == nil {
			orderID = strings.TrimSpace(body.OrderID)
		}
	}
	if orderID == "" {
		return badRequest(c, "order_id is required")
	}

	result, err := pc.payments.Verify(c.Context(), usercontext.UserID(c), orderID)
	if err != nil {
		if errors.Is(err, payments.ErrOrderNotFound) {
			return notFound(c, "Order not found")
		}
		return pc.intentError(c, err)
	}
	return c.JSON(result)
}

// HandleCashfreeWebhook is the asynchronous settlement path. The webhook
// body is untrusted input; only the order id is read from it and the order
// status is re-queried from Cashfree before anything is credited.
func (pc *PaymentController) HandleCashfreeWebhook(c *fiber.Ctx) error {
	var body struct {
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
		} `json:"data"`
		OrderID string `json:"orderId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid webhook payload")
	}

	orderID := body.Data.Order.OrderID
	if orderID == "" {
		orderID = body.OrderID
	}
	if orderID == "" {
		return badRequest(c, "Webhook payload has no order id")
	}

	result, err := pc.payments.HandleWebhook(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, payments.ErrOrderNotFound) {
			// Unknown orders are acknowledged so the gateway stops retrying.
			pc.log.Warn("webhook for unknown order", "order_id", orderID)
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		pc.log.Error("webhook verification failed", "order_id", orderID, "err", err)
		return serverError(c, "Verification failed")
	}

	pc.log.Info("webhook processed", "order_id", orderID, "status", result.Status)
	return c.JSON(fiber.Map{"status": result.Status})
}

// HandleOrderStatus returns the stored state of one of the caller's orders.
func (pc *PaymentController) HandleOrderStatus(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Params("orderID"))
	if orderID == "" {
		return badRequest(c, "order_id is required")
	}

	txn, err := pc.repos.Transaction.GetByOrderIDForUser(orderID, usercontext.UserID(c))
	if err != nil || txn == nil {
		return notFound(c, "Order not found")
	}
	return c.JSON(txn)
}

// HandleCashfreeOrderStatus passes the live Cashfree order status through
// for one of the caller's orders.
func (pc *PaymentController) HandleCashfreeOrderStatus(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Query("orderId"))
	if orderID == "" {
		orderID = strings.TrimSpace(c.Query("order_id"))
	}
	if orderID == "" {
		return badRequest(c, "orderId is required")
	}

	status, err := pc.payments.CashfreeOrderStatus(c.Context(), usercontext.UserID(c), orderID)
	if err != nil {
		if errors.Is(err, payments.ErrOrderNotFound) {
			return notFound(c, "Order not found")
		}
		return pc.intentError(c, err)
	}
	return c.JSON(fiber.Map{"order_id": orderID, "order_status": status})
}

// HandleUnifiedHistory returns the caller's gateway transactions and manual
// payment requests in one payload.
func (pc *PaymentController) HandleUnifiedHistory(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)

	txns, err := pc.repos.Transaction.ListByUser(userID)
	if err != nil {
		return serverError(c, "Failed to load transactions")
	}
	reqs, err := pc.repos.PaymentRequest.ListByUser(userID)
	if err != nil {
		return serverError(c, "Failed to load payment requests")
	}

	return c.JSON(fiber.Map{
		"transactions": txns,
		"requests":     reqs,
	})
}

// HandleTransactionHistory lists the caller's gateway transactions, newest
// first.
func (pc *PaymentController) HandleTransactionHistory(c *fiber.Ctx) error {
	txns, err := pc.repos.Transaction.ListByUser(usercontext.UserID(c))
	if err != nil {
		return serverError(c, "Failed to load transactions")
	}
	return c.JSON(fiber.Map{"transactions": txns})
}

// HandleCreditHistory lists the caller's ledger entries, newest first.
func (pc *PaymentController) HandleCreditHistory(c *fiber.Ctx) error {
	entries, err := pc.repos.CreditHistory.ListByUser(usercontext.UserID(c))
	if err != nil {
		return serverError(c, "Failed to load credit history")
	}
	return c.JSON(fiber.Map{"history": entries})
}

type paymentRequestInput struct {
	Plan    string  `json:"plan"`
	Credits int     `json:"credits"`
	Amount  float64 `json:"amount"`
	UTRCode string  `json:"utr_code"`
	Date    string  `json:"date"`
	Note    string  `json:"note"`
}

// HandleSubmitPaymentRequest records a manual UPI proof-of-payment. No
// credits move here; an admin approves or rejects it later.
func (pc *PaymentController) HandleSubmitPaymentRequest(c *fiber.Ctx) error {
	var req paymentRequestInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.UTRCode) == "" {
		return badRequest(c, "UTR code is required")
	}
	if req.Credits <= 0 {
		return badRequest(c, "Credits must be positive")
	}

	pr := &models.PaymentRequest{
		UserID:  usercontext.UserID(c),
		Plan:    req.Plan,
		Credits: req.Credits,
		Amount:  req.Amount,
		UTRCode: strings.TrimSpace(req.UTRCode),
		Date:    req.Date,
		Note:    req.Note,
		Status:  models.RequestStatusPending,
	}
	if err := pc.repos.PaymentRequest.Create(pr); err != nil {
		pc.log.Error("payment request creation failed", "user_id", pr.UserID, "err", err)
		return serverError(c, "Failed to submit payment request")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment request submitted. Credits are added after manual verification.",
		"request": pr,
	})
}

// HandleListPaymentRequests lists the caller's manual payment requests.
func (pc *PaymentController) HandleListPaymentRequests(c *fiber.Ctx) error {
	reqs, err := pc.repos.PaymentRequest.ListByUser(usercontext.UserID(c))
	if err != nil {
		return serverError(c, "Failed to load payment requests")
	}
	return c.JSON(fiber.Map{"requests": reqs})
}
