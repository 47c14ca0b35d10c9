package payments

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/internal/pkg/env"
)

// UPIGateway is the slice of the Cashfree API the verifier needs.
type UPIGateway interface {
	CreateOrder(ctx context.Context, order CashfreeOrder) (payLink string, raw []byte, err error)
	GetOrderStatus(ctx context.Context, orderID string) (string, error)
}

// CryptoGateway is the slice of the Oxapay API the verifier needs.
type CryptoGateway interface {
	CreateInvoice(ctx context.Context, inv OxapayInvoice) (payLink, trackID string, raw []byte, err error)
	GetInvoiceStatus(ctx context.Context, orderID string) (string, error)
}

// Service issues payment intents and verifies their settlement. The pending
// Transaction row is written before the gateway is called, so every order id
// a gateway ever sees exists in our ledger.
type Service struct {
	store  Store
	upi    UPIGateway
	crypto CryptoGateway
	log    *slog.Logger
}

// NewService builds a payment service with gateways configured from the
// environment. Missing credentials surface as ConfigError at call time, not
// at startup, so unrelated features keep working on a partial deployment.
func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// NewServiceWithGateways injects explicit gateways (used by tests).
func NewServiceWithGateways(store Store, upi UPIGateway, crypto CryptoGateway, log *slog.Logger) *Service {
	return &Service{store: store, upi: upi, crypto: crypto, log: log}
}

// Intent is the client-facing result of intent creation.
type Intent struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
	Message    string `json:"message,omitempty"`
}

// IntentInput carries the purchase parameters supplied by the client. An
// empty OrderID is filled with a server-generated one.
type IntentInput struct {
	OrderID string
	Amount  float64
	Credits int
	Plan    string
}

func newOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (in IntentInput) orderID() string {
	if id := strings.TrimSpace(in.OrderID); id != "" {
		return id
	}
	return newOrderID()
}

func (s *Service) upiGateway() (UPIGateway, error) {
	if s.upi != nil {
		return s.upi, nil
	}
	appID := env.GetEnv("UPI_APP_ID", "")
	if appID == "" {
		return nil, &ConfigError{Key: "UPI_APP_ID"}
	}
	secret := env.GetEnv("UPI_SECRET_KEY", "")
	if secret == "" {
		return nil, &ConfigError{Key: "UPI_SECRET_KEY"}
	}
	return NewCashfreeClient(appID, secret, env.GetEnv("CASHFREE_BASE_URL", "")), nil
}

func (s *Service) cryptoGateway() (CryptoGateway, error) {
	if s.crypto != nil {
		return s.crypto, nil
	}
	key := env.GetEnv("OXAPAY_MERCHANT_ID", "")
	if key == "" {
		return nil, &ConfigError{Key: "OXAPAY_MERCHANT_ID"}
	}
	return NewOxapayClient(key, env.GetEnv("OXAPAY_API_ID", ""), env.GetEnv("OXAPAY_BASE_URL", "")), nil
}

// CreateUPIIntent persists a pending INR transaction and opens a Cashfree
// order for it. The returned link sends the buyer to the hosted checkout;
// Cashfree substitutes the order id and status into the return URL
// placeholders after payment.
func (s *Service) CreateUPIIntent(ctx context.Context, user *models.User, in IntentInput) (*Intent, error) {
	if err := validateIntentInput(in); err != nil {
		return nil, err
	}

	gw, err := s.upiGateway()
	if err != nil {
		return nil, err
	}

	orderID := in.orderID()
	txn := &models.Transaction{
		UserID:   user.ID,
		OrderID:  orderID,
		Amount:   in.Amount,
		Currency: "INR",
		Credits:  in.Credits,
		Gateway:  models.GatewayUPI,
	}
	if err := s.store.CreatePending(ctx, txn); err != nil {
		return nil, fmt.Errorf("persist pending transaction: %w", err)
	}

	returnURL := fmt.Sprintf("%s/payment-status?order_id={order_id}&order_status={order_status}",
		appBaseURL())

	payLink, raw, err := gw.CreateOrder(ctx, CashfreeOrder{
		OrderID:       orderID,
		Amount:        in.Amount,
		CustomerEmail: user.Email,
		CustomerName:  user.Name,
		ReturnURL:     returnURL,
	})
	if len(raw) > 0 {
		s.recordRawPayload(ctx, orderID, raw)
	}
	if err != nil {
		s.log.Error("cashfree order creation failed", "order_id", orderID, "err", err)
		return nil, err
	}

	return &Intent{OrderID: orderID, PaymentURL: payLink}, nil
}

// CreateOxapayIntent persists a pending USD transaction and requests a crypto
// invoice. When automatic invoicing is unavailable but a public payment page
// is configured, it degrades to that page instead of failing the purchase.
func (s *Service) CreateOxapayIntent(ctx context.Context, user *models.User, in IntentInput) (*Intent, error) {
	if err := validateIntentInput(in); err != nil {
		return nil, err
	}

	orderID := in.orderID()
	amount := math.Round(in.Amount*100) / 100
	txn := &models.Transaction{
		UserID:   user.ID,
		OrderID:  orderID,
		Amount:   amount,
		Currency: "USD",
		Credits:  in.Credits,
		Gateway:  models.GatewayOxPay,
	}
	if err := s.store.CreatePending(ctx, txn); err != nil {
		return nil, fmt.Errorf("persist pending transaction: %w", err)
	}

	gw, err := s.cryptoGateway()
	if err != nil {
		return s.oxapayFallback(orderID, err)
	}

	payLink, _, raw, err := gw.CreateInvoice(ctx, OxapayInvoice{
		OrderID:     orderID,
		AmountUSD:   amount,
		Description: fmt.Sprintf("%d Credits", in.Credits),
		ReturnURL:   appBaseURL() + "/payment-status?order_id=" + orderID,
		Email:       user.Email,
	})
	if len(raw) > 0 {
		s.recordRawPayload(ctx, orderID, raw)
	}
	if err != nil {
		s.log.Error("oxapay invoice creation failed", "order_id", orderID, "err", err)
		return s.oxapayFallback(orderID, err)
	}

	return &Intent{OrderID: orderID, PaymentURL: payLink}, nil
}

// oxapayFallback returns the static public payment page when one is
// configured; otherwise the original error stands.
func (s *Service) oxapayFallback(orderID string, cause error) (*Intent, error) {
	fallback := env.GetEnv("OXAPAY_PAYMENT_URL_BASE", "")
	if fallback == "" {
		return nil, cause
	}
	return &Intent{
		OrderID:    orderID,
		PaymentURL: fallback,
		Message:    "Automatic invoicing is unavailable. Complete the payment on the page and submit your order id for manual verification.",
	}, nil
}

// VerifyResult reports the settlement state of an order after one
// verification pass.
type VerifyResult struct {
	Status     string `json:"status"`
	Credits    int    `json:"credits,omitempty"`
	NewBalance int    `json:"new_credits,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Verify re-queries the gateway for an order and settles it. Completed
// orders short-circuit to success without touching the ledger, so repeated
// verification of the same order is harmless. When userID is non-zero the
// order must belong to that user.
func (s *Service) Verify(ctx context.Context, userID uint, orderID string) (*VerifyResult, error) {
	txn, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && txn.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if txn.Status == models.TxStatusCompleted {
		balance, _, err := s.store.CompleteAndCredit(ctx, orderID, "")
		if err != nil {
			return nil, err
		}
		return &VerifyResult{
			Status:     models.TxStatusCompleted,
			Credits:    txn.Credits,
			NewBalance: balance,
			Message:    "Payment already verified.",
		}, nil
	}

	status, err := s.fetchGatewayStatus(ctx, txn)
	if err != nil {
		return nil, err
	}

	switch ClassifyStatus(status) {
	case OutcomeSuccess:
		description := fmt.Sprintf("Purchased %d credits (%s)", txn.Credits, txn.Gateway)
		balance, already, err := s.store.CompleteAndCredit(ctx, orderID, description)
		if err != nil {
			return nil, err
		}
		msg := "Payment verified. Credits added to your account."
		if already {
			msg = "Payment already verified."
		}
		return &VerifyResult{
			Status:     models.TxStatusCompleted,
			Credits:    txn.Credits,
			NewBalance: balance,
			Message:    msg,
		}, nil

	case OutcomeFailed:
		if err := s.store.MarkTerminal(ctx, orderID, models.TxStatusFailed); err != nil {
			return nil, err
		}
		return &VerifyResult{Status: models.TxStatusFailed, Message: "Payment failed."}, nil

	case OutcomeCancelled:
		if err := s.store.MarkTerminal(ctx, orderID, models.TxStatusCancelled); err != nil {
			return nil, err
		}
		return &VerifyResult{Status: models.TxStatusCancelled, Message: "Payment was cancelled."}, nil

	default:
		return &VerifyResult{
			Status:  models.TxStatusPending,
			Message: "Payment is still processing. Try again in a moment.",
		}, nil
	}
}

// CashfreeOrderStatus returns the live order status straight from Cashfree
// for an order owned by userID.
func (s *Service) CashfreeOrderStatus(ctx context.Context, userID uint, orderID string) (string, error) {
	txn, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if userID != 0 && txn.UserID != userID {
		return "", ErrOrderNotFound
	}

	gw, err := s.upiGateway()
	if err != nil {
		return "", err
	}
	return gw.GetOrderStatus(ctx, orderID)
}

// HandleWebhook settles an order in response to a gateway notification. The
// notification body is never trusted; only the order id is taken from it and
// the status is re-queried from the gateway directly.
func (s *Service) HandleWebhook(ctx context.Context, orderID string) (*VerifyResult, error) {
	return s.Verify(ctx, 0, orderID)
}

func (s *Service) fetchGatewayStatus(ctx context.Context, txn *models.Transaction) (string, error) {
	switch txn.Gateway {
	case models.GatewayUPI:
		gw, err := s.upiGateway()
		if err != nil {
			return "", err
		}
		return gw.GetOrderStatus(ctx, txn.OrderID)
	case models.GatewayOxPay:
		gw, err := s.cryptoGateway()
		if err != nil {
			return "", err
		}
		return gw.GetInvoiceStatus(ctx, txn.OrderID)
	default:
		return "", fmt.Errorf("unknown gateway %q on order %s", txn.Gateway, txn.OrderID)
	}
}

func (s *Service) recordRawPayload(ctx context.Context, orderID string, raw []byte) {
	if err := s.store.UpdateRawPayload(ctx, orderID, string(raw)); err != nil {
		s.log.Warn("store raw gateway payload", "order_id", orderID, "err", err)
	}
}

func validateIntentInput(in IntentInput) error {
	if in.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if in.Credits <= 0 {
		return fmt.Errorf("credits must be positive")
	}
	return nil
}

func appBaseURL() string {
	return strings.TrimRight(env.GetEnv("PUBLIC_APP_BASE_URL", "http://localhost:3000"), "/")
}
