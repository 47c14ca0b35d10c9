package payments

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerlab/glimmer/app/models"
)

// fakeStore keeps transactions in memory and counts credit applications so
// tests can assert that re-verification never credits twice.
type fakeStore struct {
	txns        map[string]*models.Transaction
	balance     int
	creditCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{txns: map[string]*models.Transaction{}}
}

func (f *fakeStore) CreatePending(_ context.Context, txn *models.Transaction) error {
	txn.Status = models.TxStatusPending
	f.txns[txn.OrderID] = txn
	return nil
}

func (f *fakeStore) GetByOrderID(_ context.Context, orderID string) (*models.Transaction, error) {
	txn, ok := f.txns[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *txn
	return &copied, nil
}

func (f *fakeStore) CompleteAndCredit(_ context.Context, orderID, _ string) (int, bool, error) {
	txn, ok := f.txns[orderID]
	if !ok {
		return 0, false, ErrOrderNotFound
	}
	if txn.Status == models.TxStatusCompleted {
		return f.balance, true, nil
	}
	txn.Status = models.TxStatusCompleted
	f.balance += txn.Credits
	f.creditCount++
	return f.balance, false, nil
}

func (f *fakeStore) MarkTerminal(_ context.Context, orderID, status string) error {
	if txn, ok := f.txns[orderID]; ok && txn.Status != models.TxStatusCompleted {
		txn.Status = status
	}
	return nil
}

func (f *fakeStore) UpdateRawPayload(_ context.Context, orderID, raw string) error {
	if txn, ok := f.txns[orderID]; ok {
		txn.RawPayload = raw
	}
	return nil
}

type fakeUPIGateway struct {
	status string
}

func (g *fakeUPIGateway) CreateOrder(_ context.Context, _ CashfreeOrder) (string, []byte, error) {
	return "https://pay.example/order", nil, nil
}

func (g *fakeUPIGateway) GetOrderStatus(_ context.Context, _ string) (string, error) {
	return g.status, nil
}

type fakeCryptoGateway struct {
	status string
}

func (g *fakeCryptoGateway) CreateInvoice(_ context.Context, _ OxapayInvoice) (string, string, []byte, error) {
	return "https://oxapay.example/invoice", "123", nil, nil
}

func (g *fakeCryptoGateway) GetInvoiceStatus(_ context.Context, _ string) (string, error) {
	return g.status, nil
}

func testService(store Store, upiStatus, cryptoStatus string) *Service {
	return NewServiceWithGateways(store,
		&fakeUPIGateway{status: upiStatus},
		&fakeCryptoGateway{status: cryptoStatus},
		slog.Default())
}

func seedPending(store *fakeStore, orderID string, userID uint, credits int) {
	store.txns[orderID] = &models.Transaction{
		UserID:  userID,
		OrderID: orderID,
		Credits: credits,
		Gateway: models.GatewayUPI,
		Status:  models.TxStatusPending,
	}
}

func TestVerifySuccessCreditsOnce(t *testing.T) {
	store := newFakeStore()
	seedPending(store, "order_1", 7, 500)
	svc := testService(store, "PAID", "waiting")

	result, err := svc.Verify(context.Background(), 7, "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, result.Status)
	assert.Equal(t, 500, result.Credits)
	assert.Equal(t, 500, result.NewBalance)
	assert.Equal(t, 1, store.creditCount)

	// Verifying again must not credit a second time.
	result, err = svc.Verify(context.Background(), 7, "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, result.Status)
	assert.Equal(t, 500, result.NewBalance)
	assert.Equal(t, 1, store.creditCount)
}

func TestVerifyWebhookAndPollRace(t *testing.T) {
	store := newFakeStore()
	seedPending(store, "order_2", 3, 100)
	svc := testService(store, "PAID", "waiting")

	// Webhook settles first.
	_, err := svc.HandleWebhook(context.Background(), "order_2")
	require.NoError(t, err)

	// The client poll afterwards sees success but credits nothing new.
	result, err := svc.Verify(context.Background(), 3, "order_2")
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, result.Status)
	assert.Equal(t, 1, store.creditCount)
	assert.Equal(t, 100, store.balance)
}

func TestVerifyFailedIsTerminal(t *testing.T) {
	store := newFakeStore()
	seedPending(store, "order_3", 1, 50)
	svc := testService(store, "failed", "waiting")

	result, err := svc.Verify(context.Background(), 1, "order_3")
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusFailed, result.Status)
	assert.Equal(t, 0, store.creditCount)
	assert.Equal(t, models.TxStatusFailed, store.txns["order_3"].Status)
}

func TestVerifyWaitingLeavesPending(t *testing.T) {
	store := newFakeStore()
	seedPending(store, "order_4", 1, 50)
	svc := testService(store, "ACTIVE", "waiting")

	result, err := svc.Verify(context.Background(), 1, "order_4")
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusPending, result.Status)
	assert.Equal(t, models.TxStatusPending, store.txns["order_4"].Status)
	assert.Equal(t, 0, store.creditCount)
}

func TestVerifyEnforcesOwnership(t *testing.T) {
	store := newFakeStore()
	seedPending(store, "order_5", 10, 50)
	svc := testService(store, "PAID", "waiting")

	_, err := svc.Verify(context.Background(), 99, "order_5")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 0, store.creditCount)
}

func TestVerifyUnknownOrder(t *testing.T) {
	svc := testService(newFakeStore(), "PAID", "waiting")
	_, err := svc.Verify(context.Background(), 1, "order_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateUPIIntentPersistsBeforeGateway(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "ACTIVE", "waiting")
	user := &models.User{ID: 5, Name: "Asha", Email: "asha@example.com"}

	intent, err := svc.CreateUPIIntent(context.Background(), user, IntentInput{
		Amount:  99,
		Credits: 500,
		Plan:    "500 Credits",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, intent.OrderID)
	assert.Equal(t, "https://pay.example/order", intent.PaymentURL)

	txn, err := store.GetByOrderID(context.Background(), intent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusPending, txn.Status)
	assert.Equal(t, "INR", txn.Currency)
	assert.Equal(t, 500, txn.Credits)
}

func TestCreateOxapayIntent(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "ACTIVE", "waiting")
	user := &models.User{ID: 5, Name: "Asha", Email: "asha@example.com"}

	intent, err := svc.CreateOxapayIntent(context.Background(), user, IntentInput{
		Amount:  4.99,
		Credits: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://oxapay.example/invoice", intent.PaymentURL)

	txn, err := store.GetByOrderID(context.Background(), intent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "USD", txn.Currency)
}

func TestCreateOxapayIntentFallbackPage(t *testing.T) {
	t.Setenv("OXAPAY_PAYMENT_URL_BASE", "https://oxapay.com/pay/static")

	store := newFakeStore()
	svc := NewServiceWithGateways(store, &fakeUPIGateway{}, nil, slog.Default())
	user := &models.User{ID: 5, Name: "Asha", Email: "asha@example.com"}

	intent, err := svc.CreateOxapayIntent(context.Background(), user, IntentInput{
		Amount:  4.99,
		Credits: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://oxapay.com/pay/static", intent.PaymentURL)
	assert.NotEmpty(t, intent.Message)

	// The pending row still exists for manual reconciliation.
	txn, err := store.GetByOrderID(context.Background(), intent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusPending, txn.Status)
}

func TestIntentInputValidation(t *testing.T) {
	svc := testService(newFakeStore(), "ACTIVE", "waiting")
	user := &models.User{ID: 1, Email: "u@example.com"}

	_, err := svc.CreateUPIIntent(context.Background(), user, IntentInput{Amount: 0, Credits: 10})
	assert.Error(t, err)

	_, err = svc.CreateUPIIntent(context.Background(), user, IntentInput{Amount: 10, Credits: 0})
	assert.Error(t, err)
}
