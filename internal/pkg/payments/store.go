package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glimmerlab/glimmer/app/models"
)

// ErrOrderNotFound is returned for unknown order ids and for orders that
// belong to a different user. The two cases are deliberately not
// distinguishable from the outside.
var ErrOrderNotFound = errors.New("order not found")

// Store is the persistence boundary of the verifier. The two mutating calls
// are atomic units so a webhook and a client poll racing on the same order
// can never double-credit.
type Store interface {
	CreatePending(ctx context.Context, txn *models.Transaction) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)

	// CompleteAndCredit transitions the order to completed and credits the
	// buyer in one transaction. When the order is already completed it
	// reports alreadyCompleted=true with the current balance and changes
	// nothing.
	CompleteAndCredit(ctx context.Context, orderID, description string) (newBalance int, alreadyCompleted bool, err error)

	// MarkTerminal sets a failed/cancelled status. Completed orders are
	// never demoted.
	MarkTerminal(ctx context.Context, orderID, status string) error

	// UpdateRawPayload stores the latest gateway response body for
	// operator inspection.
	UpdateRawPayload(ctx context.Context, orderID, raw string) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a GORM handle in the verifier's Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreatePending(ctx context.Context, txn *models.Transaction) error {
	txn.Status = models.TxStatusPending
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *gormStore) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (s *gormStore) CompleteAndCredit(ctx context.Context, orderID, description string) (int, bool, error) {
	var (
		balance          int
		alreadyCompleted bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if txn.Status == models.TxStatusCompleted {
			alreadyCompleted = true
			return tx.Model(&models.User{}).
				Select("credits").
				Where("id = ?", txn.UserID).
				Scan(&balance).Error
		}

		now := time.Now()
		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Updates(map[string]any{
				"status":       models.TxStatusCompleted,
				"completed_at": &now,
			}).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", txn.UserID).
			UpdateColumn("credits", gorm.Expr("credits + ?", txn.Credits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("credit buyer: user %d not found", txn.UserID)
		}

		entry := models.CreditHistory{
			UserID:      txn.UserID,
			Amount:      txn.Credits,
			Type:        models.CreditTypeAdded,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append credit history: %w", err)
		}

		return tx.Model(&models.User{}).
			Select("credits").
			Where("id = ?", txn.UserID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, false, err
	}
	return balance, alreadyCompleted, nil
}

func (s *gormStore) UpdateRawPayload(ctx context.Context, orderID, raw string) error {
	return s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("order_id = ?", orderID).
		Update("raw_payload", raw).Error
}

func (s *gormStore) MarkTerminal(ctx context.Context, orderID, status string) error {
	return s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("order_id = ? AND status <> ?", orderID, models.TxStatusCompleted).
		Update("status", status).Error
}
