package repository

import (
	"gorm.io/gorm"

	"github.com/glimmerlab/glimmer/app/models"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepository) GetByOrderID(orderID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("order_id = ?", orderID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) GetByOrderIDForUser(orderID string, userID uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("order_id = ? AND user_id = ?", orderID, userID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) ListByUser(userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

// List retrieves transactions filtered by gateway and/or status, newest first.
// Empty filter values match everything.
func (r *transactionRepository) List(gateway, status string, offset, limit int) ([]models.Transaction, error) {
	query := r.db.Model(&models.Transaction{})
	if gateway != "" {
		query = query.Where("gateway = ?", gateway)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var txs []models.Transaction
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, err
}
