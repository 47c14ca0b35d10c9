package repository

import (
	"gorm.io/gorm"

	"github.com/glimmerlab/glimmer/app/models"
)

// creditHistoryRepository implements the CreditHistoryRepository interface
type creditHistoryRepository struct {
	db *gorm.DB
}

// NewCreditHistoryRepository creates a new credit history repository instance
func NewCreditHistoryRepository(db *gorm.DB) CreditHistoryRepository {
	return &creditHistoryRepository{db: db}
}

func (r *creditHistoryRepository) ListByUser(userID uint) ([]models.CreditHistory, error) {
	var entries []models.CreditHistory
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *creditHistoryRepository) ListAll(offset, limit int) ([]models.CreditHistory, error) {
	var entries []models.CreditHistory
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}
