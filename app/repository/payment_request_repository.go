package repository

import (
	"gorm.io/gorm"

	"github.com/glimmerlab/glimmer/app/models"
)

// paymentRequestRepository implements the PaymentRequestRepository interface
type paymentRequestRepository struct {
	db *gorm.DB
}

// NewPaymentRequestRepository creates a new payment request repository instance
func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

func (r *paymentRequestRepository) Create(req *models.PaymentRequest) error {
	return r.db.Create(req).Error
}

func (r *paymentRequestRepository) GetByID(id uint) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	err := r.db.First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *paymentRequestRepository) ListByUser(userID uint) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *paymentRequestRepository) List(status string, offset, limit int) ([]models.PaymentRequest, error) {
	query := r.db.Model(&models.PaymentRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reqs []models.PaymentRequest
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, err
}
