package repository

import (
	"github.com/glimmerlab/glimmer/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	IsDeviceUsed(deviceID string) (bool, error)
	MarkDeviceUsed(deviceID string, userID uint) error
}

// TransactionRepository defines the interface for payment transaction operations
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByOrderID(orderID string) (*models.Transaction, error)
	GetByOrderIDForUser(orderID string, userID uint) (*models.Transaction, error)
	ListByUser(userID uint) ([]models.Transaction, error)
	List(gateway, status string, offset, limit int) ([]models.Transaction, error)
}

// PaymentRequestRepository defines the interface for manual payment request operations
type PaymentRequestRepository interface {
	Create(req *models.PaymentRequest) error
	GetByID(id uint) (*models.PaymentRequest, error)
	ListByUser(userID uint) ([]models.PaymentRequest, error)
	List(status string, offset, limit int) ([]models.PaymentRequest, error)
}

// CreditPlanRepository defines the interface for credit plan catalog operations
type CreditPlanRepository interface {
	Create(plan *models.CreditPlan) error
	GetByID(id uint) (*models.CreditPlan, error)
	GetAll() ([]models.CreditPlan, error)
	Update(plan *models.CreditPlan) error
	Delete(id uint) error
}

// CreditHistoryRepository defines read access to the ledger audit trail.
// Writes happen exclusively through the ledger service so that every entry
// is created atomically with its balance mutation.
type CreditHistoryRepository interface {
	ListByUser(userID uint) ([]models.CreditHistory, error)
	ListAll(offset, limit int) ([]models.CreditHistory, error)
}
