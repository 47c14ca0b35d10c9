package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository implementations.
type Repositories struct {
	User           UserRepository
	Transaction    TransactionRepository
	PaymentRequest PaymentRequestRepository
	CreditPlan     CreditPlanRepository
	CreditHistory  CreditHistoryRepository
}

// NewRepositories creates all repositories backed by the given DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		Transaction:    NewTransactionRepository(db),
		PaymentRequest: NewPaymentRequestRepository(db),
		CreditPlan:     NewCreditPlanRepository(db),
		CreditHistory:  NewCreditHistoryRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

func (f *Factory) GetTransactionRepository() TransactionRepository {
	return f.GetRepositories().Transaction
}

func (f *Factory) GetPaymentRequestRepository() PaymentRequestRepository {
	return f.GetRepositories().PaymentRequest
}

func (f *Factory) GetCreditPlanRepository() CreditPlanRepository {
	return f.GetRepositories().CreditPlan
}

func (f *Factory) GetCreditHistoryRepository() CreditHistoryRepository {
	return f.GetRepositories().CreditHistory
}

var (
	globalFactory   *Factory
	globalFactoryMu sync.RWMutex
)

// InitGlobalFactory sets up the process-wide repository factory.
func InitGlobalFactory(db *gorm.DB) {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	globalFactory = NewFactory(db)
}

// GetGlobalFactory returns the process-wide repository factory.
func GetGlobalFactory() *Factory {
	globalFactoryMu.RLock()
	defer globalFactoryMu.RUnlock()
	return globalFactory
}
