package repository

import (
	"gorm.io/gorm"

	"github.com/glimmerlab/glimmer/app/models"
)

// creditPlanRepository implements the CreditPlanRepository interface
type creditPlanRepository struct {
	db *gorm.DB
}

// NewCreditPlanRepository creates a new credit plan repository instance
func NewCreditPlanRepository(db *gorm.DB) CreditPlanRepository {
	return &creditPlanRepository{db: db}
}

func (r *creditPlanRepository) Create(plan *models.CreditPlan) error {
	return r.db.Create(plan).Error
}

func (r *creditPlanRepository) GetByID(id uint) (*models.CreditPlan, error) {
	var plan models.CreditPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *creditPlanRepository) GetAll() ([]models.CreditPlan, error) {
	var plans []models.CreditPlan
	err := r.db.Order("credits ASC").Find(&plans).Error
	return plans, err
}

func (r *creditPlanRepository) Update(plan *models.CreditPlan) error {
	return r.db.Save(plan).Error
}

func (r *creditPlanRepository) Delete(id uint) error {
	return r.db.Delete(&models.CreditPlan{}, id).Error
}
