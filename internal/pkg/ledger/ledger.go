package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glimmerlab/glimmer/app/models"
)

var (
	// ErrInsufficientCredits is returned when a debit would take the
	// balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Service is the authoritative credit ledger. Every balance mutation goes
// through here and is written atomically with its CreditHistory entry.
type Service struct {
	db *gorm.DB
}

// NewService creates a ledger service from a GORM DB handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Debit removes amount credits from the user and appends a "deducted"
// history entry. The balance check and the decrement are a single
// conditional UPDATE, so two concurrent debits can never drive the stored
// balance negative.
func (s *Service) Debit(ctx context.Context, userID uint, amount int, description string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var balance int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND credits >= ?", userID, amount).
			UpdateColumn("credits", gorm.Expr("credits - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return ErrInsufficientCredits
		}

		entry := models.CreditHistory{
			UserID:      userID,
			Amount:      amount,
			Type:        models.CreditTypeDeducted,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append credit history: %w", err)
		}

		return tx.Model(&models.User{}).
			Select("credits").
			Where("id = ?", userID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Credit adds amount credits to the user and appends an "added" history entry.
func (s *Service) Credit(ctx context.Context, userID uint, amount int, description string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var balance int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("credits", gorm.Expr("credits + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		entry := models.CreditHistory{
			UserID:      userID,
			Amount:      amount,
			Type:        models.CreditTypeAdded,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append credit history: %w", err)
		}

		return tx.Model(&models.User{}).
			Select("credits").
			Where("id = ?", userID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// AdjustTo sets the user balance to an absolute value (admin operation) and
// records the signed difference as a single history entry. No entry is
// written when the balance is unchanged.
func (s *Service) AdjustTo(ctx context.Context, userID uint, newCredits int, description string) (int, error) {
	if newCredits < 0 {
		return 0, ErrInvalidAmount
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		delta := newCredits - user.Credits
		if delta == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("credits", newCredits).Error; err != nil {
			return err
		}

		entryType := models.CreditTypeAdded
		if delta < 0 {
			entryType = models.CreditTypeDeducted
			delta = -delta
		}
		entry := models.CreditHistory{
			UserID:      userID,
			Amount:      delta,
			Type:        entryType,
			Description: description,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return 0, err
	}
	return newCredits, nil
}

// Balance returns the current credit balance for a user.
func (s *Service) Balance(ctx context.Context, userID uint) (int, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.Credits, nil
}
