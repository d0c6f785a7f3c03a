package services

import (
	"fmt"

	"daily-rewards-system/models"

	"gorm.io/gorm"
)

type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

// SelectEligible returns every user whose qualifying login falls inside the
// period window and who has no confirmed award yet for (actionKind, period).
// Users without a linked wallet and banned users are excluded up front; they
// cannot be paid. A data-access error here must abort the whole run — the
// caller never awards against a partial eligibility set.
func (s *EligibilityService) SelectEligible(periodKey, actionKind string) ([]models.User, error) {
	start, end, err := PeriodBounds(periodKey)
	if err != nil {
		return nil, err
	}

	rewarded := s.DB.Model(&models.AwardLog{}).
		Select("wallet_address").
		Where("action_kind = ? AND period_key = ? AND confirmed = ?", actionKind, periodKey, true)

	var users []models.User
	if err := s.DB.
		Where("wallet_address IS NOT NULL AND wallet_address <> ''").
		Where("is_banned = ?", false).
		Where("last_login_at >= ? AND last_login_at < ?", start, end).
		Where("LOWER(wallet_address) NOT IN (?)", rewarded).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("eligibility query failed: %w", err)
	}

	return users, nil
}
