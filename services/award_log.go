// services/award_log.go
package services

import (
	"fmt"
	"strings"
	"time"

	"daily-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AwardLogService struct {
	DB *gorm.DB
}

func NewAwardLogService(db *gorm.DB) *AwardLogService {
	return &AwardLogService{DB: db}
}

// LogAttempt inserts one attempt row. The log is append-only: a retried award
// gets a fresh row, existing rows are never touched. Addresses are lowercased
// so the exclusion query and the history lookup match regardless of input
// casing.
func (s *AwardLogService) LogAttempt(entry *models.AwardLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.WalletAddress = strings.ToLower(strings.TrimSpace(entry.WalletAddress))
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.DB.Create(entry).Error; err != nil {
		return fmt.Errorf("insert award log entry: %w", err)
	}
	return nil
}

// PeriodStats aggregates one period's attempts for the operational surface.
type PeriodStats struct {
	PeriodKey   string `json:"period_key"`
	ActionKind  string `json:"action_kind"`
	Attempted   int64  `json:"attempted"`
	Confirmed   int64  `json:"confirmed"`
	Failed      int64  `json:"failed"`
	TotalAmount int64  `json:"total_amount"` // sum of confirmed amounts, whole tokens
}

func (s *AwardLogService) PeriodStats(periodKey, actionKind string) (*PeriodStats, error) {
	stats := &PeriodStats{PeriodKey: periodKey, ActionKind: actionKind}

	if err := s.DB.Model(&models.AwardLog{}).
		Where("period_key = ? AND action_kind = ?", periodKey, actionKind).
		Count(&stats.Attempted).Error; err != nil {
		return nil, fmt.Errorf("count attempted awards: %w", err)
	}

	if err := s.DB.Model(&models.AwardLog{}).
		Where("period_key = ? AND action_kind = ? AND confirmed = ?", periodKey, actionKind, true).
		Count(&stats.Confirmed).Error; err != nil {
		return nil, fmt.Errorf("count confirmed awards: %w", err)
	}
	stats.Failed = stats.Attempted - stats.Confirmed

	if err := s.DB.Model(&models.AwardLog{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("period_key = ? AND action_kind = ? AND confirmed = ?", periodKey, actionKind, true).
		Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("sum confirmed amounts: %w", err)
	}

	return stats, nil
}

// SubjectHistory returns the full attempt trail for one wallet, newest first,
// optionally narrowed to a single period.
func (s *AwardLogService) SubjectHistory(walletAddress, periodKey string) ([]models.AwardLog, error) {
	query := s.DB.Where("wallet_address = ?", strings.ToLower(strings.TrimSpace(walletAddress)))
	if periodKey != "" {
		query = query.Where("period_key = ?", periodKey)
	}

	var entries []models.AwardLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("fetch award history: %w", err)
	}
	return entries, nil
}
