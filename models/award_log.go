// models/award_log.go
package models

import (
	"time"
)

// AwardLog records one award attempt against the ledger. Rows are append-only:
// a retry inserts a new row, nothing is ever updated or deleted. The exclusion
// query in the eligibility selector relies on there being at most one row with
// Confirmed=true per (wallet_address, action_kind, period_key).
type AwardLog struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	WalletAddress string    `gorm:"type:varchar(128);not null;index" json:"wallet_address"` // stored lowercased
	ActionKind    string    `gorm:"type:varchar(64);not null;index:idx_award_kind_period" json:"action_kind"`
	PeriodKey     string    `gorm:"type:varchar(10);not null;index:idx_award_kind_period" json:"period_key"` // YYYY-MM-DD (UTC)
	ActionID      string    `gorm:"type:varchar(66);not null;index" json:"action_id"`                        // idempotency digest, hex
	Amount        int64     `gorm:"not null" json:"amount"`                                                  // whole tokens
	TxHash        *string   `gorm:"type:varchar(66)" json:"tx_hash,omitempty"`                               // nil in shadow mode or on pre-submit failure
	Confirmed     bool      `gorm:"default:false;index" json:"confirmed"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
