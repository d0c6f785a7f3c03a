package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a local snapshot of user data needed for reward reconciliation.
// Owned and managed solely by this service; populated via the sync worker
// from the profile service. The award pipeline only reads it.
type User struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string     `gorm:"uniqueIndex;not null" json:"external_user_id"` // profile service UUID
	Username       string     `gorm:"index;not null" json:"username"`
	WalletAddress  *string    `gorm:"type:varchar(128);index" json:"wallet_address,omitempty"` // ledger-facing identifier; nil until the user links a wallet
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	IsBanned       bool       `gorm:"default:false" json:"is_banned"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
