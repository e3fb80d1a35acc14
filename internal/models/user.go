package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform account. Balance holds withdrawable funds,
// CommissionBalance tracks the lifetime total earned through referrals.
type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Email             string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username          string         `gorm:"type:varchar(50);uniqueIndex" json:"username"`
	FirstName         string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName          string         `gorm:"type:varchar(100)" json:"last_name"`
	PasswordHash      string         `gorm:"type:varchar(255);not null" json:"-"`
	Balance           float64        `gorm:"type:decimal(20,2);default:0" json:"balance"`
	CommissionBalance float64        `gorm:"type:decimal(20,2);default:0" json:"commission_balance"`
	ReferralCode      string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"referral_code"`
	ReferredBy        *uuid.UUID     `gorm:"type:uuid;index" json:"referred_by,omitempty"`
	TwoFactorSecret   string         `gorm:"type:varchar(64)" json:"-"`
	TwoFactorEnabled  bool           `gorm:"default:false" json:"two_factor_enabled"`
	IsAdmin           bool           `gorm:"default:false" json:"is_admin"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt       *time.Time     `json:"last_login_at"`
	CreatedAt         time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
