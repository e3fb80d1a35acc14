package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Commission represents a referral commission credited to an upline user for
// a downline investment. At most one row exists per (investment, level); the
// unique index backs the duplicate guard in the commission engine.
type Commission struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	BeneficiaryID uuid.UUID      `gorm:"type:uuid;not null;index" json:"beneficiary_id"`
	Beneficiary   User           `gorm:"foreignKey:BeneficiaryID" json:"-"`
	SourceUserID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"source_user_id"`
	SourceUser    User           `gorm:"foreignKey:SourceUserID" json:"-"`
	InvestmentID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_commissions_investment_level,unique" json:"investment_id"`
	Investment    Investment     `gorm:"foreignKey:InvestmentID" json:"-"`
	Level         int            `gorm:"not null;index:idx_commissions_investment_level,unique" json:"level"`
	Percentage    float64        `gorm:"type:decimal(8,5);not null" json:"percentage"`
	Amount        float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (c *Commission) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
