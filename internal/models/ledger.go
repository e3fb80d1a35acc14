package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry types
const (
	LedgerTypeDeposit    = "deposit"
	LedgerTypeWithdrawal = "withdrawal"
	LedgerTypePurchase   = "purchase"
	LedgerTypeYield      = "yield"
	LedgerTypeCommission = "commission"
)

// LedgerEntry is an audit row written alongside every balance mutation.
// Amount is negative for debits.
type LedgerEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Type          string         `gorm:"type:varchar(50);not null" json:"type"`
	Amount        float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	Reference     string         `gorm:"type:varchar(100)" json:"reference"`
	Description   string         `gorm:"type:text" json:"description"`
	MetaData      JSON           `gorm:"type:jsonb" json:"metadata"`
	BalanceBefore float64        `gorm:"type:decimal(20,2)" json:"balance_before"`
	BalanceAfter  float64        `gorm:"type:decimal(20,2)" json:"balance_after"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
