package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepositMethod represents a supported deposit rail
type DepositMethod string

const (
	DepositMethodPix    DepositMethod = "pix"
	DepositMethodCrypto DepositMethod = "crypto"
)

// DepositStatus represents the state of a deposit
type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusCompleted DepositStatus = "completed"
	DepositStatusFailed    DepositStatus = "failed"
	DepositStatusExpired   DepositStatus = "expired"
)

// Deposit represents an inbound transfer created through one of the payment rails
type Deposit struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Method       DepositMethod  `gorm:"type:varchar(20);not null" json:"method"`
	Amount       float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	Reference    string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	ProviderTxID string         `gorm:"type:varchar(191);index" json:"provider_tx_id"`
	PixQRCode    string         `gorm:"type:text" json:"pix_qr_code,omitempty"`
	CryptoTxHash string         `gorm:"type:varchar(120)" json:"crypto_tx_hash,omitempty"`
	Status       DepositStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaidAt       *time.Time     `json:"paid_at,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// WithdrawalStatus represents the state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// Withdrawal represents a request to move funds off the platform
type Withdrawal struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User             `gorm:"foreignKey:UserID" json:"-"`
	Amount      float64          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Method      DepositMethod    `gorm:"type:varchar(20);not null" json:"method"`
	Destination string           `gorm:"type:varchar(191);not null" json:"destination"` // PIX key or crypto address
	Reference   string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	Status      WithdrawalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
	CreatedAt   time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
