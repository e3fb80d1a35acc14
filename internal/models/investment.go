package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvestmentStatus represents the state of an investment
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// Investment represents a product purchase. Amount and the yield terms are
// frozen at purchase time; only the yield bookkeeping fields change afterwards.
type Investment struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User             `gorm:"foreignKey:UserID" json:"-"`
	ProductID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       Product          `gorm:"foreignKey:ProductID" json:"-"`
	Amount        float64          `gorm:"type:decimal(20,2);not null" json:"amount"`
	DailyYield    float64          `gorm:"type:decimal(20,2);not null" json:"daily_yield"`
	DurationDays  int              `gorm:"not null" json:"duration_days"`
	DaysPaid      int              `gorm:"not null;default:0" json:"days_paid"`
	TotalReturned float64          `gorm:"type:decimal(20,2);not null;default:0" json:"total_returned"`
	LastYieldAt   *time.Time       `json:"last_yield_at,omitempty"`
	NextYieldAt   *time.Time       `gorm:"index" json:"next_yield_at,omitempty"`
	Reference     string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	Status        InvestmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
