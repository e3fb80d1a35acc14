package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus represents the lifecycle state of an investment product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a purchasable yield-bearing investment product
type Product struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"type:varchar(100);not null" json:"name"`
	Slug           string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Price          float64        `gorm:"type:decimal(20,2);not null" json:"price"`
	DailyYieldRate float64        `gorm:"type:decimal(8,5);not null" json:"daily_yield_rate"`
	DurationDays   int            `gorm:"not null" json:"duration_days"`
	PurchaseLimit  int            `gorm:"default:0" json:"purchase_limit"` // 0 = unlimited
	Status         ProductStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
