package referral

import (
	"fmt"
	"time"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/google/uuid"
)

// CommissionStats summarizes the commissions earned by a beneficiary
type CommissionStats struct {
	TotalCommissions float64            `json:"total_commissions"`
	LevelTotals      [MaxLevels]float64 `json:"level_totals"`
	ThisMonthTotal   float64            `json:"this_month_total"`
	CommissionsCount int                `json:"commissions_count"`
}

// CommissionStats reads every commission credited to the user and buckets
// the amounts per level, plus a separate total for the current calendar
// month in the server's local time.
func (s *ReferralService) CommissionStats(userID uuid.UUID) (*CommissionStats, error) {
	var commissions []models.Commission
	if err := s.db.Where("beneficiary_id = ?", userID).Find(&commissions).Error; err != nil {
		return nil, fmt.Errorf("error loading commissions: %w", err)
	}

	stats := &CommissionStats{CommissionsCount: len(commissions)}

	now := time.Now()
	for _, c := range commissions {
		stats.TotalCommissions += c.Amount
		if c.Level >= 1 && c.Level <= MaxLevels {
			stats.LevelTotals[c.Level-1] += c.Amount
		}
		if c.CreatedAt.Year() == now.Year() && c.CreatedAt.Month() == now.Month() {
			stats.ThisMonthTotal += c.Amount
		}
	}

	return stats, nil
}
