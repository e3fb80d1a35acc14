package referral

import (
	"errors"
	"fmt"
	"log"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// levelRates holds the commission rate per upline level. Index 0 is level 1.
// A full 7-level chain pays out 20% of the investment amount.
var levelRates = [MaxLevels]float64{0.10, 0.04, 0.02, 0.01, 0.01, 0.01, 0.01}

// RateForLevel returns the commission rate for an upline level (1-based)
func RateForLevel(level int) float64 {
	if level < 1 || level > MaxLevels {
		return 0
	}
	return levelRates[level-1]
}

// ReferralService resolves upline chains and pays out multi-level commissions
type ReferralService struct {
	db      *gorm.DB
	wallets *wallet.WalletService
}

// NewReferralService creates a new referral service
func NewReferralService(db *gorm.DB, wallets *wallet.WalletService) *ReferralService {
	return &ReferralService{db: db, wallets: wallets}
}

// ApplyCommissions pays referral commissions for an investment. Each upline
// level is settled in its own transaction: the commission row and the balance
// credit commit together, and a failure rolls back and skips only that level.
// Skipped levels are logged and never retried. Levels that already hold a
// commission for this investment are skipped, so re-running the fan-out for
// the same investment cannot double-pay.
func (s *ReferralService) ApplyCommissions(investorID uuid.UUID, amount float64, investmentID uuid.UUID) []models.Commission {
	created := make([]models.Commission, 0, MaxLevels)

	chain := s.ResolveChain(investorID)
	for i, beneficiaryID := range chain {
		level := i + 1
		rate := RateForLevel(level)

		commission, err := s.applyLevel(investorID, investmentID, beneficiaryID, level, rate, amount)
		if err != nil {
			log.Printf("Skipping level %d commission for investment %s: %v", level, investmentID, err)
			continue
		}
		if commission != nil {
			created = append(created, *commission)
		}
	}

	return created
}

// applyLevel settles one upline level. It returns (nil, nil) when the level
// was already paid.
func (s *ReferralService) applyLevel(investorID, investmentID, beneficiaryID uuid.UUID, level int, rate, investmentAmount float64) (*models.Commission, error) {
	var existing models.Commission
	err := s.db.Where("investment_id = ? AND level = ?", investmentID, level).First(&existing).Error
	if err == nil {
		log.Printf("Commission for investment %s level %d already exists, skipping", investmentID, level)
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing commission: %w", err)
	}

	amount := investmentAmount * rate
	commission := models.Commission{
		BeneficiaryID: beneficiaryID,
		SourceUserID:  investorID,
		InvestmentID:  investmentID,
		Level:         level,
		Percentage:    rate,
		Amount:        amount,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The unique (investment_id, level) index backstops the read-check
		// above when two fan-outs race.
		if err := tx.Create(&commission).Error; err != nil {
			return fmt.Errorf("error creating commission: %w", err)
		}

		_, err := s.wallets.CreditCommissionTx(
			tx,
			beneficiaryID,
			amount,
			utils.GenerateReference("COM"),
			fmt.Sprintf("Level %d referral commission", level),
			map[string]interface{}{
				"investment_id":  investmentID.String(),
				"source_user_id": investorID.String(),
				"level":          level,
			},
		)
		if err != nil {
			return fmt.Errorf("error crediting beneficiary: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &commission, nil
}
