package wallet

import (
	"errors"
	"fmt"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientFunds is returned when a debit exceeds the available balance
var ErrInsufficientFunds = errors.New("insufficient funds")

// WalletService handles balance mutations. Every mutation runs inside a
// transaction, applies the balance change as a server-side increment and
// writes a ledger row.
type WalletService struct {
	db *gorm.DB
}

// NewWalletService creates a new wallet service
func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// Credit adds funds to a user's balance
func (s *WalletService) Credit(userID uuid.UUID, amount float64, txType, reference, description string, metadata map[string]interface{}) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.CreditTx(tx, userID, amount, txType, reference, description, metadata)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditTx adds funds to a user's balance inside an existing transaction
func (s *WalletService) CreditTx(tx *gorm.DB, userID uuid.UUID, amount float64, txType, reference, description string, metadata map[string]interface{}) (*models.LedgerEntry, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	// Server-side increment rather than save of a computed value, so two
	// concurrent credits cannot lose an update.
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("error updating balance: %w", err)
	}

	entry := models.LedgerEntry{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Reference:     reference,
		Description:   description,
		MetaData:      metadata,
		BalanceBefore: user.Balance,
		BalanceAfter:  user.Balance + amount,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("error creating ledger entry: %w", err)
	}

	return &entry, nil
}

// CreditCommissionTx credits a referral commission: the amount lands on the
// spendable balance and also accrues on the lifetime commission counter.
func (s *WalletService) CreditCommissionTx(tx *gorm.DB, userID uuid.UUID, amount float64, reference, description string, metadata map[string]interface{}) (*models.LedgerEntry, error) {
	entry, err := s.CreditTx(tx, userID, amount, models.LedgerTypeCommission, reference, description, metadata)
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("commission_balance", gorm.Expr("commission_balance + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("error updating commission balance: %w", err)
	}

	return entry, nil
}

// Debit removes funds from a user's balance, failing when funds are short
func (s *WalletService) Debit(userID uuid.UUID, amount float64, txType, reference, description string, metadata map[string]interface{}) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.DebitTx(tx, userID, amount, txType, reference, description, metadata)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DebitTx removes funds from a user's balance inside an existing transaction
func (s *WalletService) DebitTx(tx *gorm.DB, userID uuid.UUID, amount float64, txType, reference, description string, metadata map[string]interface{}) (*models.LedgerEntry, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if user.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("error updating balance: %w", err)
	}

	entry := models.LedgerEntry{
		UserID:        userID,
		Type:          txType,
		Amount:        -amount,
		Reference:     reference,
		Description:   description,
		MetaData:      metadata,
		BalanceBefore: user.Balance,
		BalanceAfter:  user.Balance - amount,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("error creating ledger entry: %w", err)
	}

	return &entry, nil
}

// GetLedger returns a page of ledger entries for a user, newest first
func (s *WalletService) GetLedger(userID uuid.UUID, page, pageSize int) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	var total int64

	if err := s.db.Model(&models.LedgerEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting ledger entries: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding ledger entries: %w", err)
	}

	return entries, total, nil
}
