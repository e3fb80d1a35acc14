package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/services/payment/providers/pix"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrDepositNotPending is returned when completing a deposit twice
	ErrDepositNotPending = errors.New("deposit is not pending")

	// ErrWithdrawalNotPending is returned when processing a withdrawal twice
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
)

// PixClient is the subset of the PIX gateway the service depends on
type PixClient interface {
	CreateCharge(amount float64, reference, payerEmail string) (*pix.Charge, error)
	GetCharge(txID string) (*pix.GetChargeResponse, error)
}

// PaymentService manages deposits and withdrawals across the payment rails
type PaymentService struct {
	db      *gorm.DB
	wallets *wallet.WalletService
	pix     PixClient
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, wallets *wallet.WalletService, pixClient PixClient) *PaymentService {
	return &PaymentService{db: db, wallets: wallets, pix: pixClient}
}

// InitiatePixDeposit creates a pending deposit and a PIX charge for it. The
// QR code is stored on the deposit so the user can retrieve it later.
func (s *PaymentService) InitiatePixDeposit(userID uuid.UUID, amount float64, payerEmail string) (*models.Deposit, error) {
	deposit := models.Deposit{
		UserID:    userID,
		Method:    models.DepositMethodPix,
		Amount:    amount,
		Reference: newDepositReference(),
		Status:    models.DepositStatusPending,
	}

	charge, err := s.pix.CreateCharge(amount, deposit.Reference, payerEmail)
	if err != nil {
		return nil, fmt.Errorf("error creating pix charge: %w", err)
	}
	deposit.ProviderTxID = charge.TxID
	deposit.PixQRCode = charge.QRCode

	if err := s.db.Create(&deposit).Error; err != nil {
		return nil, fmt.Errorf("error creating deposit: %w", err)
	}
	return &deposit, nil
}

// SubmitCryptoDeposit records a pending crypto deposit by tx hash. The amount
// is taken from the chain once the tx is verified, not from the user.
func (s *PaymentService) SubmitCryptoDeposit(userID uuid.UUID, txHash string) (*models.Deposit, error) {
	var existing models.Deposit
	err := s.db.Where("crypto_tx_hash = ?", txHash).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("transaction %s already submitted", txHash)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing deposit: %w", err)
	}

	deposit := models.Deposit{
		UserID:       userID,
		Method:       models.DepositMethodCrypto,
		Reference:    newDepositReference(),
		CryptoTxHash: txHash,
		Status:       models.DepositStatusPending,
	}
	if err := s.db.Create(&deposit).Error; err != nil {
		return nil, fmt.Errorf("error creating deposit: %w", err)
	}
	return &deposit, nil
}

// CompleteDeposit credits the deposit amount and marks the deposit completed.
// The status flip and the credit commit together, and only a pending deposit
// can complete, so a replayed webhook cannot credit twice.
func (s *PaymentService) CompleteDeposit(depositID uuid.UUID, amount float64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var deposit models.Deposit
		if err := tx.First(&deposit, "id = ?", depositID).Error; err != nil {
			return fmt.Errorf("error finding deposit: %w", err)
		}
		if deposit.Status != models.DepositStatusPending {
			return ErrDepositNotPending
		}

		now := time.Now()
		if err := tx.Model(&deposit).Updates(map[string]interface{}{
			"status":  models.DepositStatusCompleted,
			"amount":  amount,
			"paid_at": now,
		}).Error; err != nil {
			return fmt.Errorf("error updating deposit: %w", err)
		}

		_, err := s.wallets.CreditTx(tx, deposit.UserID, amount, models.LedgerTypeDeposit,
			deposit.Reference,
			fmt.Sprintf("%s deposit", deposit.Method),
			map[string]interface{}{
				"deposit_id": deposit.ID.String(),
				"method":     string(deposit.Method),
			})
		return err
	})
}

// FailDeposit marks a pending deposit failed or expired
func (s *PaymentService) FailDeposit(depositID uuid.UUID, status models.DepositStatus) error {
	result := s.db.Model(&models.Deposit{}).
		Where("id = ? AND status = ?", depositID, models.DepositStatusPending).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("error updating deposit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDepositNotPending
	}
	return nil
}

// GetDepositByReference looks up a deposit by the platform reference
func (s *PaymentService) GetDepositByReference(reference string) (*models.Deposit, error) {
	var deposit models.Deposit
	if err := s.db.Where("reference = ?", reference).First(&deposit).Error; err != nil {
		return nil, fmt.Errorf("error finding deposit: %w", err)
	}
	return &deposit, nil
}

// GetUserDeposits returns a user's deposits, newest first
func (s *PaymentService) GetUserDeposits(userID uuid.UUID) ([]models.Deposit, error) {
	var deposits []models.Deposit
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&deposits).Error; err != nil {
		return nil, fmt.Errorf("error finding deposits: %w", err)
	}
	return deposits, nil
}

// RequestWithdrawal debits the balance immediately and opens a pending
// withdrawal. A rejection refunds the debit.
func (s *PaymentService) RequestWithdrawal(userID uuid.UUID, amount float64, method models.DepositMethod, destination string) (*models.Withdrawal, error) {
	withdrawal := models.Withdrawal{
		UserID:      userID,
		Amount:      amount,
		Method:      method,
		Destination: destination,
		Reference:   newWithdrawalReference(),
		Status:      models.WithdrawalStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&withdrawal).Error; err != nil {
			return fmt.Errorf("error creating withdrawal: %w", err)
		}

		_, err := s.wallets.DebitTx(tx, userID, amount, models.LedgerTypeWithdrawal,
			withdrawal.Reference,
			fmt.Sprintf("%s withdrawal to %s", method, destination),
			map[string]interface{}{
				"withdrawal_id": withdrawal.ID.String(),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// ApproveWithdrawal marks a pending withdrawal completed
func (s *PaymentService) ApproveWithdrawal(withdrawalID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":       models.WithdrawalStatusCompleted,
			"processed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("error updating withdrawal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWithdrawalNotPending
	}
	return nil
}

// RejectWithdrawal refunds the held amount and marks the withdrawal rejected
func (s *PaymentService) RejectWithdrawal(withdrawalID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var withdrawal models.Withdrawal
		if err := tx.First(&withdrawal, "id = ?", withdrawalID).Error; err != nil {
			return fmt.Errorf("error finding withdrawal: %w", err)
		}
		if withdrawal.Status != models.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		now := time.Now()
		if err := tx.Model(&withdrawal).Updates(map[string]interface{}{
			"status":       models.WithdrawalStatusRejected,
			"processed_at": now,
		}).Error; err != nil {
			return fmt.Errorf("error updating withdrawal: %w", err)
		}

		_, err := s.wallets.CreditTx(tx, withdrawal.UserID, withdrawal.Amount, models.LedgerTypeWithdrawal,
			withdrawal.Reference,
			"Withdrawal rejected, amount refunded",
			map[string]interface{}{
				"withdrawal_id": withdrawal.ID.String(),
			})
		return err
	})
}

func newDepositReference() string {
	return utils.GenerateReference("DEP")
}

func newWithdrawalReference() string {
	return utils.GenerateReference("WDL")
}

// GetUserWithdrawals returns a user's withdrawals, newest first
func (s *PaymentService) GetUserWithdrawals(userID uuid.UUID) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		return nil, fmt.Errorf("error finding withdrawals: %w", err)
	}
	return withdrawals, nil
}
