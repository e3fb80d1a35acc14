package payment

import (
	"testing"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/services/payment/providers/pix"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakePixClient stands in for the PIX gateway
type fakePixClient struct {
	charges int
}

func (f *fakePixClient) CreateCharge(amount float64, reference, payerEmail string) (*pix.Charge, error) {
	f.charges++
	return &pix.Charge{
		TxID:   "TX" + reference,
		QRCode: "00020126pixqr" + reference,
	}, nil
}

func (f *fakePixClient) GetCharge(txID string) (*pix.GetChargeResponse, error) {
	return &pix.GetChargeResponse{Status: true}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LedgerEntry{},
		&models.Deposit{},
		&models.Withdrawal{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, balance float64) *models.User {
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		Username:     uuid.NewString()[:8],
		PasswordHash: "x",
		ReferralCode: utils.GenerateReferralCode(8),
		Balance:      balance,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newService(db *gorm.DB) *PaymentService {
	return NewPaymentService(db, wallet.NewWalletService(db), &fakePixClient{})
}

func TestInitiatePixDepositStoresCharge(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 0)
	deposit, err := svc.InitiatePixDeposit(user.ID, 250, user.Email)
	require.NoError(t, err)

	assert.Equal(t, models.DepositStatusPending, deposit.Status)
	assert.Equal(t, models.DepositMethodPix, deposit.Method)
	assert.NotEmpty(t, deposit.PixQRCode)
	assert.NotEmpty(t, deposit.ProviderTxID)
	assert.NotEmpty(t, deposit.Reference)
}

func TestCompleteDepositCreditsOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 0)
	deposit, err := svc.InitiatePixDeposit(user.ID, 250, user.Email)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteDeposit(deposit.ID, 250))

	// Webhook replay
	err = svc.CompleteDeposit(deposit.ID, 250)
	assert.ErrorIs(t, err, ErrDepositNotPending)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 250.0, reloaded.Balance, 0.001)

	var entries int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	assert.EqualValues(t, 1, entries)
}

func TestSubmitCryptoDepositRejectsDuplicateHash(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 0)
	txHash := "0xabc123"

	_, err := svc.SubmitCryptoDeposit(user.ID, txHash)
	require.NoError(t, err)

	_, err = svc.SubmitCryptoDeposit(user.ID, txHash)
	assert.Error(t, err)
}

func TestRequestWithdrawalHoldsFunds(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 500)
	withdrawal, err := svc.RequestWithdrawal(user.ID, 200, models.DepositMethodPix, "pix-key@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.WithdrawalStatusPending, withdrawal.Status)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 300.0, reloaded.Balance, 0.001)
}

func TestRequestWithdrawalFailsWhenShort(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 100)
	_, err := svc.RequestWithdrawal(user.ID, 200, models.DepositMethodPix, "pix-key@example.com")
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	var count int64
	require.NoError(t, db.Model(&models.Withdrawal{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRejectWithdrawalRefunds(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 500)
	withdrawal, err := svc.RequestWithdrawal(user.ID, 200, models.DepositMethodPix, "pix-key@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.RejectWithdrawal(withdrawal.ID))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 500.0, reloaded.Balance, 0.001)

	// A rejected withdrawal cannot be approved or rejected again
	assert.ErrorIs(t, svc.ApproveWithdrawal(withdrawal.ID), ErrWithdrawalNotPending)
	assert.ErrorIs(t, svc.RejectWithdrawal(withdrawal.ID), ErrWithdrawalNotPending)
}

func TestApproveWithdrawalIsFinal(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, 500)
	withdrawal, err := svc.RequestWithdrawal(user.ID, 150, models.DepositMethodCrypto, "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)

	require.NoError(t, svc.ApproveWithdrawal(withdrawal.ID))

	var reloaded models.Withdrawal
	require.NoError(t, db.First(&reloaded, "id = ?", withdrawal.ID).Error)
	assert.Equal(t, models.WithdrawalStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.ProcessedAt)

	var owner models.User
	require.NoError(t, db.First(&owner, "id = ?", user.ID).Error)
	assert.InDelta(t, 350.0, owner.Balance, 0.001)
}
