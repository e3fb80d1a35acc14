package wallet

import (
	"testing"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.LedgerEntry{}))
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

func TestCreditWritesLedgerAndBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createUser(t, db, 50)

	entry, err := svc.Credit(user.ID, 25, models.LedgerTypeDeposit, "REF1", "test credit", nil)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, entry.BalanceBefore, 0.001)
	assert.InDelta(t, 75.0, entry.BalanceAfter, 0.001)
	assert.InDelta(t, 25.0, entry.Amount, 0.001)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 75.0, reloaded.Balance, 0.001)
}

func TestDebitChecksFunds(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createUser(t, db, 30)

	_, err := svc.Debit(user.ID, 100, models.LedgerTypeWithdrawal, "REF2", "too much", nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 30.0, reloaded.Balance, 0.001)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDebitRecordsNegativeAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createUser(t, db, 100)

	entry, err := svc.Debit(user.ID, 40, models.LedgerTypePurchase, "REF3", "purchase", nil)
	require.NoError(t, err)

	assert.InDelta(t, -40.0, entry.Amount, 0.001)
	assert.InDelta(t, 60.0, entry.BalanceAfter, 0.001)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 60.0, reloaded.Balance, 0.001)
}

func TestCreditCommissionAccruesLifetimeCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createUser(t, db, 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.CreditCommissionTx(tx, user.ID, 15, "REF4", "commission", nil)
		return err
	})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.InDelta(t, 15.0, reloaded.Balance, 0.001)
	assert.InDelta(t, 15.0, reloaded.CommissionBalance, 0.001)
}

func TestGetLedgerPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWalletService(db)

	user := createUser(t, db, 0)
	for i := 0; i < 5; i++ {
		_, err := svc.Credit(user.ID, 1, models.LedgerTypeDeposit, utils.GenerateReference("DEP"), "drip", nil)
		require.NoError(t, err)
	}

	entries, total, err := svc.GetLedger(user.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, entries, 2)
}
