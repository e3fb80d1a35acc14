package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/investment"
	"github.com/arvoinvest/backend/internal/services/referral"
	"github.com/arvoinvest/backend/internal/services/wallet"
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

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LedgerEntry{},
		&models.Investment{},
		&models.Commission{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, referredBy *uuid.UUID) *models.User {
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		Username:     uuid.NewString()[:8],
		PasswordHash: "x",
		ReferralCode: utils.GenerateReferralCode(8),
		ReferredBy:   referredBy,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCommissionJobPaysUplineAndSurvivesRetry(t *testing.T) {
	db := setupTestDB(t)
	referrals := referral.NewReferralService(db, wallet.NewWalletService(db))
	handler := NewCommissionJob(referrals)

	grandparent := createUser(t, db, nil)
	parent := createUser(t, db, &grandparent.ID)
	investor := createUser(t, db, &parent.ID)

	payload, err := json.Marshal(investment.CommissionJobPayload{
		InvestmentID: uuid.New(),
		UserID:       investor.ID,
		Amount:       1000,
	})
	require.NoError(t, err)

	job := &queue.Job{Type: investment.JobTypeReferralCommission, Payload: payload}

	result, err := handler.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"commissions_paid": 2}, result)

	// A retried job must not double-pay
	result, err = handler.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"commissions_paid": 0}, result)

	var reloadedParent models.User
	require.NoError(t, db.First(&reloadedParent, "id = ?", parent.ID).Error)
	assert.InDelta(t, 100.0, reloadedParent.Balance, 0.001)

	var reloadedGrandparent models.User
	require.NoError(t, db.First(&reloadedGrandparent, "id = ?", grandparent.ID).Error)
	assert.InDelta(t, 40.0, reloadedGrandparent.Balance, 0.001)
}

func TestCommissionJobRejectsMalformedPayload(t *testing.T) {
	db := setupTestDB(t)
	referrals := referral.NewReferralService(db, wallet.NewWalletService(db))
	handler := NewCommissionJob(referrals)

	job := &queue.Job{Type: investment.JobTypeReferralCommission, Payload: []byte("not json")}
	_, err := handler.Process(context.Background(), job)
	assert.Error(t, err)
}
