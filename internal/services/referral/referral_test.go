package referral

import (
	"testing"
	"time"

	"github.com/arvoinvest/backend/internal/models"
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

// createChain builds a referral line of the given depth and returns the users
// root-first. Each user is referred by the previous one.
func createChain(t *testing.T, db *gorm.DB, depth int) []*models.User {
	users := make([]*models.User, 0, depth)
	var parent *uuid.UUID
	for i := 0; i < depth; i++ {
		u := createUser(t, db, parent)
		users = append(users, u)
		parent = &u.ID
	}
	return users
}

func newService(db *gorm.DB) *ReferralService {
	return NewReferralService(db, wallet.NewWalletService(db))
}

func TestResolveChainNoReferrer(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	user := createUser(t, db, nil)
	chain := svc.ResolveChain(user.ID)
	assert.Empty(t, chain)
}

func TestResolveChainNearestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	users := createChain(t, db, 4)
	chain := svc.ResolveChain(users[3].ID)

	require.Len(t, chain, 3)
	assert.Equal(t, users[2].ID, chain[0])
	assert.Equal(t, users[1].ID, chain[1])
	assert.Equal(t, users[0].ID, chain[2])
}

func TestResolveChainCapsAtSevenLevels(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	users := createChain(t, db, 10)
	chain := svc.ResolveChain(users[9].ID)

	require.Len(t, chain, MaxLevels)
	assert.Equal(t, users[8].ID, chain[0])
	assert.Equal(t, users[3].ID, chain[6])
}

func TestResolveChainStopsOnMissingReferrer(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	ghost := uuid.New()
	user := createUser(t, db, &ghost)

	chain := svc.ResolveChain(user.ID)
	require.Len(t, chain, 1)
	assert.Equal(t, ghost, chain[0])
}

func TestResolveChainSurvivesCycle(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	a := createUser(t, db, nil)
	b := createUser(t, db, &a.ID)
	c := createUser(t, db, &b.ID)
	require.NoError(t, db.Model(a).Update("referred_by", c.ID).Error)

	chain := svc.ResolveChain(a.ID)
	assert.Len(t, chain, MaxLevels)
}

func TestApplyCommissionsThreeAncestors(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	users := createChain(t, db, 4)
	investor := users[3]
	investmentID := uuid.New()

	created := svc.ApplyCommissions(investor.ID, 1000, investmentID)
	require.Len(t, created, 3)

	assert.Equal(t, 1, created[0].Level)
	assert.InDelta(t, 100.0, created[0].Amount, 0.001)
	assert.Equal(t, users[2].ID, created[0].BeneficiaryID)

	assert.Equal(t, 2, created[1].Level)
	assert.InDelta(t, 40.0, created[1].Amount, 0.001)
	assert.Equal(t, users[1].ID, created[1].BeneficiaryID)

	assert.Equal(t, 3, created[2].Level)
	assert.InDelta(t, 20.0, created[2].Amount, 0.001)
	assert.Equal(t, users[0].ID, created[2].BeneficiaryID)

	var count int64
	require.NoError(t, db.Model(&models.Commission{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var parent models.User
	require.NoError(t, db.First(&parent, "id = ?", users[2].ID).Error)
	assert.InDelta(t, 100.0, parent.Balance, 0.001)
	assert.InDelta(t, 100.0, parent.CommissionBalance, 0.001)

	var entry models.LedgerEntry
	require.NoError(t, db.First(&entry, "user_id = ?", users[2].ID).Error)
	assert.Equal(t, models.LedgerTypeCommission, entry.Type)
	assert.InDelta(t, 100.0, entry.Amount, 0.001)
}

func TestApplyCommissionsFullChainPaysTwentyPercent(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	users := createChain(t, db, 8)
	investor := users[7]

	created := svc.ApplyCommissions(investor.ID, 500, uuid.New())
	require.Len(t, created, MaxLevels)

	var total float64
	for _, c := range created {
		total += c.Amount
	}
	assert.InDelta(t, 100.0, total, 0.001) // 20% of 500
}

func TestApplyCommissionsIsIdempotentPerInvestment(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	users := createChain(t, db, 3)
	investor := users[2]
	investmentID := uuid.New()

	first := svc.ApplyCommissions(investor.ID, 1000, investmentID)
	require.Len(t, first, 2)

	second := svc.ApplyCommissions(investor.ID, 1000, investmentID)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&models.Commission{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var parent models.User
	require.NoError(t, db.First(&parent, "id = ?", users[1].ID).Error)
	assert.InDelta(t, 100.0, parent.Balance, 0.001)
}

func TestRateForLevel(t *testing.T) {
	assert.Equal(t, 0.10, RateForLevel(1))
	assert.Equal(t, 0.04, RateForLevel(2))
	assert.Equal(t, 0.02, RateForLevel(3))
	for level := 4; level <= 7; level++ {
		assert.Equal(t, 0.01, RateForLevel(level))
	}
	assert.Equal(t, 0.0, RateForLevel(0))
	assert.Equal(t, 0.0, RateForLevel(8))
}

func TestCommissionStats(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)

	beneficiary := createUser(t, db, nil)
	source := createUser(t, db, nil)

	now := time.Now()
	lastMonth := now.AddDate(0, -1, 0)

	for i := 0; i < 10; i++ {
		c := models.Commission{
			BeneficiaryID: beneficiary.ID,
			SourceUserID:  source.ID,
			InvestmentID:  uuid.New(),
			Level:         1,
			Percentage:    0.10,
			Amount:        10,
			CreatedAt:     now,
		}
		require.NoError(t, db.Create(&c).Error)
	}
	for i := 0; i < 4; i++ {
		c := models.Commission{
			BeneficiaryID: beneficiary.ID,
			SourceUserID:  source.ID,
			InvestmentID:  uuid.New(),
			Level:         2,
			Percentage:    0.04,
			Amount:        4,
			CreatedAt:     lastMonth,
		}
		require.NoError(t, db.Create(&c).Error)
	}

	stats, err := svc.CommissionStats(beneficiary.ID)
	require.NoError(t, err)

	assert.Equal(t, 14, stats.CommissionsCount)
	assert.InDelta(t, 116.0, stats.TotalCommissions, 0.001)
	assert.InDelta(t, 100.0, stats.LevelTotals[0], 0.001)
	assert.InDelta(t, 16.0, stats.LevelTotals[1], 0.001)
	assert.InDelta(t, 100.0, stats.ThisMonthTotal, 0.001)
}
