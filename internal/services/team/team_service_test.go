package team

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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Investment{}))
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

func createInvestment(t *testing.T, db *gorm.DB, userID uuid.UUID, amount float64) {
	inv := &models.Investment{
		UserID:       userID,
		ProductID:    uuid.New(),
		Amount:       amount,
		DailyYield:   1,
		DurationDays: 30,
		Reference:    utils.GenerateReference("INV"),
		Status:       models.InvestmentStatusActive,
	}
	require.NoError(t, db.Create(inv).Error)
}

func TestTeamStatsDirectReferralsOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamService(db)

	root := createUser(t, db, nil)
	for i := 0; i < 5; i++ {
		createUser(t, db, &root.ID)
	}

	stats, err := svc.TeamStats(root.ID)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.LevelCounts[0])
	for level := 1; level < len(stats.LevelCounts); level++ {
		assert.Zero(t, stats.LevelCounts[level])
	}
	assert.Equal(t, 5, stats.TotalTeamSize)
}

func TestTeamStatsCountsDeepLevels(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamService(db)

	root := createUser(t, db, nil)
	l1a := createUser(t, db, &root.ID)
	l1b := createUser(t, db, &root.ID)
	l2 := createUser(t, db, &l1a.ID)
	createUser(t, db, &l1b.ID)
	createUser(t, db, &l2.ID)

	stats, err := svc.TeamStats(root.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.LevelCounts[0])
	assert.Equal(t, 2, stats.LevelCounts[1])
	assert.Equal(t, 1, stats.LevelCounts[2])
	assert.Equal(t, 5, stats.TotalTeamSize)
}

func TestExpandDescendantsAnnotatesInvestedTotal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamService(db)

	root := createUser(t, db, nil)
	member := createUser(t, db, &root.ID)
	createInvestment(t, db, member.ID, 300)
	createInvestment(t, db, member.ID, 200)

	levels, err := svc.ExpandDescendants(root.ID)
	require.NoError(t, err)

	require.Len(t, levels[0], 1)
	assert.Equal(t, member.ID, levels[0][0].ID)
	assert.InDelta(t, 500.0, levels[0][0].TotalInvested, 0.001)
	for i := 1; i < len(levels); i++ {
		assert.Empty(t, levels[i])
	}
}

func TestExpandDescendantsStopsAtSevenLevels(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTeamService(db)

	root := createUser(t, db, nil)
	parent := root
	for i := 0; i < 9; i++ {
		parent = createUser(t, db, &parent.ID)
	}

	levels, err := svc.ExpandDescendants(root.ID)
	require.NoError(t, err)

	for i := 0; i < len(levels); i++ {
		assert.Len(t, levels[i], 1, "level %d", i+1)
	}

	stats, err := svc.TeamStats(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalTeamSize)
}
