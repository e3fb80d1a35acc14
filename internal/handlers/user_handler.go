package handlers

import (
	"net/http"
	"strconv"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserHandler serves profile and ledger endpoints
type UserHandler struct {
	db      *gorm.DB
	wallets *wallet.WalletService
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, wallets *wallet.WalletService) *UserHandler {
	return &UserHandler{db: db, wallets: wallets}
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetLedger returns a page of the user's ledger entries
func (h *UserHandler) GetLedger(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := h.wallets.GetLedger(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":   entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
