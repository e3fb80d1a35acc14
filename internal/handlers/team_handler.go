package handlers

import (
	"net/http"

	"github.com/arvoinvest/backend/internal/services/referral"
	"github.com/arvoinvest/backend/internal/services/team"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TeamHandler serves downline and commission endpoints
type TeamHandler struct {
	teams     *team.TeamService
	referrals *referral.ReferralService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *team.TeamService, referrals *referral.ReferralService) *TeamHandler {
	return &TeamHandler{teams: teams, referrals: referrals}
}

// GetTeam returns the user's downline, partitioned by level
func (h *TeamHandler) GetTeam(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	levels, err := h.teams.ExpandDescendants(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// GetTeamStats returns per-level team counts
func (h *TeamHandler) GetTeamStats(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	stats, err := h.teams.TeamStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load team stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetCommissionStats returns the user's commission earnings summary
func (h *TeamHandler) GetCommissionStats(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	stats, err := h.referrals.CommissionStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load commission stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
