package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	googleOAuth *oauth2.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:  db,
		cfg: cfg,
		googleOAuth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=30"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ReferralCode string `json:"referral_code"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"` // required only when 2FA is enabled
}

// RefreshRequest represents the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Signup handles user registration. A valid referral code links the new
// account into the referrer's downline; an unknown code is ignored rather
// than rejected.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if result := h.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing); result.RowsAffected > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email or username already in use"})
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	var referredBy *uuid.UUID
	if req.ReferralCode != "" {
		var referrer models.User
		if result := h.db.Where("referral_code = ?", req.ReferralCode).First(&referrer); result.RowsAffected > 0 {
			referredBy = &referrer.ID
		}
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ReferralCode: utils.GenerateReferralCode(h.cfg.Referral.CodeLength),
		ReferredBy:   referredBy,
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"referral_code": user.ReferralCode,
		},
		"tokens": tokens,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	if user.TwoFactorEnabled {
		if req.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Two-factor code required", "totp_required": true})
			return
		}
		if !utils.ValidateTOTP(user.TwoFactorSecret, req.TOTPCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid two-factor code"})
			return
		}
	}

	now := time.Now()
	h.db.Model(&user).Update("last_login_at", now)

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// GoogleLogin redirects the user to Google's consent screen
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := utils.GenerateRandomString(24)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sign-in"})
		return
	}

	c.SetCookie("oauth_state", state, 600, "/", "", h.cfg.Environment != "development", true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.AuthCodeURL(state))
}

// GoogleCallback completes the Google sign-in flow. First-time users get an
// account with a random password hash; returning users are matched by email.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}

	token, err := h.googleOAuth.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	client := h.googleOAuth.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch user info"})
		return
	}
	defer resp.Body.Close()

	var info struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to parse user info"})
		return
	}

	var user models.User
	err = h.db.Where("email = ?", info.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		randomPassword, genErr := utils.GenerateRandomString(32)
		if genErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		passwordHash, hashErr := utils.HashPassword(randomPassword)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		user = models.User{
			Email:        info.Email,
			Username:     info.Email,
			FirstName:    info.GivenName,
			LastName:     info.FamilyName,
			PasswordHash: passwordHash,
			ReferralCode: utils.GenerateReferralCode(h.cfg.Referral.CodeLength),
		}
		if createErr := h.db.Create(&user).Error; createErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// SetupTwoFactor generates a TOTP secret for the authenticated user. The
// secret only takes effect after VerifyTwoFactor confirms a code.
func (h *AuthHandler) SetupTwoFactor(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.TwoFactorEnabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Two-factor authentication is already enabled"})
		return
	}

	secret := utils.GenerateOTPSecret()
	if err := h.db.Model(&user).Update("two_factor_secret", secret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store secret"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":      secret,
		"otpauth_url": utils.GenerateOTPQRCode(secret, user.Email, "ArvoInvest"),
	})
}

// VerifyTwoFactor confirms a TOTP code and enables 2FA for the user
func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.TwoFactorSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Two-factor setup has not been started"})
		return
	}

	if !utils.ValidateTOTP(user.TwoFactorSecret, req.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid two-factor code"})
		return
	}

	if err := h.db.Model(&user).Update("two_factor_enabled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable two-factor authentication"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}
