package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/arvoinvest/backend/internal/jobs"
	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/crypto"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler serves deposit and withdrawal endpoints
type PaymentHandler struct {
	payments  *payment.PaymentService
	cryptoSvc *crypto.CryptoService
	queue     queue.QueueInterface
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *payment.PaymentService, cryptoSvc *crypto.CryptoService, q queue.QueueInterface) *PaymentHandler {
	return &PaymentHandler{payments: payments, cryptoSvc: cryptoSvc, queue: q}
}

// PixDepositRequest represents the request body for a PIX deposit
type PixDepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CryptoDepositRequest represents the request body for a crypto deposit
type CryptoDepositRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}

// WithdrawRequest represents the request body for a withdrawal
type WithdrawRequest struct {
	Amount      float64              `json:"amount" binding:"required,gt=0"`
	Method      models.DepositMethod `json:"method" binding:"required,oneof=pix crypto"`
	Destination string               `json:"destination" binding:"required"`
}

// CreatePixDeposit creates a PIX charge and returns its QR code
func (h *PaymentHandler) CreatePixDeposit(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	email := c.MustGet("email").(string)

	var req PixDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deposit, err := h.payments.InitiatePixDeposit(userID, req.Amount, email)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create PIX charge"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"deposit": deposit})
}

// CreateCryptoDeposit records a crypto deposit for on-chain verification
func (h *PaymentHandler) CreateCryptoDeposit(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var req CryptoDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deposit, err := h.payments.SubmitCryptoDeposit(userID, req.TxHash)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	jobPayload, err := json.Marshal(jobs.CryptoDepositJobPayload{
		DepositID: deposit.ID,
		TxHash:    req.TxHash,
	})
	if err == nil {
		err = h.queue.Enqueue(&queue.Job{
			Type:       jobs.CryptoDepositJobType,
			Payload:    jobPayload,
			Status:     queue.JobStatusPending,
			MaxRetries: 10, // confirmations take time, keep retrying
		})
	}
	if err != nil {
		log.Printf("Could not enqueue crypto deposit job for %s: %v", deposit.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"deposit":         deposit,
		"deposit_address": h.cryptoSvc.DepositAddress(),
	})
}

// ListDeposits returns the user's deposits
func (h *PaymentHandler) ListDeposits(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	deposits, err := h.payments.GetUserDeposits(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load deposits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// Withdraw opens a withdrawal request and holds the amount
func (h *PaymentHandler) Withdraw(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Method == models.DepositMethodCrypto && !crypto.ValidateAddress(req.Destination) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination address"})
		return
	}

	withdrawal, err := h.payments.RequestWithdrawal(userID, req.Amount, req.Method, req.Destination)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient balance"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"withdrawal": withdrawal})
}

// ListWithdrawals returns the user's withdrawals
func (h *PaymentHandler) ListWithdrawals(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	withdrawals, err := h.payments.GetUserWithdrawals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load withdrawals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// ApproveWithdrawal marks a pending withdrawal completed. Admin only.
func (h *PaymentHandler) ApproveWithdrawal(c *gin.Context) {
	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal id"})
		return
	}

	if err := h.payments.ApproveWithdrawal(withdrawalID); err != nil {
		if errors.Is(err, payment.ErrWithdrawalNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal is not pending"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal approved"})
}

// RejectWithdrawal refunds and rejects a pending withdrawal. Admin only.
func (h *PaymentHandler) RejectWithdrawal(c *gin.Context) {
	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal id"})
		return
	}

	if err := h.payments.RejectWithdrawal(withdrawalID); err != nil {
		if errors.Is(err, payment.ErrWithdrawalNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal is not pending"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal rejected and refunded"})
}
