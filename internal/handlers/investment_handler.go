package handlers

import (
	"errors"
	"net/http"

	"github.com/arvoinvest/backend/internal/services/investment"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvestmentHandler serves product and investment endpoints
type InvestmentHandler struct {
	investments *investment.InvestmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investments *investment.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

// CreateProductRequest represents the request body for product creation
type CreateProductRequest struct {
	Name           string  `json:"name" binding:"required"`
	Price          float64 `json:"price" binding:"required,gt=0"`
	DailyYieldRate float64 `json:"daily_yield_rate" binding:"required,gt=0"`
	DurationDays   int     `json:"duration_days" binding:"required,gt=0"`
	PurchaseLimit  int     `json:"purchase_limit"`
}

// PurchaseRequest represents the request body for a product purchase
type PurchaseRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// ListProducts returns the active product catalog
func (h *InvestmentHandler) ListProducts(c *gin.Context) {
	products, err := h.investments.ListProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one product by slug
func (h *InvestmentHandler) GetProduct(c *gin.Context) {
	product, err := h.investments.GetProductBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates an investment product. Admin only.
func (h *InvestmentHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.investments.CreateProduct(req.Name, req.Price, req.DailyYieldRate, req.DurationDays, req.PurchaseLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// Purchase buys a product with the user's balance
func (h *InvestmentHandler) Purchase(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.investments.PurchaseProduct(userID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, investment.ErrProductUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Product is not available"})
		case errors.Is(err, investment.ErrPurchaseLimitReached):
			c.JSON(http.StatusConflict, gin.H{"error": "Purchase limit reached for this product"})
		case errors.Is(err, wallet.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete purchase"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"investment": inv})
}

// ListInvestments returns the user's investments
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	investments, err := h.investments.GetUserInvestments(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load investments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": investments})
}
