package investment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// JobTypeReferralCommission is the queue job that fans out referral
// commissions for a settled investment.
const JobTypeReferralCommission = queue.JobType("referral_commission")

var (
	// ErrProductUnavailable is returned when purchasing an inactive product
	ErrProductUnavailable = errors.New("product is not available for purchase")

	// ErrPurchaseLimitReached is returned when a user already holds the
	// maximum number of investments a product allows
	ErrPurchaseLimitReached = errors.New("purchase limit reached for this product")
)

// CommissionJobPayload is the payload of a referral_commission job
type CommissionJobPayload struct {
	InvestmentID uuid.UUID `json:"investment_id"`
	UserID       uuid.UUID `json:"user_id"`
	Amount       float64   `json:"amount"`
}

// InvestmentService manages products, purchases and daily yield payouts
type InvestmentService struct {
	db      *gorm.DB
	wallets *wallet.WalletService
	queue   queue.QueueInterface
}

// NewInvestmentService creates a new investment service
func NewInvestmentService(db *gorm.DB, wallets *wallet.WalletService, q queue.QueueInterface) *InvestmentService {
	return &InvestmentService{db: db, wallets: wallets, queue: q}
}

// CreateProduct creates an investment product. The slug is derived from the
// name and must be unique.
func (s *InvestmentService) CreateProduct(name string, price, dailyYieldRate float64, durationDays, purchaseLimit int) (*models.Product, error) {
	product := models.Product{
		Name:           name,
		Slug:           slug.Make(name),
		Price:          price,
		DailyYieldRate: dailyYieldRate,
		DurationDays:   durationDays,
		PurchaseLimit:  purchaseLimit,
		Status:         models.ProductStatusActive,
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	return &product, nil
}

// ListProducts returns active products, cheapest first
func (s *InvestmentService) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("status = ?", models.ProductStatusActive).
		Order("price ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return products, nil
}

// GetProductBySlug returns a single product by its slug
func (s *InvestmentService) GetProductBySlug(productSlug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("slug = ?", productSlug).First(&product).Error; err != nil {
		return nil, fmt.Errorf("error finding product: %w", err)
	}
	return &product, nil
}

// PurchaseProduct buys a product at its list price. The debit and the
// investment row commit together; the commission fan-out runs afterwards as a
// background job, so a queue outage cannot undo the purchase.
func (s *InvestmentService) PurchaseProduct(userID, productID uuid.UUID) (*models.Investment, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("error finding product: %w", err)
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductUnavailable
	}

	if product.PurchaseLimit > 0 {
		var count int64
		err := s.db.Model(&models.Investment{}).
			Where("user_id = ? AND product_id = ? AND status IN ?", userID, productID,
				[]models.InvestmentStatus{models.InvestmentStatusPending, models.InvestmentStatusActive}).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("error counting purchases: %w", err)
		}
		if count >= int64(product.PurchaseLimit) {
			return nil, ErrPurchaseLimitReached
		}
	}

	nextYield := time.Now().Add(24 * time.Hour)
	investment := models.Investment{
		UserID:       userID,
		ProductID:    productID,
		Amount:       product.Price,
		DailyYield:   product.Price * product.DailyYieldRate,
		DurationDays: product.DurationDays,
		NextYieldAt:  &nextYield,
		Reference:    utils.GenerateReference("INV"),
		Status:       models.InvestmentStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&investment).Error; err != nil {
			return fmt.Errorf("error creating investment: %w", err)
		}

		_, err := s.wallets.DebitTx(tx, userID, product.Price, models.LedgerTypePurchase,
			investment.Reference,
			fmt.Sprintf("Purchase of %s", product.Name),
			map[string]interface{}{
				"investment_id": investment.ID.String(),
				"product_id":    productID.String(),
			})
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueCommissionJob(&investment); err != nil {
		log.Printf("Could not enqueue commission job for investment %s: %v", investment.ID, err)
	}

	return &investment, nil
}

// GetUserInvestments returns a user's investments, newest first
func (s *InvestmentService) GetUserInvestments(userID uuid.UUID) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("error finding investments: %w", err)
	}
	return investments, nil
}

// ProcessDailyYields credits the daily yield of every active investment that
// is due. Each investment settles in its own transaction; one failure is
// logged and does not block the rest of the batch. Returns the number of
// investments credited.
func (s *InvestmentService) ProcessDailyYields(now time.Time) (int, error) {
	var due []models.Investment
	err := s.db.Where("status = ? AND next_yield_at <= ?", models.InvestmentStatusActive, now).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("error finding due investments: %w", err)
	}

	credited := 0
	for i := range due {
		if err := s.creditYield(&due[i], now); err != nil {
			log.Printf("Skipping yield for investment %s: %v", due[i].ID, err)
			continue
		}
		credited++
	}
	return credited, nil
}

// creditYield pays one daily yield installment and advances the schedule.
// The investment completes once every installment has been paid.
func (s *InvestmentService) creditYield(inv *models.Investment, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.wallets.CreditTx(tx, inv.UserID, inv.DailyYield, models.LedgerTypeYield,
			utils.GenerateReference("YLD"),
			fmt.Sprintf("Daily yield, day %d of %d", inv.DaysPaid+1, inv.DurationDays),
			map[string]interface{}{
				"investment_id": inv.ID.String(),
				"day":           inv.DaysPaid + 1,
			})
		if err != nil {
			return err
		}

		inv.DaysPaid++
		inv.TotalReturned += inv.DailyYield
		inv.LastYieldAt = &now

		if inv.DaysPaid >= inv.DurationDays {
			inv.Status = models.InvestmentStatusCompleted
			inv.NextYieldAt = nil
		} else {
			next := now.Add(24 * time.Hour)
			inv.NextYieldAt = &next
		}

		updates := map[string]interface{}{
			"days_paid":      inv.DaysPaid,
			"total_returned": inv.TotalReturned,
			"last_yield_at":  inv.LastYieldAt,
			"next_yield_at":  inv.NextYieldAt,
			"status":         inv.Status,
		}
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("error updating investment: %w", err)
		}
		return nil
	})
}

func (s *InvestmentService) enqueueCommissionJob(inv *models.Investment) error {
	payload, err := json.Marshal(CommissionJobPayload{
		InvestmentID: inv.ID,
		UserID:       inv.UserID,
		Amount:       inv.Amount,
	})
	if err != nil {
		return fmt.Errorf("error marshaling payload: %w", err)
	}

	job := &queue.Job{
		Type:       JobTypeReferralCommission,
		Payload:    payload,
		Status:     queue.JobStatusPending,
		MaxRetries: queue.DefaultMaxRetries,
	}
	return s.queue.Enqueue(job)
}
