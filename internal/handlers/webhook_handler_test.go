package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/arvoinvest/backend/internal/jobs"
	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/arvoinvest/backend/internal/services/payment/providers/pix"
	"github.com/arvoinvest/backend/internal/services/wallet"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeQueue struct {
	jobs []*queue.Job
}

func (q *fakeQueue) RegisterHandler(jobType queue.JobType, handler queue.JobHandler) {}

func (q *fakeQueue) Enqueue(job *queue.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) EnqueueIn(job *queue.Job, delay time.Duration) error {
	return q.Enqueue(job)
}

type stubPixClient struct{}

func (stubPixClient) CreateCharge(amount float64, reference, payerEmail string) (*pix.Charge, error) {
	return &pix.Charge{TxID: "TX" + reference, QRCode: "qr"}, nil
}

func (stubPixClient) GetCharge(txID string) (*pix.GetChargeResponse, error) {
	return &pix.GetChargeResponse{Status: true}, nil
}

func setupWebhookTest(t *testing.T) (*gin.Engine, *gorm.DB, *fakeQueue, *config.Config) {
	gin.SetMode(gin.TestMode)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.LedgerEntry{}, &models.Deposit{}))

	cfg := &config.Config{}
	cfg.Pix.WebhookSecret = "webhook-secret"

	q := &fakeQueue{}
	paymentService := payment.NewPaymentService(db, wallet.NewWalletService(db), stubPixClient{})
	handler := NewWebhookHandler(cfg, paymentService, q)

	router := gin.New()
	router.POST("/webhooks/pix", handler.HandlePixWebhook)

	return router, db, q, cfg
}

func createPendingDeposit(t *testing.T, db *gorm.DB) *models.Deposit {
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		Username:     uuid.NewString()[:8],
		PasswordHash: "x",
		ReferralCode: utils.GenerateReferralCode(8),
	}
	require.NoError(t, db.Create(user).Error)

	deposit := &models.Deposit{
		UserID:    user.ID,
		Method:    models.DepositMethodPix,
		Amount:    100,
		Reference: utils.GenerateReference("DEP"),
		Status:    models.DepositStatusPending,
	}
	require.NoError(t, db.Create(deposit).Error)
	return deposit
}

func pixWebhookBody(t *testing.T, reference string, amount float64) []byte {
	payload := map[string]interface{}{
		"event": "charge.paid",
		"data": map[string]interface{}{
			"txid":      "TX1",
			"reference": reference,
			"amount":    amount,
			"status":    "paid",
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestPixWebhookEnqueuesSettlement(t *testing.T) {
	router, db, q, cfg := setupWebhookTest(t)
	deposit := createPendingDeposit(t, db)

	body := pixWebhookBody(t, deposit.Reference, 100)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pix", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", utils.SignHMAC(string(body), cfg.Pix.WebhookSecret))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, jobs.PixDepositJobType, q.jobs[0].Type)

	var jobPayload jobs.PixDepositJobPayload
	require.NoError(t, json.Unmarshal(q.jobs[0].Payload, &jobPayload))
	assert.Equal(t, deposit.ID, jobPayload.DepositID)
	assert.InDelta(t, 100.0, jobPayload.Amount, 0.001)
}

func TestPixWebhookRejectsBadSignature(t *testing.T) {
	router, db, q, _ := setupWebhookTest(t)
	deposit := createPendingDeposit(t, db)

	body := pixWebhookBody(t, deposit.Reference, 100)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pix", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", "deadbeef")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, q.jobs)
}

func TestPixWebhookIgnoresOtherEvents(t *testing.T) {
	router, _, q, cfg := setupWebhookTest(t)

	body := []byte(`{"event":"charge.created","data":{"status":"pending"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pix", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", utils.SignHMAC(string(body), cfg.Pix.WebhookSecret))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, q.jobs)
}
