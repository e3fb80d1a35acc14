package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/arvoinvest/backend/internal/config"
	"github.com/arvoinvest/backend/internal/jobs"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/arvoinvest/backend/internal/services/payment/providers/pix"
	"github.com/arvoinvest/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives callbacks from the payment gateways
type WebhookHandler struct {
	cfg      *config.Config
	payments *payment.PaymentService
	queue    queue.QueueInterface
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(cfg *config.Config, payments *payment.PaymentService, q queue.QueueInterface) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, payments: payments, queue: q}
}

// HandlePixWebhook verifies the gateway signature and enqueues settlement of
// the referenced deposit. The endpoint always returns quickly; the credit
// happens in the job so gateway retries and slow databases do not interact.
func (h *WebhookHandler) HandlePixWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if !utils.VerifyHMAC(string(body), signature, h.cfg.Pix.WebhookSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	payload, err := pix.ParseWebhook(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if payload.Event != "charge.paid" || payload.Data.Status != "paid" {
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
		return
	}

	deposit, err := h.payments.GetDepositByReference(payload.Data.Reference)
	if err != nil {
		log.Printf("PIX webhook for unknown reference %s", payload.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"message": "Unknown reference"})
		return
	}

	jobPayload, err := json.Marshal(jobs.PixDepositJobPayload{
		DepositID: deposit.ID,
		Amount:    payload.Data.Amount,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	job := &queue.Job{
		Type:       jobs.PixDepositJobType,
		Payload:    jobPayload,
		Status:     queue.JobStatusPending,
		MaxRetries: queue.DefaultMaxRetries,
	}
	if err := h.queue.Enqueue(job); err != nil {
		log.Printf("Could not enqueue pix deposit job for %s: %v", deposit.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook accepted"})
}
