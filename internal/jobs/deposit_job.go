package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/arvoinvest/backend/internal/models"
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/crypto"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/google/uuid"
)

const (
	// PixDepositJobType settles a deposit after a paid PIX webhook
	PixDepositJobType queue.JobType = "pix_deposit"

	// CryptoDepositJobType verifies a submitted crypto deposit on-chain
	CryptoDepositJobType queue.JobType = "crypto_deposit"
)

// PixDepositJobPayload is the payload of a pix_deposit job
type PixDepositJobPayload struct {
	DepositID uuid.UUID `json:"deposit_id"`
	Amount    float64   `json:"amount"`
}

// CryptoDepositJobPayload is the payload of a crypto_deposit job
type CryptoDepositJobPayload struct {
	DepositID uuid.UUID `json:"deposit_id"`
	TxHash    string    `json:"tx_hash"`
}

// DepositJob settles deposits coming off the payment rails
type DepositJob struct {
	payments  *payment.PaymentService
	cryptoSvc *crypto.CryptoService
}

// NewDepositJob creates a new deposit job handler
func NewDepositJob(payments *payment.PaymentService, cryptoSvc *crypto.CryptoService) *DepositJob {
	return &DepositJob{payments: payments, cryptoSvc: cryptoSvc}
}

// RegisterDepositJobHandlers registers the deposit job handlers
func RegisterDepositJobHandlers(q queue.QueueInterface, payments *payment.PaymentService, cryptoSvc *crypto.CryptoService) {
	handler := NewDepositJob(payments, cryptoSvc)
	q.RegisterHandler(PixDepositJobType, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return nil, handler.ProcessPixDeposit(ctx, &job)
	})
	q.RegisterHandler(CryptoDepositJobType, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return nil, handler.ProcessCryptoDeposit(ctx, &job)
	})
}

// ProcessPixDeposit credits a deposit confirmed paid by the PIX gateway.
// A replay of the webhook finds the deposit already completed and is a no-op.
func (j *DepositJob) ProcessPixDeposit(ctx context.Context, job *queue.Job) error {
	var payload PixDepositJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("error unmarshaling pix deposit payload: %w", err)
	}

	err := j.payments.CompleteDeposit(payload.DepositID, payload.Amount)
	if errors.Is(err, payment.ErrDepositNotPending) {
		log.Printf("Deposit %s already settled, skipping", payload.DepositID)
		return nil
	}
	return err
}

// ProcessCryptoDeposit verifies the deposit tx on-chain and credits the
// amount the chain reports. A tx still short of confirmations fails the job
// so the queue retries it with backoff.
func (j *DepositJob) ProcessCryptoDeposit(ctx context.Context, job *queue.Job) error {
	var payload CryptoDepositJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("error unmarshaling crypto deposit payload: %w", err)
	}

	amount, err := j.cryptoSvc.VerifyDeposit(ctx, payload.TxHash)
	if err != nil {
		if errors.Is(err, crypto.ErrWrongRecipient) || errors.Is(err, crypto.ErrTxNotFound) {
			if failErr := j.payments.FailDeposit(payload.DepositID, models.DepositStatusFailed); failErr != nil {
				log.Printf("Could not fail deposit %s: %v", payload.DepositID, failErr)
			}
			return fmt.Errorf("deposit %s rejected: %w", payload.DepositID, err)
		}
		return err
	}

	completeErr := j.payments.CompleteDeposit(payload.DepositID, amount)
	if errors.Is(completeErr, payment.ErrDepositNotPending) {
		log.Printf("Deposit %s already settled, skipping", payload.DepositID)
		return nil
	}
	return completeErr
}
