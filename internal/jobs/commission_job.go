package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/investment"
	"github.com/arvoinvest/backend/internal/services/referral"
)

// CommissionJob fans out referral commissions for settled investments
type CommissionJob struct {
	referrals *referral.ReferralService
}

// NewCommissionJob creates a new commission job handler
func NewCommissionJob(referrals *referral.ReferralService) *CommissionJob {
	return &CommissionJob{referrals: referrals}
}

// RegisterCommissionJobHandlers registers the commission job handler
func RegisterCommissionJobHandlers(q queue.QueueInterface, referrals *referral.ReferralService) {
	handler := NewCommissionJob(referrals)
	q.RegisterHandler(investment.JobTypeReferralCommission, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return handler.Process(ctx, &job)
	})
}

// Process pays out the commission chain for one investment. The payout is
// deduplicated per (investment, level), so a retried job only fills in the
// levels that did not settle on the previous run.
func (j *CommissionJob) Process(ctx context.Context, job *queue.Job) (interface{}, error) {
	var payload investment.CommissionJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshaling commission job payload: %w", err)
	}

	created := j.referrals.ApplyCommissions(payload.UserID, payload.Amount, payload.InvestmentID)
	log.Printf("Paid %d referral commissions for investment %s", len(created), payload.InvestmentID)

	return map[string]interface{}{
		"commissions_paid": len(created),
	}, nil
}
