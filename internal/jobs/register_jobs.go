package jobs

import (
	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/crypto"
	"github.com/arvoinvest/backend/internal/services/investment"
	"github.com/arvoinvest/backend/internal/services/payment"
	"github.com/arvoinvest/backend/internal/services/referral"
)

// RegisterAllJobHandlers registers every queue job handler
func RegisterAllJobHandlers(
	q queue.QueueInterface,
	referrals *referral.ReferralService,
	payments *payment.PaymentService,
	cryptoSvc *crypto.CryptoService,
) {
	RegisterCommissionJobHandlers(q, referrals)
	RegisterDepositJobHandlers(q, payments, cryptoSvc)
}

// ScheduleRecurringJobs registers the recurring jobs with the worker scheduler
func ScheduleRecurringJobs(w *queue.Worker, investments *investment.InvestmentService) error {
	return NewDailyYieldJob(investments).Schedule(w)
}
