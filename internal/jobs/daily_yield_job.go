package jobs

import (
	"log"
	"time"

	"github.com/arvoinvest/backend/internal/queue"
	"github.com/arvoinvest/backend/internal/services/investment"
)

// DailyYieldJob pays the daily yield of active investments
type DailyYieldJob struct {
	investments *investment.InvestmentService
}

// NewDailyYieldJob creates a new daily yield job
func NewDailyYieldJob(investments *investment.InvestmentService) *DailyYieldJob {
	return &DailyYieldJob{investments: investments}
}

// Schedule runs the yield sweep once a day at midnight UTC, with an hourly
// catch-up pass so a missed run does not push payouts a full day.
func (j *DailyYieldJob) Schedule(w *queue.Worker) error {
	if err := w.ScheduleDailyAt("00:05", j.Run); err != nil {
		return err
	}
	return w.ScheduleEvery(1*time.Hour, j.Run)
}

// Run executes one yield sweep
func (j *DailyYieldJob) Run() {
	credited, err := j.investments.ProcessDailyYields(time.Now())
	if err != nil {
		log.Printf("Daily yield sweep failed: %v", err)
		return
	}
	if credited > 0 {
		log.Printf("Daily yield sweep credited %d investments", credited)
	}
}
