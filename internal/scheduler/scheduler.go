package scheduler

import (
	"fmt"
	"log"

	"TipSentinel/internal/ledger"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic operator reports.
type Scheduler struct {
	Cron   *cron.Cron
	Ledger ledger.Store
	Clock  clockwork.Clock
}

// NewScheduler creates a new Scheduler.
func NewScheduler(store ledger.Store, clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Ledger: store,
		Clock:  clock,
	}
}

// Register registers the daily summary task.
func (s *Scheduler) Register(summaryCron string) error {
	if _, err := s.Cron.AddFunc(summaryCron, s.DailySummary); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// DailySummary logs the previous day's ledger totals. Runs just after
// midnight UTC by default, so it reports the day that just closed.
func (s *Scheduler) DailySummary() {
	day := s.Clock.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	summary, err := s.Ledger.SummarizeDay(day)
	if err != nil {
		log.Printf("[ERROR] summarize %s: %v", day, err)
		return
	}
	log.Printf("[INFO] summary %s: %d gifts from %d invokers to %d recipients",
		summary.Day, summary.Gifts, summary.Invokers, summary.Recipients)
}
