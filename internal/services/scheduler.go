package services

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the periodic notification sweeps until its context ends
type Scheduler struct {
	notifier         *EligibilityNotifier
	sweepInterval    time.Duration
	binAlertInterval time.Duration
}

func NewScheduler(notifier *EligibilityNotifier, sweepInterval, binAlertInterval time.Duration) *Scheduler {
	return &Scheduler{
		notifier:         notifier,
		sweepInterval:    sweepInterval,
		binAlertInterval: binAlertInterval,
	}
}

// Start launches one goroutine per ticker and returns immediately
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, "DAILY-SWEEP", s.sweepInterval, s.RunDailySweep)
	go s.loop(ctx, "BIN-ALERTS", s.binAlertInterval, s.RunBinAlerts)
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("⏰ [%s] Scheduled every %s", name, interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 [%s] Stopped", name)
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

// RunDailySweep sends reminders, milestones and reward alerts. Each sweep
// runs even if an earlier one failed.
func (s *Scheduler) RunDailySweep(ctx context.Context) {
	if _, err := s.notifier.SendDisposalReminders(ctx); err != nil {
		log.Printf("❌ [DAILY-SWEEP] Disposal reminders failed: %v", err)
	}
	if _, err := s.notifier.CheckMilestones(ctx); err != nil {
		log.Printf("❌ [DAILY-SWEEP] Milestone check failed: %v", err)
	}
	if _, err := s.notifier.SendRewardAlerts(ctx); err != nil {
		log.Printf("❌ [DAILY-SWEEP] Reward alerts failed: %v", err)
	}
}

func (s *Scheduler) RunBinAlerts(ctx context.Context) {
	if _, err := s.notifier.SendFullBinAlerts(ctx); err != nil {
		log.Printf("❌ [BIN-ALERTS] Full bin alerts failed: %v", err)
	}
}
