package jobs

import (
	"context"
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Cron specs for the background jobs
const (
	RetrySpec    = "*/5 * * * *" // every 5 minutes
	ReminderSpec = "0 8 * * *"   // daily at 08:00
	PruneSpec    = "@hourly"
)

// Scheduler runs the periodic jobs of the service
type Scheduler struct {
	cron     *cron.Cron
	db       *gorm.DB
	notifier *services.Notifier
}

// NewScheduler creates a scheduler in the given location (UTC when nil)
func NewScheduler(db *gorm.DB, notifier *services.Notifier, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		db:       db,
		notifier: notifier,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(RetrySpec, s.retryNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(ReminderSpec, s.sendReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(PruneSpec, services.Monitor.Prune); err != nil {
		return err
	}

	s.cron.Start()
	logger.Log.WithField("jobs", len(s.cron.Entries())).Info("[CRON] Scheduler started")
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) retryNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	RetryNotifications(ctx, s.notifier)
}

func (s *Scheduler) sendReminders() {
	if _, err := SendHearingReminders(s.db, s.notifier, time.Now()); err != nil {
		logger.Log.WithError(err).Error("[CRON] Hearing reminder job failed")
	}
}

// RetryNotifications runs one pass over the email retry queue
func RetryNotifications(ctx context.Context, notifier *services.Notifier) services.RetryStats {
	stats, err := notifier.RetryPending(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("[CRON] Email retry pass failed")
		return stats
	}
	if stats.Sent+stats.Failed+stats.Dropped > 0 {
		logger.Log.WithField("sent", stats.Sent).
			WithField("failed", stats.Failed).
			WithField("dropped", stats.Dropped).
			Info("[CRON] Email retry pass completed")
	}
	return stats
}
