package jobs

import (
	"time"

	"court_filing_app_go/logger"
	"court_filing_app_go/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SendHearingReminders emails case owners about scheduled hearings tomorrow.
// Each hearing is stamped so it is reminded only once. Returns the number of reminders sent.
func SendHearingReminders(database *gorm.DB, notifier *services.Notifier, now time.Time) (int, error) {
	hearings, err := services.DueReminders(database, now)
	if err != nil {
		return 0, err
	}

	logger.Log.WithField("count", len(hearings)).Info("[JOB] Hearing reminders due")

	sent := 0
	for i := range hearings {
		h := &hearings[i]
		if h.Case == nil || h.Case.FiledByUser == nil {
			logger.Log.WithField("hearing_id", h.ID).Warn("[JOB] Hearing has no case owner, skipping reminder")
			continue
		}

		notifier.Dispatch(services.BuildHearingReminderEmail(h.Case.FiledByUser, h.Case, h))

		if err := services.MarkReminded(database, h, now); err != nil {
			logger.Log.WithFields(logrus.Fields{"hearing_id": h.ID}).WithError(err).Error("[JOB] Failed to stamp reminder")
			continue
		}
		sent++
	}
	return sent, nil
}
