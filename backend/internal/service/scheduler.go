package service

import (
	"context"
	"time"

	"github.com/ptchurch/site/shared/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the RSVP reminder sweep on a cron schedule inside the API
// process. Deployments that trigger POST /api/admin/reminders externally
// leave reminders.cron empty and never start one.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithLocation(loc))}
}

// ScheduleReminders registers the sweep with a standard five-field spec
// or a descriptor such as "@hourly".
func (s *Scheduler) ScheduleReminders(spec string, rsvp RSVPService, timeout time.Duration) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sent, err := rsvp.SendReminders(ctx)
		if err != nil {
			logger.Log.Error("scheduled reminders failed", "component", "scheduler", "error", err)
			return
		}
		logger.Log.Info("scheduled reminders done", "component", "scheduler", "sent", sent)
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
