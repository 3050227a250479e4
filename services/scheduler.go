package services

import (
	"context"
	"time"

	"jobsbreeze-backend/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the periodic estimate jobs.
type Scheduler struct {
	cron          *cron.Cron
	notifications *NotificationService
	cfg           config.ReminderConfig
	log           *zap.Logger
}

func NewScheduler(cfg config.ReminderConfig, notifications *NotificationService, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:          cron.New(),
		notifications: notifications,
		cfg:           cfg,
		log:           log,
	}
}

// Start registers the expiry reminder job on the configured schedule.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Cron, s.RunExpiryReminders); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("expiryReminders", s.cfg.Cron))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) RunExpiryReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sent, err := s.notifications.SendExpiryReminders(ctx, time.Now(), s.cfg.DaysAhead)
	if err != nil {
		s.log.Error("expiry reminders failed", zap.Int("sent", sent), zap.Error(err))
		return
	}
	s.log.Info("expiry reminders done", zap.Int("sent", sent))
}
