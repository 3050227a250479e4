package services

import (
	"testing"

	"jobsbreeze-backend/config"
)

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	db := newTestDB(t)
	s := NewScheduler(config.ReminderConfig{Cron: "every morning", DaysAhead: 3}, NewNotificationService(db, nil, nil), nil)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected an error for an invalid cron expression")
	}
}

func TestSchedulerRunsReminderJob(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	s := NewScheduler(config.ReminderConfig{Cron: "0 9 * * *", DaysAhead: 3}, NewNotificationService(db, sender, nil), nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	s.RunExpiryReminders()
	if sender.count() != 0 {
		t.Errorf("sent %d messages with no estimates", sender.count())
	}
}
