package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"eval-flow/internal/config"
	"eval-flow/internal/models"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		want    cronSchedule
		wantErr bool
	}{
		{"0 9 * * *", cronSchedule{minute: 0, hour: 9, weekday: -1}, false},
		{"30 8 * * 1", cronSchedule{minute: 30, hour: 8, weekday: 1}, false},
		{"*/15 * * * *", cronSchedule{minuteInterval: 15, weekday: -1}, false},
		{"5 */2 * * *", cronSchedule{hourInterval: 2, minute: 5, weekday: -1}, false},
		{"0 9 * *", cronSchedule{}, true},
		{"61 9 * * *", cronSchedule{}, true},
		{"0 24 * * *", cronSchedule{}, true},
		{"0 9 * * 7", cronSchedule{}, true},
		{"*/0 * * * *", cronSchedule{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseCron(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCron(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseCron(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestNextRuns(t *testing.T) {
	// Wednesday
	from := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

	if got, want := nextDailyRun(from, 9, 0), time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextDailyRun = %v, want %v", got, want)
	}
	if got, want := nextDailyRun(from, 11, 0), time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextDailyRun = %v, want %v", got, want)
	}
	if got, want := nextWeekday(from, time.Monday, 9, 0), time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextWeekday = %v, want %v", got, want)
	}
	if got, want := nextWeekday(from, time.Wednesday, 9, 0), time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextWeekday = %v, want %v", got, want)
	}
	if got, want := nextHourlyInterval(from, 4, 15), time.Date(2026, 3, 4, 12, 15, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextHourlyInterval = %v, want %v", got, want)
	}
}

type fakeReminders struct {
	cutoff    time.Time
	reminders []models.OpenRevisionReminder
	err       error
}

func (f *fakeReminders) ListOpenReminders(ctx context.Context, olderThan time.Time) ([]models.OpenRevisionReminder, error) {
	f.cutoff = olderThan
	return f.reminders, f.err
}

type fakeMailer struct {
	sent map[string]int
	fail string
}

func (f *fakeMailer) SendRevisionReminderEmail(ctx context.Context, to, name, step, requestID string, days int) error {
	if to == f.fail {
		return errors.New("mailbox unavailable")
	}
	f.sent[to] = days
	return nil
}

func TestSendRevisionReminders(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	source := &fakeReminders{reminders: []models.OpenRevisionReminder{
		{RequestID: "r-1", RecipientID: "e-1", Email: "ann@example.com", Step: models.StepSelf, CreatedAt: now.Add(-96 * time.Hour)},
		{RequestID: "r-2", RecipientID: "e-2", Email: "", Step: models.StepPrimary, CreatedAt: now.Add(-96 * time.Hour)},
		{RequestID: "r-3", RecipientID: "e-3", Email: "bob@example.com", Step: models.StepSecondary, CreatedAt: now.Add(-80 * time.Hour)},
	}}
	mailer := &fakeMailer{sent: map[string]int{}, fail: "bob@example.com"}

	s := NewScheduler(source, mailer, &config.SchedulerConfig{ReminderAfter: 72 * time.Hour})
	s.now = func() time.Time { return now }

	sent := s.sendRevisionReminders(context.Background())
	if sent != 1 {
		t.Errorf("Expected one reminder sent, got %d", sent)
	}
	if !source.cutoff.Equal(now.Add(-72 * time.Hour)) {
		t.Errorf("Unexpected cutoff %v", source.cutoff)
	}
	if mailer.sent["ann@example.com"] != 4 {
		t.Errorf("Expected 4 days open, got %d", mailer.sent["ann@example.com"])
	}
}

func TestSendRevisionRemindersListFailure(t *testing.T) {
	s := NewScheduler(&fakeReminders{err: errors.New("db down")}, &fakeMailer{sent: map[string]int{}}, &config.SchedulerConfig{})
	if sent := s.sendRevisionReminders(context.Background()); sent != 0 {
		t.Errorf("Expected no reminders, got %d", sent)
	}
}

func TestStopTwice(t *testing.T) {
	s := NewScheduler(&fakeReminders{}, &fakeMailer{sent: map[string]int{}}, &config.SchedulerConfig{
		EnableRevisionReminders: true,
		RevisionReminderCron:    "0 9 * * 1",
	})
	s.Start()

	s.Stop()
	s.Stop()

	select {
	case <-s.stopChan:
	default:
		t.Error("Expected the stop channel to be closed")
	}
}
