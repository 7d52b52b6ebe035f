package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"eval-flow/internal/config"
	"eval-flow/internal/models"
)

// ReminderSource lists open revision recipients older than a cutoff
type ReminderSource interface {
	ListOpenReminders(ctx context.Context, olderThan time.Time) ([]models.OpenRevisionReminder, error)
}

// ReminderMailer sends a reminder email
type ReminderMailer interface {
	SendRevisionReminderEmail(ctx context.Context, to, name, step, requestID string, days int) error
}

// Scheduler handles periodic tasks
type Scheduler struct {
	reminders ReminderSource
	mailer    ReminderMailer
	config    *config.SchedulerConfig
	stopChan  chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(reminders ReminderSource, mailer ReminderMailer, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		mailer:    mailer,
		config:    cfg,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", "revision_reminders_enabled", s.config.EnableRevisionReminders)

	if s.config.EnableRevisionReminders {
		if err := s.startCronTask(s.config.RevisionReminderCron, "revision_reminders", s.runRevisionReminders); err != nil {
			slog.Error("Failed to start revision reminders", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler. Calling it again is a no-op.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		slog.Info("Stopping scheduler")
		close(s.stopChan)
	})
}

// startCronTask parses a cron expression and starts the task.
// Supports "minute hour day month weekday" with */n in the minute and hour fields,
// e.g. "0 9 * * 1" (Monday 9 AM), "0 8 * * *" (daily 8 AM), "*/5 * * * *" (every 5 minutes).
// Day and month are ignored.
func (s *Scheduler) startCronTask(cronExpr, taskName string, task func()) error {
	schedule, err := parseCron(cronExpr)
	if err != nil {
		return err
	}
	go s.run(schedule, taskName, task)
	return nil
}

type cronSchedule struct {
	minuteInterval int // every n minutes, 0 when unused
	hourInterval   int // every n hours at minute, 0 when unused
	minute         int
	hour           int
	weekday        int // -1 for every day
}

func parseCron(cronExpr string) (cronSchedule, error) {
	parts := strings.Fields(cronExpr)
	if len(parts) != 5 {
		return cronSchedule{}, fmt.Errorf("invalid cron expression: %s (expected 5 fields)", cronExpr)
	}

	if strings.HasPrefix(parts[0], "*/") {
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return cronSchedule{}, fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		return cronSchedule{minuteInterval: interval, weekday: -1}, nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return cronSchedule{}, fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	if strings.HasPrefix(parts[1], "*/") {
		interval, err := strconv.Atoi(parts[1][2:])
		if err != nil || interval < 1 || interval > 23 {
			return cronSchedule{}, fmt.Errorf("invalid hour interval in cron: %s", parts[1])
		}
		return cronSchedule{hourInterval: interval, minute: minute, weekday: -1}, nil
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return cronSchedule{}, fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	schedule := cronSchedule{minute: minute, hour: hour, weekday: -1}
	if parts[4] != "*" {
		weekday, err := strconv.Atoi(parts[4])
		if err != nil || weekday < 0 || weekday > 6 {
			return cronSchedule{}, fmt.Errorf("invalid weekday in cron: %s (0-6, 0=Sunday)", parts[4])
		}
		schedule.weekday = weekday
	}
	return schedule, nil
}

// next returns the first run time strictly after from
func (c cronSchedule) next(from time.Time) time.Time {
	switch {
	case c.minuteInterval > 0:
		return from.Add(time.Duration(c.minuteInterval) * time.Minute)
	case c.hourInterval > 0:
		return nextHourlyInterval(from, c.hourInterval, c.minute)
	case c.weekday >= 0:
		return nextWeekday(from, time.Weekday(c.weekday), c.hour, c.minute)
	default:
		return nextDailyRun(from, c.hour, c.minute)
	}
}

func (s *Scheduler) run(schedule cronSchedule, taskName string, task func()) {
	if schedule.minuteInterval > 0 {
		slog.Info("Running interval task", "task", taskName)
		task()
	}

	for {
		now := s.now()
		next := schedule.next(now)
		slog.Info("Next task run scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			slog.Info("Running scheduled task", "task", taskName)
			task()
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// nextHourlyInterval calculates the next run time for hourly intervals
func nextHourlyInterval(from time.Time, hourInterval, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	for next.Hour()%hourInterval != 0 {
		next = next.Add(time.Hour)
	}
	return next
}

// nextWeekday calculates the next occurrence of a specific weekday and time
func nextWeekday(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	daysUntil := int(weekday - from.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}
	next = next.AddDate(0, 0, daysUntil)

	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// nextDailyRun calculates the next daily run time
func nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) runRevisionReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.sendRevisionReminders(ctx)
}

// sendRevisionReminders mails every recipient whose request has been open longer than ReminderAfter
func (s *Scheduler) sendRevisionReminders(ctx context.Context) int {
	slog.InfoContext(ctx, "Sending revision reminders")

	now := s.now()
	reminders, err := s.reminders.ListOpenReminders(ctx, now.Add(-s.config.ReminderAfter))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list open revision requests", "error", err)
		return 0
	}

	sent := 0
	for _, r := range reminders {
		if r.Email == "" {
			continue
		}
		days := int(now.Sub(r.CreatedAt).Hours() / 24)
		if err := s.mailer.SendRevisionReminderEmail(ctx, r.Email, r.RecipientName, string(r.Step), r.RequestID, days); err != nil {
			slog.ErrorContext(ctx, "Failed to send revision reminder",
				"revision_request_id", r.RequestID,
				"recipient_id", r.RecipientID,
				"error", err,
			)
			continue
		}
		sent++
	}

	slog.InfoContext(ctx, "Revision reminders completed", "reminders_sent", sent)
	return sent
}
