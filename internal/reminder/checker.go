package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iris-assistant/iris/internal/schema"
)

// Notifier receives the formatted message for each fired reminder.
type Notifier func(message string)

// Checker scans the reminder list on a fixed interval and notifies for due
// reminders. A one-shot reminder is marked notified after its first firing;
// a recurring reminder's due time advances to the schedule's next
// occurrence. The reminder list is mutated only through the chat log's
// locked update, so the checker and the foreground thread never race.
type Checker struct {
	svc      *Service
	notify   Notifier
	interval time.Duration
}

// NewChecker creates a Checker. interval defaults to 60 seconds if zero.
func NewChecker(svc *Service, notify Notifier, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Checker{svc: svc, notify: notify, interval: interval}
}

// Start runs the polling loop until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	slog.Info("reminder checker started", "interval", c.interval)

	for {
		select {
		case <-ticker.C:
			c.check(time.Now())
		case <-ctx.Done():
			slog.Info("reminder checker stopped")
			return ctx.Err()
		}
	}
}

// check fires every due reminder exactly once per occurrence.
func (c *Checker) check(now time.Time) {
	var fired []schema.Reminder

	c.svc.log.UpdateReminders(func(rs []schema.Reminder) ([]schema.Reminder, bool) {
		changed := false
		for i, r := range rs {
			if r.Notified {
				continue
			}
			due, err := time.Parse(time.RFC3339, r.DueDate)
			if err != nil {
				slog.Error("error parsing reminder due_date", "name", r.Name, "err", err)
				continue
			}
			if now.Before(due) {
				continue
			}

			fired = append(fired, r)
			changed = true

			if r.Recur != "" {
				next, err := nextOccurrence(r.Recur, now)
				if err != nil {
					slog.Error("error advancing recurring reminder", "name", r.Name, "err", err)
					rs[i].Notified = true
					continue
				}
				rs[i].DueDate = next.Format(time.RFC3339)
			} else {
				rs[i].Notified = true
			}
		}
		return rs, changed
	})

	for _, r := range fired {
		c.notify(fmt.Sprintf("Reminder: %s (Due: %s)", r.Text, r.DueDate))
	}
}

func nextOccurrence(expr string, after time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}
