// Package reminder manages named reminders with absolute due times and an
// optional recurring cron schedule, plus the background checker that fires
// them.
package reminder

import (
	"fmt"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/iris-assistant/iris/internal/chatlog"
	"github.com/iris-assistant/iris/internal/schema"
)

// DueDateLayout is the user-facing due date format accepted by Add.
const DueDateLayout = "2006-01-02 15:04"

// cronParser parses the standard 5-field cron expressions accepted for
// recurring reminders.
var cronParser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow,
)

// Service performs reminder CRUD over the chat log's reminder list.
// All results are strings suitable for returning directly to the LLM or
// the CLI; malformed input yields an error string with no state mutation.
type Service struct {
	log *chatlog.Log
}

// NewService creates a Service backed by log.
func NewService(log *chatlog.Log) *Service {
	return &Service{log: log}
}

// Add creates a reminder. due uses the "2006-01-02 15:04" layout in local
// time. recur optionally holds a cron expression; when set, the reminder
// re-fires on that schedule instead of once.
func (s *Service) Add(name, text, due, recur string) string {
	parsed, err := time.ParseInLocation(DueDateLayout, due, time.Local)
	if err != nil {
		return fmt.Sprintf("Error parsing date: %v", err)
	}
	if recur != "" {
		if _, err := cronParser.Parse(recur); err != nil {
			return fmt.Sprintf("Error parsing recurrence %q: %v", recur, err)
		}
	}

	s.log.AddReminder(schema.Reminder{
		Name:      name,
		Text:      text,
		DueDate:   parsed.Format(time.RFC3339),
		CreatedAt: time.Now().Format(time.RFC3339),
		Recur:     recur,
	})
	return fmt.Sprintf("Reminder '%s' set: %s at %s", name, text, due)
}

// Remove deletes the first reminder with the given name.
func (s *Service) Remove(name string) string {
	if s.log.RemoveReminder(name) {
		return fmt.Sprintf("Removed reminder '%s'.", name)
	}
	return fmt.Sprintf("No reminder found with the name '%s'.", name)
}

// List returns a snapshot of all reminders.
func (s *Service) List() []schema.Reminder {
	return s.log.Reminders()
}
