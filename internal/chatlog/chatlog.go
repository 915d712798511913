// Package chatlog implements the durable, append-only conversation log.
//
// The persisted form is a single JSON document:
//
//	{ "chat_history": [ {"timestamp":"…","user":"…","response":"…"} ],
//	  "reminders":    [ {"name":"…","text":"…","due_date":"…","created_at":"…"} ],
//	  "last_interaction": "…" | null }
//
// Loading is all-or-nothing: a parse failure anywhere in the file discards
// the entire log and starts empty.
package chatlog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iris-assistant/iris/internal/schema"
)

// Log holds the in-memory conversation history and reminder list, backed by
// a JSON file. All mutation methods persist immediately with a full-file
// overwrite; write failures are logged and swallowed, leaving the in-memory
// state temporarily ahead of storage.
type Log struct {
	mu   sync.Mutex
	path string

	chatHistory     []schema.ChatEntry
	reminders       []schema.Reminder
	lastInteraction *time.Time
}

type wireLog struct {
	ChatHistory     []schema.ChatEntry `json:"chat_history"`
	Reminders       []schema.Reminder  `json:"reminders"`
	LastInteraction *string            `json:"last_interaction"`
}

// Open loads the log at path, or returns an empty log when the file is
// missing or any part of it fails to parse.
func Open(path string) *Log {
	l := &Log{path: path}
	l.load()
	return l
}

func (l *Log) load() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return // missing or unreadable: start empty
	}

	var w wireLog
	if err := json.Unmarshal(data, &w); err != nil {
		slog.Warn("chatlog: discarding malformed log", "path", l.path, "err", err)
		return
	}

	// Any malformed entry fails the whole load.
	for _, e := range w.ChatHistory {
		if e.Timestamp != "" {
			if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
				slog.Warn("chatlog: discarding log with malformed entry", "timestamp", e.Timestamp)
				return
			}
		}
	}
	if w.LastInteraction != nil {
		ts, err := time.Parse(time.RFC3339, *w.LastInteraction)
		if err != nil {
			slog.Warn("chatlog: discarding log with malformed last_interaction")
			return
		}
		l.lastInteraction = &ts
	}

	l.chatHistory = w.ChatHistory
	l.reminders = w.Reminders
}

// AppendTurn records one completed conversation turn and persists.
func (l *Log) AppendTurn(user, response string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.chatHistory = append(l.chatHistory, schema.ChatEntry{
		Timestamp: now.Format(time.RFC3339),
		User:      user,
		Response:  response,
	})
	l.lastInteraction = &now
	l.saveLocked()
}

// Entries returns a snapshot of the conversation history.
func (l *Log) Entries() []schema.ChatEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]schema.ChatEntry, len(l.chatHistory))
	copy(out, l.chatHistory)
	return out
}

// Len returns the number of conversation entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chatHistory)
}

// LastInteraction returns the time of the most recent turn, or nil.
func (l *Log) LastInteraction() *time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastInteraction == nil {
		return nil
	}
	t := *l.lastInteraction
	return &t
}

// Reset clears the whole history and reminder list, and persists.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chatHistory = nil
	l.reminders = nil
	l.saveLocked()
}

// AddReminder appends r and persists.
func (l *Log) AddReminder(r schema.Reminder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reminders = append(l.reminders, r)
	l.saveLocked()
}

// RemoveReminder removes the first reminder named name and persists.
// Returns false when no reminder matched; the list is unchanged but still
// re-persisted, matching the original save-always behaviour.
func (l *Log) RemoveReminder(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	found := false
	for i, r := range l.reminders {
		if r.Name == name {
			l.reminders = append(l.reminders[:i], l.reminders[i+1:]...)
			found = true
			break
		}
	}
	l.saveLocked()
	return found
}

// Reminders returns a snapshot copy of the reminder list.
func (l *Log) Reminders() []schema.Reminder {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]schema.Reminder, len(l.reminders))
	copy(out, l.reminders)
	return out
}

// UpdateReminders applies fn to a copy of the reminder list under the log's
// lock. fn reports whether it changed anything; the result is stored and
// persisted only when it did, so the background checker's idle ticks do not
// rewrite the file.
func (l *Log) UpdateReminders(fn func([]schema.Reminder) ([]schema.Reminder, bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make([]schema.Reminder, len(l.reminders))
	copy(snapshot, l.reminders)
	updated, changed := fn(snapshot)
	if !changed {
		return
	}
	l.reminders = updated
	l.saveLocked()
}

// Save persists the current state.
func (l *Log) Save() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saveLocked()
}

func (l *Log) saveLocked() {
	w := wireLog{
		ChatHistory: l.chatHistory,
		Reminders:   l.reminders,
	}
	if l.lastInteraction != nil {
		s := l.lastInteraction.Format(time.RFC3339)
		w.LastInteraction = &s
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		slog.Warn("chatlog: marshal failed", "err", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		slog.Warn("chatlog: mkdir failed", "err", err)
		return
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		slog.Warn("chatlog: write failed", "path", l.path, "err", err)
	}
}
