package schema

// ChatEntry is one persisted conversation turn: what the user said and what
// the assistant answered, stamped with the turn's completion time (RFC 3339).
type ChatEntry struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Response  string `json:"response"`
}

// Reminder is a named note with an absolute due time (RFC 3339).
//
// Recur optionally holds a 5-field cron expression; after a recurring
// reminder fires, DueDate advances to the schedule's next occurrence.
// A one-shot reminder is marked Notified after its first firing so it
// does not re-fire on every polling interval.
type Reminder struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	DueDate   string `json:"due_date"`
	CreatedAt string `json:"created_at"`
	Recur     string `json:"recur,omitempty"`
	Notified  bool   `json:"notified,omitempty"`
}
