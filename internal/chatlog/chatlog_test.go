package chatlog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iris-assistant/iris/internal/schema"
)

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatlog.json")
	return Open(path), path
}

func TestRoundTrip(t *testing.T) {
	l, path := newTestLog(t)
	l.AppendTurn("hello", "hi there")
	l.AppendTurn("how are you", "fine")

	reloaded := Open(path)
	entries := reloaded.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", len(entries))
	}
	orig := l.Entries()
	for i := range entries {
		if entries[i] != orig[i] {
			t.Errorf("entry %d differs after reload: %+v vs %+v", i, entries[i], orig[i])
		}
	}
	if reloaded.LastInteraction() == nil {
		t.Error("expected last_interaction after reload")
	}
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "nope.json"))
	if l.Len() != 0 {
		t.Errorf("expected empty log, got %d entries", l.Len())
	}
}

func TestLoad_MalformedJSONDiscardsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatlog.json")
	if err := os.WriteFile(path, []byte(`{"chat_history": [{"timestamp":`), 0o644); err != nil {
		t.Fatal(err)
	}
	l := Open(path)
	if l.Len() != 0 {
		t.Errorf("expected all-or-nothing discard, got %d entries", l.Len())
	}
}

func TestLoad_OneMalformedEntryDiscardsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatlog.json")
	content := `{
		"chat_history": [
			{"timestamp": "2026-01-02T10:00:00Z", "user": "ok", "response": "fine"},
			{"timestamp": "not-a-timestamp", "user": "bad", "response": "entry"}
		],
		"reminders": [],
		"last_interaction": null
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	l := Open(path)
	// Current behaviour: the whole log is discarded, not partially recovered.
	if l.Len() != 0 {
		t.Errorf("expected entire log discarded, got %d entries", l.Len())
	}
}

func TestLoad_DiscardWarnsAtDefaultLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatlog.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	Open(path)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "discarding malformed log") {
		t.Errorf("expected a warning about the discarded log, got %q", out)
	}
}

func TestReset(t *testing.T) {
	l, path := newTestLog(t)
	l.AppendTurn("a", "b")
	l.AddReminder(schema.Reminder{Name: "r1", Text: "x", DueDate: "2099-01-01T00:00:00Z"})
	l.Reset()

	if l.Len() != 0 || len(l.Reminders()) != 0 {
		t.Error("expected reset to clear history and reminders")
	}
	if Open(path).Len() != 0 {
		t.Error("expected reset to be persisted")
	}
}

func TestUpdateRemindersPersistsOnlyOnChange(t *testing.T) {
	l, path := newTestLog(t)
	l.AddReminder(schema.Reminder{Name: "r1", Text: "x", DueDate: "2099-01-01T00:00:00Z"})

	// Removing the file makes any rewrite observable.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	l.UpdateReminders(func(rs []schema.Reminder) ([]schema.Reminder, bool) {
		return rs, false
	})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no rewrite for an unchanged reminder list")
	}

	l.UpdateReminders(func(rs []schema.Reminder) ([]schema.Reminder, bool) {
		rs[0].Notified = true
		return rs, true
	})
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected rewrite after a real change: %v", err)
	}
}

func TestRemoveReminder(t *testing.T) {
	l, _ := newTestLog(t)
	l.AddReminder(schema.Reminder{Name: "first"})
	l.AddReminder(schema.Reminder{Name: "second"})

	if !l.RemoveReminder("first") {
		t.Error("expected removal of existing reminder")
	}
	if l.RemoveReminder("missing") {
		t.Error("expected false for missing reminder")
	}
	rs := l.Reminders()
	if len(rs) != 1 || rs[0].Name != "second" {
		t.Errorf("unexpected reminders after removal: %+v", rs)
	}
}
