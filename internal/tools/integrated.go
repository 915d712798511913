package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iris-assistant/iris/internal/memory"
	"github.com/iris-assistant/iris/internal/reminder"
	"github.com/iris-assistant/iris/internal/schema"
)

// Integrated tools are bound to core services at wiring time instead of being
// loaded through the factory table, because they need live dependencies a
// plugin context cannot carry.

// ReminderTools returns the reminder CRUD tools bound to svc.
func ReminderTools(svc *reminder.Service) []schema.Tool {
	return []schema.Tool{
		NewFuncTool(
			"add_reminder",
			"Set a reminder. due_date uses 'YYYY-MM-DD HH:MM' local time; recur optionally holds a cron expression for repeating reminders.",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Short unique name"},
					"text": {"type": "string", "description": "What to be reminded of"},
					"due_date": {"type": "string", "description": "Due time, 'YYYY-MM-DD HH:MM'"},
					"recur": {"type": "string", "description": "Optional cron expression, e.g. '0 9 * * *'"}
				},
				"required": ["name", "text", "due_date"]
			}`),
			func(_ context.Context, params map[string]any) (string, error) {
				return svc.Add(
					stringParam(params, "name"),
					stringParam(params, "text"),
					stringParam(params, "due_date"),
					stringParam(params, "recur"),
				), nil
			},
		),
		NewFuncTool(
			"remove_reminder",
			"Remove a reminder by name.",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Name of the reminder to remove"}
				},
				"required": ["name"]
			}`),
			func(_ context.Context, params map[string]any) (string, error) {
				return svc.Remove(stringParam(params, "name")), nil
			},
		),
		NewFuncTool(
			"list_reminders",
			"List all reminders with their due times.",
			json.RawMessage(`{"type": "object", "properties": {}}`),
			func(_ context.Context, _ map[string]any) (string, error) {
				rs := svc.List()
				if len(rs) == 0 {
					return "No reminders set.", nil
				}
				var sb strings.Builder
				for _, r := range rs {
					fmt.Fprintf(&sb, "- %s: %s (due %s", r.Name, r.Text, r.DueDate)
					if r.Recur != "" {
						fmt.Fprintf(&sb, ", recurs %q", r.Recur)
					}
					if r.Notified {
						sb.WriteString(", notified")
					}
					sb.WriteString(")\n")
				}
				return sb.String(), nil
			},
		),
	}
}

// MemoryTools returns the persistent key-value memory tools bound to store.
func MemoryTools(store *memory.Store) []schema.Tool {
	keyValueParams := json.RawMessage(`{
		"type": "object",
		"properties": {
			"key": {"type": "string", "description": "Memory key"},
			"value": {"type": "string", "description": "Value to store"}
		},
		"required": ["key", "value"]
	}`)

	save := func(_ context.Context, params map[string]any) (string, error) {
		key := stringParam(params, "key")
		if key == "" {
			return "Error: key is required", nil
		}
		value := stringParam(params, "value")
		if err := store.Append(key, value); err != nil {
			return fmt.Sprintf("Error saving memory: %v", err), nil
		}
		return fmt.Sprintf("Stored '%s'.", key), nil
	}

	return []schema.Tool{
		NewFuncTool(
			"store_memory",
			"Store a fact in persistent memory under a key.",
			keyValueParams, save,
		),
		NewFuncTool(
			"write_persistent_memory",
			"Write a value to persistent memory, overwriting the key if present.",
			keyValueParams, save,
		),
		NewFuncTool(
			"read_persistent_memory",
			"Read persistent memory. Returns one key's value, or all entries when no key is given.",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"key": {"type": "string", "description": "Memory key; omit to read everything"}
				}
			}`),
			func(_ context.Context, params map[string]any) (string, error) {
				if key := stringParam(params, "key"); key != "" {
					if v := store.Get(key); v != "" {
						return v, nil
					}
					return fmt.Sprintf("No memory stored under '%s'.", key), nil
				}

				data := store.Read()
				if len(data) == 0 {
					return "Memory is empty.", nil
				}
				keys := make([]string, 0, len(data))
				for k := range data {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				var sb strings.Builder
				for _, k := range keys {
					fmt.Fprintf(&sb, "%s = %s\n", k, data[k])
				}
				return sb.String(), nil
			},
		),
	}
}
