package agent

import "github.com/iris-assistant/iris/internal/shared/textutil"

// friendlyNames maps tool function names to the names shown in status
// updates. Unknown names fall back to a title-cased form.
var friendlyNames = map[string]string{
	"web_search":              "Web Search",
	"web_fetch":               "Web Fetch",
	"research":                "Research",
	"get_weather":             "Weather",
	"get_temperature":         "Weather",
	"get_system_stats":        "System Stats",
	"get_ip_address":          "IP Lookup",
	"exec":                    "Shell",
	"extract_video_id":        "Video Lookup",
	"add_reminder":            "Reminder System",
	"remove_reminder":         "Reminder System",
	"list_reminders":          "Reminder System",
	"get_current_datetime":    "Date & Time",
	"store_memory":            "Memory Storage",
	"write_persistent_memory": "Persistent Memory",
	"read_persistent_memory":  "Persistent Memory",
}

// FriendlyToolName converts a tool function name to its status display name.
func FriendlyToolName(name string) string {
	if friendly, ok := friendlyNames[name]; ok {
		return friendly
	}
	return textutil.TitleFromSnake(name)
}
