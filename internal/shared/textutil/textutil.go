// Package textutil holds small string helpers shared across packages.
package textutil

import "strings"

// Truncate shortens s to max runes, appending "..." when truncated.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// StringOrDefault returns s, or def when s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// TitleFromSnake converts "snake_case_name" to "Snake Case Name".
func TitleFromSnake(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
