// Package channels provides the chat-platform integrations: inbound user
// messages are forwarded to a Responder, and reminder notifications fan out
// to every enabled channel.
package channels

import (
	"context"
	"strings"
)

// Responder produces the assistant's reply for one inbound message.
// It never fails; errors surface as error strings in the reply.
type Responder func(ctx context.Context, text string) string

// Channel is one chat-platform integration.
type Channel interface {
	Name() string
	// Start runs the channel's receive loop until ctx is cancelled,
	// passing each inbound message to respond.
	Start(ctx context.Context, respond Responder) error
	// Notify pushes an unprompted message (e.g. a fired reminder).
	Notify(ctx context.Context, text string) error
}

// allowed reports whether sender passes the allowlist. An empty allowlist
// allows everyone. sender may be "id|username"; either part may match.
func allowed(allowFrom []string, sender string) bool {
	if len(allowFrom) == 0 {
		return true
	}
	for _, part := range strings.Split(sender, "|") {
		if part == "" {
			continue
		}
		for _, a := range allowFrom {
			if a == part {
				return true
			}
		}
	}
	return false
}

// splitMessage splits content into chunks of at most maxLen, preferring
// newline breaks, then space breaks, then a hard cut.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			pos = maxLen
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t")
	}
	return chunks
}
