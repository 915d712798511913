// Package agent implements the orchestrator that owns one LLM conversation
// session: it forwards user turns, runs the tool-enabled generation loop,
// relays activity status to observers, and falls back once to a secondary
// model when the primary fails.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/iris-assistant/iris/internal/chatlog"
	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/providers"
	"github.com/iris-assistant/iris/internal/schema"
	"github.com/iris-assistant/iris/internal/shared/textutil"
	"github.com/iris-assistant/iris/internal/status"
)

// fallbackPrefix marks fallback-model responses in the chat log.
const fallbackPrefix = "(fallback) "

// Settings configures one Orchestrator.
type Settings struct {
	Model         string
	FallbackModel string
	SystemPrompt  string
	MaxTokens     int
	Temperature   float64
	MaxIter       int
}

// Orchestrator drives the per-turn state machine:
// Idle → Dispatching → Completed, with a one-level Falling Back branch when
// the primary model errors or returns the reserved error marker. No failure
// ever propagates to the caller as an error; SendMessage always returns a
// string.
type Orchestrator struct {
	provider schema.LLMProvider
	registry *plugin.Registry
	log      *chatlog.Log
	status   *status.Broadcaster
	settings Settings

	// mu serializes turns. The gateway and the channels each call
	// SendMessage from their own goroutines against this one shared
	// session, so the whole turn runs under the lock.
	mu           sync.Mutex
	conversation schema.Messages
}

// New creates an Orchestrator with a fresh conversation session.
func New(
	provider schema.LLMProvider,
	registry *plugin.Registry,
	log *chatlog.Log,
	broadcaster *status.Broadcaster,
	settings Settings,
) *Orchestrator {
	if settings.MaxIter <= 0 {
		settings.MaxIter = 20
	}
	o := &Orchestrator{
		provider: provider,
		registry: registry,
		log:      log,
		status:   broadcaster,
		settings: settings,
	}
	o.conversation = o.newConversation()
	return o
}

// SendMessage forwards one user turn and returns the assistant's response.
// On primary failure it attempts exactly one fallback call; on fallback
// failure it returns an error string embedding the detail. Concurrent calls
// are serialized; each turn sees the session state the previous turn left.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status.Publish(schema.StatusProcessing)

	work := o.conversation.Clone()
	work.AddUser(text)

	reply, err := o.run(ctx, &work, o.settings.Model)
	if err == nil && !strings.HasPrefix(reply, providers.ErrorMarker) {
		work.AddAssistantText(reply)
		o.conversation = work
		o.log.AppendTurn(text, reply)
		o.status.Publish(schema.StatusIdle)
		return reply
	}
	if err != nil {
		slog.Error("primary model failed, falling back", "model", o.settings.Model, "err", err)
	} else {
		slog.Error("primary model returned error marker, falling back",
			"model", o.settings.Model, "response", textutil.Truncate(reply, 120))
	}

	o.status.Publish(schema.StatusFallingBack)

	// Fresh session against the fallback model, same configuration.
	fallback := o.newConversation()
	fallback.AddUser(text)

	reply, err = o.run(ctx, &fallback, o.settings.FallbackModel)
	if err != nil {
		slog.Error("fallback model failed", "model", o.settings.FallbackModel, "err", err)
		errStr := fmt.Sprintf("Error processing message: %v", err)
		o.log.AppendTurn(text, errStr)
		o.status.Publish(schema.StatusError(err.Error()))
		return errStr
	}

	o.log.AppendTurn(text, fallbackPrefix+reply)
	o.status.Publish(schema.StatusIdle)
	return reply
}

// ResetSession discards the live conversation state and starts a new one
// with identical configuration. The chat log is untouched.
func (o *Orchestrator) ResetSession() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conversation = o.newConversation()
	slog.Info("chat session reset")
}

// SessionLen returns the number of messages in the live session.
func (o *Orchestrator) SessionLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conversation.Len()
}

func (o *Orchestrator) newConversation() schema.Messages {
	msgs := schema.NewMessages()
	if o.settings.SystemPrompt != "" {
		msgs.AddSystem(o.settings.SystemPrompt)
	}
	return msgs
}

// run executes the LLM ↔ tool iteration loop against one model.
// It publishes a tool-running status before each tool invocation and returns
// the model's final text, or an error on transport failure.
func (o *Orchestrator) run(ctx context.Context, conversation *schema.Messages, model string) (string, error) {
	for i := 0; i < o.settings.MaxIter; i++ {
		resp, err := o.provider.Chat(ctx,
			*conversation,
			o.registry.Definitions(),
			schema.ChatOptions{
				Model:       model,
				MaxTokens:   o.settings.MaxTokens,
				Temperature: o.settings.Temperature,
			},
		)
		if err != nil {
			return "", err
		}

		if !resp.HasToolCalls() {
			content := ""
			if resp.Content != nil {
				content = *resp.Content
			}
			return content, nil
		}

		var toolCalls []schema.ToolCall
		for _, tc := range resp.ToolCalls {
			toolCalls = append(toolCalls, schema.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		conversation.AddAssistant(resp.Content, toolCalls)

		for _, tc := range resp.ToolCalls {
			o.status.Publish(schema.StatusToolRunning(FriendlyToolName(tc.Name)))
			slog.Info("tool call", "name", tc.Name)

			var result string
			if t := o.registry.Get(tc.Name); t != nil {
				result, _ = t.Execute(ctx, tc.Arguments)
			} else {
				result = fmt.Sprintf("Error: Tool '%s' not found", tc.Name)
			}
			conversation.AddToolResult(tc.ID, tc.Name, result)
		}
	}

	return "I've reached the maximum number of tool iterations without a final answer.", nil
}
