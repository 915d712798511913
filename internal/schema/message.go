package schema

import "encoding/json"

// ToolCall represents one function call in an assistant message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToWireMap serialises a ToolCall into the OpenAI wire-format map.
// Used by provider implementations when building the JSON request body.
func (tc ToolCall) ToWireMap() map[string]any {
	argsJSON, _ := json.Marshal(tc.Arguments)
	return map[string]any{
		"id":   tc.ID,
		"type": "function",
		"function": map[string]any{
			"name":      tc.Name,
			"arguments": string(argsJSON),
		},
	}
}

// Message is one entry in the conversation sent to the LLM.
//
// Role is one of: "system", "user", "assistant", "tool".
// Content holds the message text: plain string for system/user/tool,
// *string for assistant (nil when only tool calls are present).
// ToolCallID and ToolName are set for tool-result messages.
type Message struct {
	Role       string
	Content    any // string | *string
	ToolCalls  []ToolCall
	ToolCallID string // "tool" role only
	ToolName   string // "tool" role only
}

// Messages is the ordered list of messages exchanged with the LLM.
// It owns typed append methods so callers never construct raw maps.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty Messages ready for use.
func NewMessages(msgs ...Message) Messages {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// AddSystem appends a system message.
func (m *Messages) AddSystem(content string) {
	m.Messages = append(m.Messages, Message{Role: "system", Content: content})
}

// AddUser appends a user message.
func (m *Messages) AddUser(content string) {
	m.Messages = append(m.Messages, Message{Role: "user", Content: content})
}

// AddAssistant appends an assistant message with optional tool calls.
func (m *Messages) AddAssistant(content *string, toolCalls []ToolCall) {
	m.Messages = append(m.Messages, Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddAssistantText appends a plain-text assistant message.
func (m *Messages) AddAssistantText(content string) {
	c := content
	m.AddAssistant(&c, nil)
}

// AddToolResult appends a tool-result message.
func (m *Messages) AddToolResult(toolCallID, toolName, result string) {
	m.Messages = append(m.Messages, Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: toolCallID,
		ToolName:   toolName,
	})
}

// Len returns the number of messages.
func (m *Messages) Len() int { return len(m.Messages) }

// Clone returns a deep copy of m with an independent backing slice.
func (m *Messages) Clone() Messages {
	cloned := make([]Message, len(m.Messages))
	copy(cloned, m.Messages)
	return Messages{Messages: cloned}
}
