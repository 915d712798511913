package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iris-assistant/iris/internal/schema"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Params{APIKey: "test-key", APIBase: srv.URL, DefaultModel: "test-model"})
}

func TestChat_TextResponse(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != "test-model" {
			t.Errorf("expected default model, got %v", body["model"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": "hello there"},
				"finish_reason": "stop",
			}},
		})
	})

	msgs := schema.NewMessages()
	msgs.AddUser("hi")
	resp, err := p.Chat(context.Background(), msgs, nil, schema.ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content == nil || *resp.Content != "hello there" {
		t.Errorf("unexpected content: %v", resp.Content)
	}
	if resp.HasToolCalls() {
		t.Error("expected no tool calls")
	}
}

func TestChat_ToolCallResponse(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"content": nil,
					"tool_calls": []map[string]any{{
						"id": "call_1",
						"function": map[string]any{
							"name":      "get_weather",
							"arguments": `{"city":"Hanoi"}`,
						},
					}},
				},
				"finish_reason": "tool_calls",
			}},
		})
	})

	msgs := schema.NewMessages()
	msgs.AddUser("weather?")
	resp, err := p.Chat(context.Background(), msgs, nil, schema.ChatOptions{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.Name != "get_weather" || tc.ID != "call_1" {
		t.Errorf("unexpected tool call: %+v", tc)
	}
	if tc.Arguments["city"] != "Hanoi" {
		t.Errorf("unexpected arguments: %v", tc.Arguments)
	}
}

func TestChat_HTTPErrorReturnsMarker(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	msgs := schema.NewMessages()
	msgs.AddUser("hi")
	resp, err := p.Chat(context.Background(), msgs, nil, schema.ChatOptions{})
	if err != nil {
		t.Fatalf("HTTP error status must not be a transport error: %v", err)
	}
	if resp.Content == nil || !strings.HasPrefix(*resp.Content, ErrorMarker) {
		t.Errorf("expected content with %q prefix, got %v", ErrorMarker, resp.Content)
	}
	if resp.FinishReason != "error" {
		t.Errorf("expected finish_reason error, got %q", resp.FinishReason)
	}
}

func TestChat_TransportErrorReturnsError(t *testing.T) {
	p := New(Params{APIBase: "http://127.0.0.1:1", DefaultModel: "m"})
	msgs := schema.NewMessages()
	msgs.AddUser("hi")
	if _, err := p.Chat(context.Background(), msgs, nil, schema.ChatOptions{}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestSanitizeMessages_ToolResult(t *testing.T) {
	msgs := schema.NewMessages()
	msgs.AddSystem("sys")
	msgs.AddAssistant(nil, []schema.ToolCall{{ID: "c1", Name: "f", Arguments: map[string]any{"a": 1}}})
	msgs.AddToolResult("c1", "f", "result")

	wire := sanitizeMessages(msgs)
	if len(wire) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(wire))
	}
	if wire[2]["tool_call_id"] != "c1" || wire[2]["name"] != "f" {
		t.Errorf("unexpected tool message: %v", wire[2])
	}
	if wire[1]["content"] != nil {
		t.Errorf("expected nil assistant content, got %v", wire[1]["content"])
	}
}
