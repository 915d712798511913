package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/iris-assistant/iris/internal/chatlog"
	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/schema"
	"github.com/iris-assistant/iris/internal/status"
)

// ─── fakes ─────────────────────────────────────────────────────────────────

type scriptStep struct {
	resp schema.LLMResponse
	err  error
}

// fakeProvider replays a per-model script of responses.
type fakeProvider struct {
	mu      sync.Mutex
	scripts map[string][]scriptStep
	calls   map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{scripts: map[string][]scriptStep{}, calls: map[string]int{}}
}

func (f *fakeProvider) script(model string, steps ...scriptStep) {
	f.scripts[model] = append(f.scripts[model], steps...)
}

func (f *fakeProvider) Chat(_ context.Context, _ schema.Messages, _ []map[string]any, opts schema.ChatOptions) (schema.LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls[opts.Model]
	f.calls[opts.Model]++
	steps := f.scripts[opts.Model]
	if i >= len(steps) {
		return schema.LLMResponse{}, fmt.Errorf("no scripted response %d for model %q", i, opts.Model)
	}
	return steps[i].resp, steps[i].err
}

func (f *fakeProvider) DefaultModel() string { return "primary" }

func textResp(s string) scriptStep {
	return scriptStep{resp: schema.LLMResponse{Content: &s, FinishReason: "stop"}}
}

func toolResp(id, name string, args map[string]any) scriptStep {
	return scriptStep{resp: schema.LLMResponse{
		ToolCalls:    []schema.ToolCallRequest{{ID: id, Name: name, Arguments: args}},
		FinishReason: "tool_calls",
	}}
}

func errStep(msg string) scriptStep {
	return scriptStep{err: fmt.Errorf("%s", msg)}
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}}}`)
}
func (echoTool) Execute(_ context.Context, args map[string]any) (string, error) {
	text, _ := args["text"].(string)
	return "echo: " + text, nil
}

func newTestOrchestrator(t *testing.T, provider schema.LLMProvider, tools ...schema.Tool) (*Orchestrator, *chatlog.Log, *[]schema.Status) {
	t.Helper()

	registry := plugin.NewRegistry()
	for _, tool := range tools {
		if err := registry.Add(tool); err != nil {
			t.Fatalf("register tool: %v", err)
		}
	}

	log := chatlog.Open(filepath.Join(t.TempDir(), "chatlog.json"))

	broadcaster := status.NewBroadcaster()
	var seen []schema.Status
	broadcaster.Subscribe(func(st schema.Status) { seen = append(seen, st) })

	o := New(provider, registry, log, broadcaster, Settings{
		Model:         "primary",
		FallbackModel: "fallback",
		SystemPrompt:  "You are a test assistant.",
		MaxIter:       5,
	})
	return o, log, &seen
}

// ─── SendMessage ───────────────────────────────────────────────────────────

func TestSendMessage_TextReply(t *testing.T) {
	p := newFakeProvider()
	p.script("primary", textResp("hello there"))
	o, log, seen := newTestOrchestrator(t, p)

	reply := o.SendMessage(context.Background(), "hi")
	if reply != "hello there" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	entries := log.Entries()
	if len(entries) != 1 || entries[0].User != "hi" || entries[0].Response != "hello there" {
		t.Errorf("unexpected chat log entries: %+v", entries)
	}
	if o.SessionLen() != 3 { // system + user + assistant
		t.Errorf("expected session length 3, got %d", o.SessionLen())
	}

	want := []schema.Status{schema.StatusProcessing, schema.StatusIdle}
	if len(*seen) != len(want) || (*seen)[0] != want[0] || (*seen)[1] != want[1] {
		t.Errorf("unexpected status sequence: %v", *seen)
	}
}

func TestSendMessage_ToolLoop(t *testing.T) {
	p := newFakeProvider()
	p.script("primary",
		toolResp("call_1", "echo", map[string]any{"text": "ping"}),
		textResp("done"),
	)
	o, _, seen := newTestOrchestrator(t, p, echoTool{})

	reply := o.SendMessage(context.Background(), "use the tool")
	if reply != "done" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if p.calls["primary"] != 2 {
		t.Errorf("expected 2 provider calls, got %d", p.calls["primary"])
	}

	var sawTool bool
	for _, st := range *seen {
		if st == schema.StatusToolRunning("Echo") {
			sawTool = true
		}
	}
	if !sawTool {
		t.Errorf("expected a tool-running status, got %v", *seen)
	}
}

func TestSendMessage_UnknownToolResultFedBack(t *testing.T) {
	p := newFakeProvider()
	p.script("primary",
		toolResp("call_1", "nonexistent", nil),
		textResp("recovered"),
	)
	o, _, _ := newTestOrchestrator(t, p)

	reply := o.SendMessage(context.Background(), "go")
	if reply != "recovered" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestSendMessage_FallbackOnTransportError(t *testing.T) {
	p := newFakeProvider()
	p.script("primary", errStep("connection refused"))
	p.script("fallback", textResp("backup says hi"))
	o, log, seen := newTestOrchestrator(t, p)

	reply := o.SendMessage(context.Background(), "hi")
	if reply != "backup says hi" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	entries := log.Entries()
	if len(entries) != 1 || entries[0].Response != "(fallback) backup says hi" {
		t.Errorf("expected fallback-prefixed log entry, got %+v", entries)
	}

	var sawFallback bool
	for _, st := range *seen {
		if st == schema.StatusFallingBack {
			sawFallback = true
		}
	}
	if !sawFallback {
		t.Errorf("expected falling-back status, got %v", *seen)
	}
}

func TestSendMessage_FallbackOnErrorMarker(t *testing.T) {
	p := newFakeProvider()
	p.script("primary", textResp("Error: HTTP 429: rate limit exceeded"))
	p.script("fallback", textResp("backup says hi"))
	o, _, _ := newTestOrchestrator(t, p)

	reply := o.SendMessage(context.Background(), "hi")
	if reply != "backup says hi" {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
	if p.calls["fallback"] != 1 {
		t.Errorf("expected 1 fallback call, got %d", p.calls["fallback"])
	}
}

func TestSendMessage_BothModelsFail(t *testing.T) {
	p := newFakeProvider()
	p.script("primary", errStep("primary down"))
	p.script("fallback", errStep("fallback down"))
	o, log, seen := newTestOrchestrator(t, p)

	reply := o.SendMessage(context.Background(), "hi")
	if !strings.HasPrefix(reply, "Error processing message:") {
		t.Fatalf("expected error string, got %q", reply)
	}
	if !strings.Contains(reply, "fallback down") {
		t.Errorf("expected fallback detail in error string, got %q", reply)
	}

	entries := log.Entries()
	if len(entries) != 1 || entries[0].Response != reply {
		t.Errorf("expected error string logged, got %+v", entries)
	}

	last := (*seen)[len(*seen)-1]
	if !last.IsError() {
		t.Errorf("expected final status to be an error, got %q", last)
	}
}

func TestSendMessage_SessionNotPollutedByFailedTurn(t *testing.T) {
	p := newFakeProvider()
	p.script("primary", errStep("down"), textResp("second turn ok"))
	p.script("fallback", errStep("down too"))
	o, _, _ := newTestOrchestrator(t, p)

	o.SendMessage(context.Background(), "first")
	if o.SessionLen() != 1 { // system prompt only
		t.Fatalf("expected failed turn discarded from session, length %d", o.SessionLen())
	}

	reply := o.SendMessage(context.Background(), "second")
	if reply != "second turn ok" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestSendMessage_MaxIterations(t *testing.T) {
	p := newFakeProvider()
	for i := 0; i < 5; i++ {
		p.script("primary", toolResp(fmt.Sprintf("call_%d", i), "echo", map[string]any{"text": "again"}))
	}
	o, _, _ := newTestOrchestrator(t, p, echoTool{})

	reply := o.SendMessage(context.Background(), "loop forever")
	if !strings.Contains(reply, "maximum number of tool iterations") {
		t.Fatalf("expected max-iteration message, got %q", reply)
	}
	if p.calls["primary"] != 5 {
		t.Errorf("expected exactly 5 provider calls, got %d", p.calls["primary"])
	}
}

func TestSendMessage_ConcurrentTurns(t *testing.T) {
	const turns = 8

	p := newFakeProvider()
	for i := 0; i < turns; i++ {
		p.script("primary", textResp("reply"))
	}
	o, log, _ := newTestOrchestrator(t, p)

	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			o.SendMessage(context.Background(), fmt.Sprintf("turn %d", n))
		}(i)
	}
	wg.Wait()

	if log.Len() != turns {
		t.Errorf("expected %d chat log entries, got %d", turns, log.Len())
	}
	// system prompt + (user + assistant) per turn
	if got := o.SessionLen(); got != 1+2*turns {
		t.Errorf("expected session length %d, got %d", 1+2*turns, got)
	}
}

func TestResetSession(t *testing.T) {
	p := newFakeProvider()
	p.script("primary", textResp("hello"))
	o, log, _ := newTestOrchestrator(t, p)

	o.SendMessage(context.Background(), "hi")
	o.ResetSession()

	if o.SessionLen() != 1 {
		t.Errorf("expected fresh session with system prompt only, got %d", o.SessionLen())
	}
	if log.Len() != 1 {
		t.Errorf("expected chat log untouched by reset, got %d entries", log.Len())
	}
}

// ─── friendly names ────────────────────────────────────────────────────────

func TestFriendlyToolName(t *testing.T) {
	cases := map[string]string{
		"web_search":       "Web Search",
		"add_reminder":     "Reminder System",
		"store_memory":     "Memory Storage",
		"some_custom_tool": "Some Custom Tool",
	}
	for in, want := range cases {
		if got := FriendlyToolName(in); got != want {
			t.Errorf("FriendlyToolName(%q) = %q, want %q", in, got, want)
		}
	}
}
