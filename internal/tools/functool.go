// Package tools contains the built-in tool plugins loaded through the
// link-time factory table, plus the integrated tools that bind core services
// (reminders, persistent memory) into the registry.
package tools

import (
	"context"
	"encoding/json"
)

// ExecuteFunc is the body of a FuncTool.
type ExecuteFunc func(ctx context.Context, params map[string]any) (string, error)

// FuncTool adapts a plain function into the tool contract. Used for tools
// whose state lives in a captured closure rather than a dedicated struct.
type FuncTool struct {
	name        string
	description string
	parameters  json.RawMessage
	fn          ExecuteFunc
}

// NewFuncTool creates a FuncTool.
func NewFuncTool(name, description string, parameters json.RawMessage, fn ExecuteFunc) *FuncTool {
	return &FuncTool{name: name, description: description, parameters: parameters, fn: fn}
}

func (t *FuncTool) Name() string                { return t.name }
func (t *FuncTool) Description() string         { return t.description }
func (t *FuncTool) Parameters() json.RawMessage { return t.parameters }

func (t *FuncTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	return t.fn(ctx, params)
}

// ─── config section helpers ────────────────────────────────────────────────
// Plugin contexts expose configuration as decoded JSON, so numbers arrive as
// float64 and every lookup needs a type assertion.

func sectionString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func sectionInt(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func sectionBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}
