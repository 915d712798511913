package plugin

import (
	"encoding/json"

	"github.com/iris-assistant/iris/internal/schema"
)

// Registry holds the flat, ordered set of callables exposed to the LLM.
// Insertion order is preserved because the backend may use ordinal or
// name-based tool resolution.
type Registry struct {
	order []string
	tools map[string]schema.Tool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]schema.Tool)}
}

// Add appends t to the registry. Adding a tool whose name is already
// registered returns an error and leaves the registry unchanged
// (first registration wins).
func (r *Registry) Add(t schema.Tool) error {
	name := t.Name()
	if _, dup := r.tools[name]; dup {
		return &DuplicateToolError{Name: name}
	}
	r.order = append(r.order, name)
	r.tools[name] = t
	return nil
}

// Get returns the tool with the given name, or nil.
func (r *Registry) Get(name string) schema.Tool { return r.tools[name] }

// All returns the tools in insertion order.
func (r *Registry) All() []schema.Tool {
	out := make([]schema.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the registered tool names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Clear removes every tool.
func (r *Registry) Clear() {
	r.order = nil
	r.tools = make(map[string]schema.Tool)
}

// Definitions returns all tool definitions in OpenAI function-calling format,
// in insertion order.
func (r *Registry) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}

// DuplicateToolError reports a tool-name collision in the registry.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return "tool name already registered: " + e.Name
}
