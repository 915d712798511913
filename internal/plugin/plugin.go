// Package plugin implements the tool-plugin loading and invocation subsystem:
// the capability contract plugins satisfy, the restricted context they receive,
// and the manager that loads them into a flat tool registry.
//
// Units are discovered through a link-time factory table instead of runtime
// module loading: each built-in tool file registers a Factory from its init
// function via RegisterFactory. Loading a unit means running its factory,
// checking the returned value against the Plugin contract, and invoking
// Register with the shared Context.
package plugin

import (
	"fmt"
	"sync"

	"github.com/iris-assistant/iris/internal/schema"
)

// Plugin is the contract every loadable tool unit must satisfy.
//
// Name identifies the plugin in load-success/failure log lines only; it is
// not a uniqueness key for the callables it exposes. Register is invoked
// exactly once per load and returns the tools the plugin contributes.
type Plugin interface {
	Name() string
	Register(ctx *Context) ([]schema.Tool, error)
}

// Factory produces a plugin instance for one unit. It is the Go analogue of
// a unit's top-level zero-argument register() entry point.
type Factory func() (Plugin, error)

var (
	factoryMu sync.Mutex
	factories = map[string]Factory{}
)

// RegisterFactory adds a unit to the global load table. Built-in tool files
// call this from init(); registering the same unit twice is a programming
// error and panics.
func RegisterFactory(unit string, fn Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, dup := factories[unit]; dup {
		panic(fmt.Sprintf("plugin: duplicate unit %q", unit))
	}
	factories[unit] = fn
}

// Factories returns a copy of the global load table.
func Factories() map[string]Factory {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	out := make(map[string]Factory, len(factories))
	for k, v := range factories {
		out[k] = v
	}
	return out
}
