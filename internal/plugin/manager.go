package plugin

import (
	"fmt"
	"sort"

	"github.com/iris-assistant/iris/internal/schema"
)

// Manager loads, validates, and registers all plugin units, accumulating
// their callables into a flat Registry.
//
// Every failure mode degrades to "this one plugin is unavailable", never to
// process termination: Load catches factory errors, contract violations,
// registration errors, and panics, logs each, and continues with the
// remaining units. Units are processed strictly sequentially in sorted order
// so log output is deterministic.
type Manager struct {
	ctx      *Context
	units    map[string]Factory
	registry *Registry

	loaded     []string // plugin names that registered successfully
	loadErrors int      // errors logged during the last Load
}

// NewManager creates a Manager over the global factory table.
func NewManager(ctx *Context) *Manager {
	return NewManagerWithUnits(ctx, Factories())
}

// NewManagerWithUnits creates a Manager over an explicit unit table.
// Used by tests and by embedders that supply their own units.
func NewManagerWithUnits(ctx *Context, units map[string]Factory) *Manager {
	if ctx == nil {
		ctx = NewContext(nil, nil)
	}
	return &Manager{
		ctx:      ctx,
		units:    units,
		registry: NewRegistry(),
	}
}

// Registry returns the registry assembled by the last Load.
func (m *Manager) Registry() *Registry { return m.registry }

// Loaded returns the names of plugins that registered successfully.
func (m *Manager) Loaded() []string {
	out := make([]string, len(m.loaded))
	copy(out, m.loaded)
	return out
}

// LoadErrors returns the number of errors logged during the last Load.
func (m *Manager) LoadErrors() int { return m.loadErrors }

// Load processes every unit and returns the assembled registry.
// It never returns an error; per-unit failures are logged and skipped.
func (m *Manager) Load() *Registry {
	names := make([]string, 0, len(m.units))
	for name := range m.units {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, unit := range names {
		m.loadUnit(unit, m.units[unit])
	}
	return m.registry
}

// Reload clears the registry and loaded-plugin state, then re-runs Load.
// Not safe for concurrent invocation; callers are assumed to be single.
func (m *Manager) Reload() *Registry {
	m.registry.Clear()
	m.loaded = nil
	m.loadErrors = 0
	m.ctx.Success("Reloading plugins...")
	return m.Load()
}

func (m *Manager) loadUnit(unit string, factory Factory) {
	p, err := runFactory(factory)
	if err != nil {
		m.fail("Error loading unit", "unit", unit, "err", err)
		return
	}
	if p == nil {
		m.fail("Unit does not satisfy the plugin contract", "unit", unit)
		return
	}

	tools, err := runRegister(p, m.ctx)
	if err != nil {
		m.fail("Failed to register plugin", "unit", unit, "plugin", p.Name(), "err", err)
		return
	}

	added := 0
	for _, t := range tools {
		if t == nil {
			continue
		}
		if err := m.registry.Add(t); err != nil {
			// First registration wins; reject the collision and keep going
			// with the plugin's remaining callables.
			m.fail("Tool name collision", "unit", unit, "plugin", p.Name(), "tool", t.Name())
			continue
		}
		added++
	}

	m.loaded = append(m.loaded, p.Name())
	m.ctx.Success("Successfully loaded plugin", "plugin", p.Name(), "tools", added)
}

func (m *Manager) fail(msg string, args ...any) {
	m.loadErrors++
	m.ctx.Error(msg, args...)
}

// runFactory invokes the unit's factory, converting a panic into an error.
func runFactory(factory Factory) (p Plugin, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("factory panicked: %v", r)
		}
	}()
	return factory()
}

// runRegister invokes the plugin's Register, converting a panic into an error.
func runRegister(p Plugin, ctx *Context) (tools []schema.Tool, err error) {
	defer func() {
		if r := recover(); r != nil {
			tools, err = nil, fmt.Errorf("register panicked: %v", r)
		}
	}()
	return p.Register(ctx)
}
