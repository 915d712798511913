package plugin

import (
	"context"
	"log/slog"
)

// LevelSuccess sits between Info and Warn so success lines can be rendered
// distinctly by the root handler.
const LevelSuccess = slog.Level(2)

// Context is the restricted capability handle passed to a plugin at
// registration time: a logging sink and a read-only configuration snapshot.
// Plugins must not reach core internals through it; it is never mutated
// after construction.
type Context struct {
	logger *slog.Logger
	config map[string]any
}

// NewContext builds a Context. A nil logger binds slog.Default(); the config
// map is deep-copied so plugins cannot mutate the live configuration.
func NewContext(logger *slog.Logger, config map[string]any) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{logger: logger, config: deepCopyMap(config)}
}

// Info logs an informational message.
func (c *Context) Info(msg string, args ...any) { c.logger.Info(msg, args...) }

// Warning logs a warning.
func (c *Context) Warning(msg string, args ...any) { c.logger.Warn(msg, args...) }

// Error logs an error.
func (c *Context) Error(msg string, args ...any) { c.logger.Error(msg, args...) }

// Debug logs a debug message.
func (c *Context) Debug(msg string, args ...any) { c.logger.Debug(msg, args...) }

// Success logs at LevelSuccess.
func (c *Context) Success(msg string, args ...any) {
	c.logger.Log(context.Background(), LevelSuccess, msg, args...)
}

// Config returns the value for key from the configuration snapshot.
func (c *Context) Config(key string) (any, bool) {
	v, ok := c.config[key]
	return v, ok
}

// ConfigSection returns a nested configuration section, or nil.
func (c *Context) ConfigSection(key string) map[string]any {
	v, _ := c.config[key].(map[string]any)
	return v
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = deepCopyMap(t)
		case []any:
			cp := make([]any, len(t))
			for i, e := range t {
				if em, ok := e.(map[string]any); ok {
					cp[i] = deepCopyMap(em)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
