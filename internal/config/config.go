// Package config defines the iris configuration schema and file handling.
package config

import "encoding/json"

// Config is the root configuration structure persisted at ~/.iris/config.json.
type Config struct {
	Agent    AgentConfig    `json:"agent"`
	Tools    ToolsConfig    `json:"tools"`
	Channels ChannelsConfig `json:"channels"`
	Gateway  GatewayConfig  `json:"gateway"`

	// Paths is resolved at runtime, never serialized. Tests override it to
	// keep storage out of the real data directory.
	Paths PathsConfig `json:"-"`
}

// PathsConfig locates the on-disk storage files.
type PathsConfig struct {
	Chatlog string
	Memory  string
}

// AgentConfig configures the LLM backend and orchestration behaviour.
type AgentConfig struct {
	Model             string  `json:"model"`
	FallbackModel     string  `json:"fallbackModel"`
	APIKey            string  `json:"apiKey"`
	APIBase           string  `json:"apiBase"`
	MaxTokens         int     `json:"maxTokens"`
	Temperature       float64 `json:"temperature"`
	MaxToolIterations int     `json:"maxToolIterations"`
	SystemPrompt      string  `json:"systemPrompt"`
	DefaultTTSEnabled bool    `json:"defaultTtsEnabled"`
}

// ToolsConfig configures the built-in tool plugins.
type ToolsConfig struct {
	BraveAPIKey        string `json:"braveApiKey"`
	MaxSearchResults   int    `json:"maxSearchResults"`
	ExecTimeoutSeconds int    `json:"execTimeoutSeconds"`
	AllowShell         bool   `json:"allowShell"`
}

// ChannelsConfig configures the optional notification/chat channels.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Slack    SlackConfig    `json:"slack"`
}

// TelegramConfig configures the Telegram channel (long-polling bot).
type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	NotifyTo  int64    `json:"notifyTo"` // chat id for reminder notifications
	AllowFrom []string `json:"allowFrom,omitempty"`
}

// SlackConfig configures the Slack channel (Web API notifications).
type SlackConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"botToken"`
	Channel  string `json:"channel"` // channel id for reminder notifications
}

// GatewayConfig configures the websocket gateway.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Model:             "gpt-4o-mini",
			FallbackModel:     "gpt-4o-mini",
			MaxTokens:         4096,
			Temperature:       0.6,
			MaxToolIterations: 20,
			SystemPrompt:      "You are IRIS, a helpful personal assistant.",
		},
		Tools: ToolsConfig{
			MaxSearchResults:   5,
			ExecTimeoutSeconds: 60,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Paths: PathsConfig{
			Chatlog: ChatlogPath(),
			Memory:  MemoryPath(),
		},
	}
}

// Snapshot returns the configuration as a generic map, deep-copied through a
// JSON round trip. Plugins receive this copy so they can never mutate the
// live configuration.
func (c *Config) Snapshot() map[string]any {
	data, err := json.Marshal(c)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
