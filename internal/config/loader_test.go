package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agent.Model != def.Agent.Model {
		t.Errorf("expected default model %q, got %q", def.Agent.Model, cfg.Agent.Model)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"agent": map[string]any{
			"model":         "gpt-4o",
			"fallbackModel": "gpt-4o-mini",
			"maxTokens":     2048,
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.Model != "gpt-4o" {
		t.Errorf("expected model %q, got %q", "gpt-4o", cfg.Agent.Model)
	}
	if cfg.Agent.MaxTokens != 2048 {
		t.Errorf("expected maxTokens 2048, got %d", cfg.Agent.MaxTokens)
	}
	// Unset fields keep their defaults.
	if cfg.Agent.MaxToolIterations != DefaultConfig().Agent.MaxToolIterations {
		t.Errorf("expected default maxToolIterations, got %d", cfg.Agent.MaxToolIterations)
	}
}

func TestLoad_MalformedFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.Model != DefaultConfig().Agent.Model {
		t.Errorf("expected default model, got %q", cfg.Agent.Model)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Agent.Model = "gpt-4.1"
	cfg.Channels.Telegram.Enabled = true

	if err := Save(&cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Agent.Model != "gpt-4.1" {
		t.Errorf("expected model gpt-4.1, got %q", got.Agent.Model)
	}
	if !got.Channels.Telegram.Enabled {
		t.Error("expected telegram enabled after round trip")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.Model = "original"

	snap := cfg.Snapshot()
	agent, ok := snap["agent"].(map[string]any)
	if !ok {
		t.Fatal("expected agent section in snapshot")
	}
	agent["model"] = "mutated"

	if cfg.Agent.Model != "original" {
		t.Errorf("snapshot mutation leaked into live config: %q", cfg.Agent.Model)
	}
}
