package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/schema"
)

// denyPatterns blocks destructive commands before they reach the shell.
var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brm\s+-[rf]{1,2}\b`),            // rm -r, rm -rf, rm -fr
	regexp.MustCompile(`(?i)(?:^|[;&|]\s*)format\b`),         // format (standalone)
	regexp.MustCompile(`(?i)\b(mkfs|diskpart)\b`),            // disk ops
	regexp.MustCompile(`(?i)\bdd\s+if=`),                     // dd
	regexp.MustCompile(`(?i)>\s*/dev/sd`),                    // write to disk
	regexp.MustCompile(`(?i)\b(shutdown|reboot|poweroff)\b`), // power control
	regexp.MustCompile(`:\(\)\s*\{.*\};\s*:`),                // fork bomb
}

func init() {
	plugin.RegisterFactory("shell", func() (plugin.Plugin, error) {
		return &shellPlugin{}, nil
	})
}

// shellPlugin contributes exec when shell access is enabled in config.
type shellPlugin struct{}

func (p *shellPlugin) Name() string { return "Shell" }

func (p *shellPlugin) Register(ctx *plugin.Context) ([]schema.Tool, error) {
	section := ctx.ConfigSection("tools")
	if !sectionBool(section, "allowShell") {
		ctx.Info("shell access disabled; exec tool not registered")
		return nil, nil
	}
	return []schema.Tool{
		newExecTool(sectionInt(section, "execTimeoutSeconds", 60)),
	}, nil
}

// execTool runs shell commands with a deny list and a hard timeout.
type execTool struct {
	timeout time.Duration
}

func newExecTool(timeoutSeconds int) *execTool {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return &execTool{timeout: time.Duration(timeoutSeconds) * time.Second}
}

func (e *execTool) Name() string { return "exec" }
func (e *execTool) Description() string {
	return "Execute a shell command and return its output. Use with caution."
}
func (e *execTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"command": {"type": "string", "description": "The shell command to execute"},
			"working_dir": {"type": "string", "description": "Optional working directory"}
		},
		"required": ["command"]
	}`)
}

func (e *execTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	command := stringParam(params, "command")
	if command == "" {
		return "Error: command is required", nil
	}
	if blocked(command) {
		return "Error: Command blocked by safety guard (dangerous pattern detected)", nil
	}

	cwd := stringParam(params, "working_dir")
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
	cmd.Dir = cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if cmdCtx.Err() != nil {
		return fmt.Sprintf("Error: Command timed out after %v", e.timeout), nil
	}

	var parts []string
	if out := stdout.String(); out != "" {
		parts = append(parts, out)
	}
	if errOut := stderr.String(); strings.TrimSpace(errOut) != "" {
		parts = append(parts, "STDERR:\n"+errOut)
	}
	if runErr != nil && cmd.ProcessState != nil && cmd.ProcessState.ExitCode() != 0 {
		parts = append(parts, fmt.Sprintf("\nExit code: %d", cmd.ProcessState.ExitCode()))
	}

	result := strings.Join(parts, "\n")
	if result == "" {
		result = "(no output)"
	}
	const maxLen = 10000
	if len(result) > maxLen {
		result = result[:maxLen] + fmt.Sprintf("\n... (truncated, %d more chars)", len(result)-maxLen)
	}
	return result, nil
}

func blocked(command string) bool {
	lower := strings.ToLower(strings.TrimSpace(command))
	for _, p := range denyPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
