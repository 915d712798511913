package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/schema"
)

const ipLookupEndpoint = "https://api.ipify.org"

func init() {
	plugin.RegisterFactory("system", func() (plugin.Plugin, error) {
		return &systemPlugin{}, nil
	})
}

// systemPlugin contributes host-level tools: system stats, the machine's
// public IP, and the current date and time.
type systemPlugin struct{}

func (p *systemPlugin) Name() string { return "System" }

func (p *systemPlugin) Register(_ *plugin.Context) ([]schema.Tool, error) {
	return []schema.Tool{
		newSysStatsTool(),
		newIPAddressTool(),
		newDatetimeTool(),
	}, nil
}

// ─── get_system_stats ──────────────────────────────────────────────────────

func newSysStatsTool() schema.Tool {
	return NewFuncTool(
		"get_system_stats",
		"Report CPU, memory, disk usage, and uptime of the host machine.",
		json.RawMessage(`{"type": "object", "properties": {}}`),
		sysStats,
	)
}

func sysStats(ctx context.Context, _ map[string]any) (string, error) {
	var sb strings.Builder

	if pct, err := cpu.PercentWithContext(ctx, time.Second, false); err == nil && len(pct) > 0 {
		fmt.Fprintf(&sb, "CPU: %.1f%%\n", pct[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "Memory: %.1f%% (%.1f GB / %.1f GB)\n",
			vm.UsedPercent, gb(vm.Used), gb(vm.Total))
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		fmt.Fprintf(&sb, "Disk: %.1f%% (%.1f GB / %.1f GB)\n",
			du.UsedPercent, gb(du.Used), gb(du.Total))
	}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "Uptime: %s\n", (time.Duration(up) * time.Second).String())
	}

	if sb.Len() == 0 {
		return "Error: could not read system stats", nil
	}
	return strings.TrimSpace(sb.String()), nil
}

func gb(bytes uint64) float64 { return float64(bytes) / (1 << 30) }

// ─── get_ip_address ────────────────────────────────────────────────────────

func newIPAddressTool() schema.Tool {
	client := &http.Client{Timeout: 10 * time.Second}
	return NewFuncTool(
		"get_ip_address",
		"Look up the machine's public IP address.",
		json.RawMessage(`{"type": "object", "properties": {}}`),
		func(ctx context.Context, _ map[string]any) (string, error) {
			ip, err := httpGetString(ctx, client, ipLookupEndpoint)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return "Public IP: " + ip, nil
		},
	)
}

// ─── get_current_datetime ──────────────────────────────────────────────────

func newDatetimeTool() schema.Tool {
	return NewFuncTool(
		"get_current_datetime",
		"Get the current local date and time.",
		json.RawMessage(`{"type": "object", "properties": {}}`),
		func(_ context.Context, _ map[string]any) (string, error) {
			return time.Now().Format("Monday, 2 January 2006 15:04:05 MST"), nil
		},
	)
}

// httpGetString GETs url and returns the trimmed response body.
func httpGetString(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
