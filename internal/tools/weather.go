package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/schema"
)

const wttrEndpoint = "https://wttr.in"

func init() {
	plugin.RegisterFactory("weather", func() (plugin.Plugin, error) {
		return &weatherPlugin{}, nil
	})
}

// weatherPlugin contributes get_weather and get_temperature, both backed by
// the wttr.in one-line format.
type weatherPlugin struct{}

func (p *weatherPlugin) Name() string { return "Weather" }

func (p *weatherPlugin) Register(_ *plugin.Context) ([]schema.Tool, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	return []schema.Tool{
		newWeatherTool(client),
		newTemperatureTool(client),
	}, nil
}

func newWeatherTool(client *http.Client) schema.Tool {
	return NewFuncTool(
		"get_weather",
		"Get the current weather for a location.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"location": {"type": "string", "description": "City name, e.g. 'Hanoi'"}
			},
			"required": ["location"]
		}`),
		func(ctx context.Context, params map[string]any) (string, error) {
			location := stringParam(params, "location")
			if location == "" {
				return "Error: location is required", nil
			}
			// format=3 yields "Hanoi: ⛅️ +31°C" on a single line.
			report, err := wttr(ctx, client, location, "3")
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return report, nil
		},
	)
}

func newTemperatureTool(client *http.Client) schema.Tool {
	return NewFuncTool(
		"get_temperature",
		"Get the current temperature for a location.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"location": {"type": "string", "description": "City name, e.g. 'Hanoi'"}
			},
			"required": ["location"]
		}`),
		func(ctx context.Context, params map[string]any) (string, error) {
			location := stringParam(params, "location")
			if location == "" {
				return "Error: location is required", nil
			}
			temp, err := wttr(ctx, client, location, "%t")
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return fmt.Sprintf("Temperature in %s: %s", location, temp), nil
		},
	)
}

func wttr(ctx context.Context, client *http.Client, location, format string) (string, error) {
	u := fmt.Sprintf("%s/%s?format=%s", wttrEndpoint, url.PathEscape(location), url.QueryEscape(format))
	return httpGetString(ctx, client, u)
}
