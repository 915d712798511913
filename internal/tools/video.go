package tools

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/schema"
)

// videoIDPatterns match the common YouTube URL shapes: watch, shorts,
// youtu.be, and embed links.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/shorts/|youtu\.be/|/embed/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
}

func init() {
	plugin.RegisterFactory("video", func() (plugin.Plugin, error) {
		return &videoPlugin{}, nil
	})
}

// videoPlugin contributes extract_video_id.
type videoPlugin struct{}

func (p *videoPlugin) Name() string { return "Video" }

func (p *videoPlugin) Register(_ *plugin.Context) ([]schema.Tool, error) {
	return []schema.Tool{
		NewFuncTool(
			"extract_video_id",
			"Extract the video ID from a YouTube URL.",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"url": {"type": "string", "description": "YouTube URL or bare video ID"}
				},
				"required": ["url"]
			}`),
			func(_ context.Context, params map[string]any) (string, error) {
				rawURL := stringParam(params, "url")
				if rawURL == "" {
					return "Error: url is required", nil
				}
				if id := ExtractVideoID(rawURL); id != "" {
					return id, nil
				}
				return "Error: no video ID found in URL", nil
			},
		),
	}, nil
}

// ExtractVideoID returns the 11-character YouTube video ID embedded in raw,
// or "" when none is present.
func ExtractVideoID(raw string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}
