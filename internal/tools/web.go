package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/iris-assistant/iris/internal/plugin"
	"github.com/iris-assistant/iris/internal/schema"
)

const (
	braveSearchEndpoint = "https://api.search.brave.com/res/v1/web/search"
	webUserAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36"
)

func init() {
	plugin.RegisterFactory("web", func() (plugin.Plugin, error) {
		return &webPlugin{}, nil
	})
}

// webPlugin contributes web_search, web_fetch, and research.
type webPlugin struct{}

func (p *webPlugin) Name() string { return "Web" }

func (p *webPlugin) Register(ctx *plugin.Context) ([]schema.Tool, error) {
	section := ctx.ConfigSection("tools")

	search := newWebSearchTool(
		sectionString(section, "braveApiKey"),
		sectionInt(section, "maxSearchResults", 5),
	)
	fetch := newWebFetchTool(0)
	if search.apiKey == "" {
		ctx.Warning("braveApiKey not set; web_search and research will return an error when called")
	}

	return []schema.Tool{search, fetch, newResearchTool(search, fetch)}, nil
}

// ─── web_search ────────────────────────────────────────────────────────────

// webSearchTool queries the Brave Search API.
type webSearchTool struct {
	apiKey     string
	maxResults int
	endpoint   string
	httpClient *http.Client
}

func newWebSearchTool(apiKey string, maxResults int) *webSearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &webSearchTool{
		apiKey:     apiKey,
		maxResults: maxResults,
		endpoint:   braveSearchEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *webSearchTool) Name() string { return "web_search" }
func (t *webSearchTool) Description() string {
	return "Search the web. Returns titles, URLs, and snippets."
}
func (t *webSearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Search query"},
			"count": {"type": "integer", "description": "Results (1-10)", "minimum": 1, "maximum": 10}
		},
		"required": ["query"]
	}`)
}

func (t *webSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringParam(params, "query")
	if query == "" {
		return "Error: query is required", nil
	}
	results, err := t.search(ctx, query, intParam(params, "count", t.maxResults))
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results for: %s", query), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Results for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s", i+1, r.Title, r.URL)
		if r.Description != "" {
			sb.WriteString("\n   " + r.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

type searchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (t *webSearchTool) search(ctx context.Context, query string, count int) ([]searchResult, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("braveApiKey not configured")
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", count))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var data struct {
		Web struct {
			Results []searchResult `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(data.Web.Results) > count {
		data.Web.Results = data.Web.Results[:count]
	}
	return data.Web.Results, nil
}

// ─── web_fetch ─────────────────────────────────────────────────────────────

// webFetchTool fetches a URL and extracts its readable content.
type webFetchTool struct {
	maxChars   int
	httpClient *http.Client
}

func newWebFetchTool(maxChars int) *webFetchTool {
	if maxChars <= 0 {
		maxChars = 50000
	}
	return &webFetchTool{
		maxChars:   maxChars,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *webFetchTool) Name() string { return "web_fetch" }
func (t *webFetchTool) Description() string {
	return "Fetch a URL and extract its readable text content."
}
func (t *webFetchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "URL to fetch"},
			"max_chars": {"type": "integer", "minimum": 100}
		},
		"required": ["url"]
	}`)
}

func (t *webFetchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawURL := stringParam(params, "url")
	if rawURL == "" {
		return "Error: url is required", nil
	}
	if err := validateURL(rawURL); err != nil {
		return fmt.Sprintf("Error: invalid URL: %v", err), nil
	}

	maxChars := intParam(params, "max_chars", t.maxChars)
	text, err := t.fetch(ctx, rawURL, maxChars)
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", rawURL, err), nil
	}
	return text, nil
}

// fetch returns the page's readable text, title first when one is found.
func (t *webFetchTool) fetch(ctx context.Context, rawURL string, maxChars int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	var text string
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") || isHTMLPrefix(body) {
		parsedURL, _ := url.Parse(rawURL)
		article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
		if err == nil {
			text = stripHTMLTags(article.Content)
			if article.Title != "" {
				text = article.Title + "\n\n" + text
			}
		} else {
			text = stripHTMLTags(string(body))
		}
	} else {
		text = string(body)
	}

	if len(text) > maxChars {
		text = text[:maxChars] + "\n... (truncated)"
	}
	return text, nil
}

// ─── research ──────────────────────────────────────────────────────────────

// researchTool searches for a topic and returns the extracted content of the
// top results in one response, so the model can synthesise an answer from
// multiple sources in a single tool round trip.
type researchTool struct {
	search *webSearchTool
	fetch  *webFetchTool
}

func newResearchTool(search *webSearchTool, fetch *webFetchTool) *researchTool {
	return &researchTool{search: search, fetch: fetch}
}

func (t *researchTool) Name() string { return "research" }
func (t *researchTool) Description() string {
	return "Search the web for a topic and return the readable content of the top results."
}
func (t *researchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"topic": {"type": "string", "description": "Topic to research"},
			"sources": {"type": "integer", "description": "Pages to read (1-3)", "minimum": 1, "maximum": 3}
		},
		"required": ["topic"]
	}`)
}

func (t *researchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	topic := stringParam(params, "topic")
	if topic == "" {
		return "Error: topic is required", nil
	}
	sources := intParam(params, "sources", 2)
	if sources < 1 {
		sources = 1
	}
	if sources > 3 {
		sources = 3
	}

	results, err := t.search.search(ctx, topic, sources)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results for: %s", topic), nil
	}

	const perSourceChars = 8000
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research on: %s\n", topic)
	for i, r := range results {
		fmt.Fprintf(&sb, "\n── Source %d: %s (%s) ──\n", i+1, r.Title, r.URL)
		text, err := t.fetch.fetch(ctx, r.URL, perSourceChars)
		if err != nil {
			fmt.Fprintf(&sb, "(unreadable: %v)\n", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ─── helpers ───────────────────────────────────────────────────────────────

// validateURL checks that rawURL is http(s) with a host.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only http/https allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing domain in URL")
	}
	return nil
}

func isHTMLPrefix(b []byte) bool {
	n := len(b)
	if n > 256 {
		n = 256
	}
	prefix := strings.ToLower(strings.TrimSpace(string(b[:n])))
	return strings.HasPrefix(prefix, "<!doctype") || strings.HasPrefix(prefix, "<html")
}

var (
	reScript   = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	reStyle    = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	reTags     = regexp.MustCompile(`<[^>]+>`)
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripHTMLTags removes all HTML tags and normalizes whitespace.
func stripHTMLTags(text string) string {
	text = reScript.ReplaceAllString(text, "")
	text = reStyle.ReplaceAllString(text, "")
	text = reTags.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
