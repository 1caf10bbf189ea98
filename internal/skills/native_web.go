package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cloudwego/eino/components/tool"

	"github.com/vesperhq/vesper/internal/config"
)

// WebSkill answers web.search intents through the configured search
// provider. The provider tool is built lazily on first use so a
// misconfigured provider fails the query, not startup.
type WebSkill struct {
	*Base
	cfg config.WebConfig

	once    sync.Once
	inner   tool.InvokableTool
	initErr error
}

// NewWebSkill returns a builder bound to the web search configuration.
func NewWebSkill(cfg config.WebConfig) Builder {
	return func(_ Host) (Skill, error) {
		return &WebSkill{
			Base: NewBase("WebSkill", "Searches the web via the configured provider", []string{"web.search"}),
			cfg:  cfg,
		}, nil
	}
}

type webSearchArgs struct {
	Query string `json:"query"`
}

func (s *WebSkill) Handle(ctx context.Context, intent string, slots map[string]any, host Host) bool {
	if intent != "web.search" {
		return false
	}
	query := slotString(slots, "query")
	if query == "" {
		host.Show(ErrorReply("What should I search for?"))
		return false
	}

	s.once.Do(func() { s.inner, s.initErr = newSearchTool(ctx, s.cfg) })
	if s.initErr != nil {
		slog.Error("web search provider unavailable", "provider", s.cfg.Provider, "error", s.initErr)
		host.Show(ErrorReply("Web search is not available right now."))
		return false
	}

	args, err := json.Marshal(webSearchArgs{Query: query})
	if err != nil {
		return false
	}
	raw, err := s.inner.InvokableRun(ctx, string(args))
	if err != nil {
		slog.Error("web search failed", "query", query, "error", err)
		host.Show(ErrorReply("The search failed."))
		return false
	}

	results := parseSearchResults(raw)
	if len(results) == 0 {
		host.Say(fmt.Sprintf("I found nothing for %q.", query))
		return true
	}
	host.Show(ListReply(fmt.Sprintf("Top result: %s", results[0].Title), results))
	return true
}

// SearchResult is one entry in the web.search list display.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// parseSearchResults extracts results from a provider's JSON output.
// Providers disagree on field names, so every known alias is tried; a
// payload that matches nothing yields an empty slice rather than an error.
func parseSearchResults(raw string) []SearchResult {
	var envelope struct {
		Results []map[string]any `json:"results"`
		Items   []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil
	}
	entries := envelope.Results
	if len(entries) == 0 {
		entries = envelope.Items
	}

	out := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		r := SearchResult{
			Title:   firstString(e, "title"),
			URL:     firstString(e, "url", "link"),
			Snippet: firstString(e, "summary", "snippet", "description", "desc"),
		}
		if r.Title == "" && r.URL == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

var _ Skill = (*WebSkill)(nil)
