package skills

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/tool"

	"github.com/cloudwego/eino-ext/components/tool/bingsearch"
	duckduckgo "github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"

	"github.com/vesperhq/vesper/internal/config"
)

// newSearchTool builds the provider-specific search tool. Supported
// providers: "duckduckgo" (default, keyless), "google", "bing".
func newSearchTool(ctx context.Context, cfg config.WebConfig) (tool.InvokableTool, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "duckduckgo"
	}
	switch provider {
	case "duckduckgo":
		return newDuckDuckGoTool(ctx, cfg)
	case "google":
		return newGoogleTool(ctx, cfg)
	case "bing":
		return newBingTool(ctx, cfg)
	}
	return nil, fmt.Errorf("web search: unknown provider %q", provider)
}

func newDuckDuckGoTool(ctx context.Context, cfg config.WebConfig) (tool.InvokableTool, error) {
	slog.Info("web search using DuckDuckGo provider")

	ddCfg := &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web using DuckDuckGo. Returns titles, URLs, and summaries.",
		MaxResults: cfg.MaxResults,
	}
	if ddCfg.MaxResults <= 0 {
		ddCfg.MaxResults = 5
	}
	if d := parseTimeout(cfg.Timeout); d > 0 {
		ddCfg.Timeout = d
	}
	return duckduckgo.NewTextSearchTool(ctx, ddCfg)
}

func newGoogleTool(ctx context.Context, cfg config.WebConfig) (tool.InvokableTool, error) {
	if cfg.GoogleAPIKey == "" || cfg.GoogleCX == "" {
		return nil, fmt.Errorf("google provider requires google_api_key and google_cx")
	}
	slog.Info("web search using Google provider")

	num := cfg.MaxResults
	if num <= 0 {
		num = 5
	}
	return googlesearch.NewTool(ctx, &googlesearch.Config{
		APIKey:         cfg.GoogleAPIKey,
		SearchEngineID: cfg.GoogleCX,
		Num:            num,
		ToolName:       "web_search",
		ToolDesc:       "Search the web using Google. Returns titles, URLs, and snippets.",
	})
}

func newBingTool(ctx context.Context, cfg config.WebConfig) (tool.InvokableTool, error) {
	if cfg.BingAPIKey == "" {
		return nil, fmt.Errorf("bing provider requires bing_api_key")
	}
	slog.Info("web search using Bing provider")

	bingCfg := &bingsearch.Config{
		APIKey:     cfg.BingAPIKey,
		MaxResults: cfg.MaxResults,
		ToolName:   "web_search",
		ToolDesc:   "Search the web using Bing. Returns titles, URLs, and descriptions.",
	}
	if bingCfg.MaxResults <= 0 {
		bingCfg.MaxResults = 5
	}
	if d := parseTimeout(cfg.Timeout); d > 0 {
		bingCfg.Timeout = d
	}
	return bingsearch.NewTool(ctx, bingCfg)
}

func parseTimeout(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
