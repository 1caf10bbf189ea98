// Package mcp exposes Vesper's skill intents as MCP tools, so external
// agents can drive the assistant over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vesperhq/vesper/internal/skills"
)

// Dispatcher runs an already-resolved intent.
type Dispatcher interface {
	HandleIntent(ctx context.Context, intent string, slots map[string]any) skills.Reply
}

// NewServer creates an MCP server with one tool per enabled skill intent.
// Tool names use underscores ("time_get" for intent "time.get") because
// MCP tool names cannot contain dots.
func NewServer(registry *skills.Registry, dispatcher Dispatcher) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "vesper",
		Version: "0.1.0",
	}, nil)

	seen := make(map[string]struct{})
	for _, skill := range registry.EnabledSkills() {
		for _, intent := range skill.Intents() {
			// First-enabled-match dispatch: a duplicate intent would hit
			// the same skill anyway, so register each intent once.
			if _, dup := seen[intent]; dup {
				continue
			}
			seen[intent] = struct{}{}

			tool := intentToTool(intent, skill.Description())
			boundIntent := intent

			server.AddTool(tool, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
				var args struct {
					Slots map[string]any `json:"slots"`
				}
				if len(req.Params.Arguments) > 0 {
					if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
						return &mcpsdk.CallToolResult{
							IsError: true,
							Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "invalid arguments: " + err.Error()}},
						}, nil
					}
				}

				reply := dispatcher.HandleIntent(ctx, boundIntent, args.Slots)
				out, err := json.Marshal(reply)
				if err != nil {
					return nil, err
				}
				return &mcpsdk.CallToolResult{
					IsError: !reply.OK,
					Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(out)}},
				}, nil
			})

			slog.Debug("mcp tool registered", "intent", intent)
		}
	}

	return server
}

// intentToTool builds the MCP tool descriptor for one intent.
func intentToTool(intent, description string) *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        ToolName(intent),
		Description: description + " (intent: " + intent + ")",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"slots": map[string]any{
					"type":        "object",
					"description": "Slot values for the intent, e.g. {\"minutes\": 5}",
				},
			},
		},
	}
}

// ToolName maps an intent name to a valid MCP tool name.
func ToolName(intent string) string {
	return strings.ReplaceAll(intent, ".", "_")
}
