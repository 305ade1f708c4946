package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common list workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("prioritize").
		Description("Walk through the task list and put the most important tasks first.").
		Argument("goal", "What the list should be ordered for, e.g. \"this afternoon\"", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			goal := args["goal"]
			if goal == "" {
				goal = "today"
			}
			return &mcp.PromptResult{
				Description: "Prioritize the task list",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Help me order my task list for %s.

1. Call tasks.list, then tasks.next_page until is_last is true.
2. Suggest an order with the most important tasks first and explain it briefly.
3. After I agree, apply it with a single tasks.reorder call listing every id.
4. Mark anything I say is already done with tasks.toggle.`, goal),
						},
					},
				},
			}, nil
		})

	return nil
}
