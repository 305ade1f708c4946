package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

const viewResourceURI = "ordo://tasks/view"

// RegisterResources registers MCP resources that expose the task view.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource(viewResourceURI).
		Name("Task view").
		Description("The tasks loaded so far, in list order").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := app.Ready(); err != nil {
				return nil, err
			}

			data, err := json.MarshalIndent(newViewResult(app.Synchronizer.Snapshot()), "", "  ")
			if err != nil {
				return nil, err
			}

			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})

	return nil
}
