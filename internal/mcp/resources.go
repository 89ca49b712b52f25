package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// recentSessionCount bounds the recent_sessions resource.
const recentSessionCount = 10

func (h *handlers) routines(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	routines, err := h.ds.ListRoutines(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, routines)
}

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, newestFirst(sessions, "", recentSessionCount))
}

func (h *handlers) weekSettings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ws, err := h.ds.GetWeekSettings(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, ws)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
