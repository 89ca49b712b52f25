package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Rutinify", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Rutinify workout tracker. Read routines (days, supersets, exercises, planned sets), the log of completed sessions, and what was lifted last time or in the previous week. Read-only."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
		server.ServerTool{Tool: toolGetRoutineDay, Handler: h.getRoutineDay},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetLatestExercise, Handler: h.getLatestExercise},
		server.ServerTool{Tool: toolGetPreviousWeekExercise, Handler: h.getPreviousWeekExercise},
		server.ServerTool{Tool: toolGetLastPerformance, Handler: h.getLastPerformance},
		server.ServerTool{Tool: toolGetWeekSettings, Handler: h.getWeekSettings},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRoutines, Handler: h.routines},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resWeekSettings, Handler: h.weekSettings},
	)

	return s
}

// HTTPHandler exposes s over the streamable HTTP transport, for mounting
// on the REST server.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRoutines = mcp.NewResource(
	"rutinify://routines",
	"Routines",
	mcp.WithResourceDescription("Every stored routine with its days, supersets and exercises"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"rutinify://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The last 10 completed workout sessions, newest first"),
	mcp.WithMIMEType("application/json"),
)

var resWeekSettings = mcp.NewResource(
	"rutinify://week_settings",
	"Week Settings",
	mcp.WithResourceDescription("The training week currently selected"),
	mcp.WithMIMEType("application/json"),
)
