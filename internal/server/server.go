package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/rutinify/internal/tracker"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(t *tracker.Tracker, log *slog.Logger) *Server {
	s := &Server{
		tracker: t,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/routines", s.handleListRoutines)
		r.Post("/routines", s.handleAddRoutine)
		r.Get("/routines/{name}", s.handleGetRoutine)
		r.Put("/routines/{name}", s.handleUpdateRoutine)
		r.Delete("/routines/{name}", s.handleDeleteRoutine)

		r.Get("/routines/{name}/days/{day}/edit", s.handleEditDay)
		r.Put("/routines/{name}/days/{day}", s.handleUpdateDay)
		r.Delete("/routines/{name}/days/{day}", s.handleDeleteDay)
		r.Put("/routines/{name}/days/{day}/name", s.handleUpdateDayName)

		r.Post("/import", s.handleImport)

		r.Get("/history", s.handleHistory)
		r.Post("/sessions", s.handleFinishSession)
		r.Get("/exercises/{id}/latest", s.handleLatestExercise)
		r.Get("/exercises/{id}/previous", s.handlePreviousWeekExercise)
		r.Get("/exercises/{id}/display", s.handleExerciseDisplay)

		r.Get("/settings/week", s.handleGetWeek)
		r.Put("/settings/week", s.handleSetWeek)
	})
}

// SetMCP mounts an MCP handler (streamable HTTP) at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}
