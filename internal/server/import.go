package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/claude/rutinify/internal/importer"
	"github.com/claude/rutinify/internal/tracker"
)

// maxImportBytes bounds the size of an uploaded routine CSV.
const maxImportBytes = 1 << 20

// handleImport converts a text/csv body into a routine named by ?name=.
// With ?dry_run=true the file is only validated. Validation failures
// answer 422 with every problem found.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"

	imp := importer.New(s.tracker, s.log, dryRun)
	stats, err := imp.Import(r.Context(), name, http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrDuplicateRoutine):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case len(stats.Problems) > 0:
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    err.Error(),
				"problems": stats.Problems,
			})
		default:
			s.writeError(w, err)
		}
		return
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}
	writeJSON(w, status, stats)
}
