package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/rutinify/internal/models"
)

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.WeekSettings())
}

func (s *Server) handleSetWeek(w http.ResponseWriter, r *http.Request) {
	var body models.WeekSettings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.tracker.SetCurrentWeek(r.Context(), body.CurrentWeek); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.WeekSettings())
}
