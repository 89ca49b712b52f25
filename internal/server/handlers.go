package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/tracker"
)

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Routines())
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	name, ok := routineParam(w, r)
	if !ok {
		return
	}
	routine, found := s.tracker.Routine(name)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "routine not found"})
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleAddRoutine(w http.ResponseWriter, r *http.Request) {
	var routine models.Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if routine.Days == nil {
		routine.Days = []models.WorkoutDay{}
	}
	if err := s.tracker.AddRoutine(r.Context(), routine); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

// handleUpdateRoutine replaces a routine. The name in the path wins over the
// name in the body; an unknown name is a silent no-op.
func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	name, ok := routineParam(w, r)
	if !ok {
		return
	}
	var routine models.Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	routine.Name = name
	if err := s.tracker.UpdateRoutine(r.Context(), routine); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	name, ok := routineParam(w, r)
	if !ok {
		return
	}
	if err := s.tracker.DeleteRoutine(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditDay(w http.ResponseWriter, r *http.Request) {
	name, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	draft, err := s.tracker.EditDay(name, day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleUpdateDay(w http.ResponseWriter, r *http.Request) {
	name, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var body models.WorkoutDay
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.Supersets == nil {
		body.Supersets = []models.Superset{}
	}
	if err := s.tracker.UpdateWorkoutDay(r.Context(), name, day, body); err != nil {
		s.writeError(w, err)
		return
	}
	routine, _ := s.tracker.Routine(name)
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	name, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	if err := s.tracker.DeleteWorkoutDay(r.Context(), name, day); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateDayName(w http.ResponseWriter, r *http.Request) {
	name, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var body struct {
		DayName string `json:"dayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.tracker.UpdateDayName(r.Context(), name, day, body.DayName); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps tracker errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrRoutineNotFound), errors.Is(err, tracker.ErrDayNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrDuplicateRoutine):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrDayMismatch),
		errors.Is(err, tracker.ErrInvalid),
		errors.Is(err, tracker.ErrInvalidWeek):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// routineParam returns the unescaped {name} path parameter.
func routineParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid routine name"})
		return "", false
	}
	return name, true
}

func dayParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	name, ok := routineParam(w, r)
	if !ok {
		return "", 0, false
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day must be a positive number"})
		return "", 0, false
	}
	return name, day, true
}

// intQuery reads a positive integer query parameter, returning def when it
// is absent.
func intQuery(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errors.New(key + " must be a positive number")
	}
	return n, nil
}
