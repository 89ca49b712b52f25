package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/rutinify/internal/history"
	"github.com/claude/rutinify/internal/models"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.History())
}

// sessionRequest is the raw input of a finished workout. Values are the
// strings typed by the user, parsed when the session is finalized.
type sessionRequest struct {
	RoutineName string `json:"routineName"`
	Day         int    `json:"day"`
	Exercises   []struct {
		ExerciseID string             `json:"exerciseId"`
		Sets       []history.SetInput `json:"sets"`
		Notes      string             `json:"notes"`
	} `json:"exercises"`
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	d := history.NewDraft()
	for _, ex := range req.Exercises {
		if ex.ExerciseID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exerciseId is required"})
			return
		}
		for i, set := range ex.Sets {
			d.SetWeight(ex.ExerciseID, i, set.Weight)
			d.SetReps(ex.ExerciseID, i, set.Reps)
		}
		if ex.Notes != "" {
			d.SetNotes(ex.ExerciseID, ex.Notes)
		}
	}

	session, err := s.tracker.FinishWorkout(r.Context(), req.RoutineName, req.Day, d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLatestExercise(w http.ResponseWriter, r *http.Request) {
	ce, found := s.tracker.LatestExerciseData(chi.URLParam(r, "id"))
	resp := map[string]any{"found": found}
	if found {
		resp["exercise"] = ce
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreviousWeekExercise answers ?routine=&day=&week= with the entry
// from week-1. week defaults to the current week.
func (s *Server) handlePreviousWeekExercise(w http.ResponseWriter, r *http.Request) {
	routine := r.URL.Query().Get("routine")
	day, err := intQuery(r, "day", 0)
	if err != nil || routine == "" || day == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "routine and day parameters required"})
		return
	}
	week, err := intQuery(r, "week", s.tracker.WeekSettings().CurrentWeek)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ce, found := s.tracker.PreviousWeekExerciseData(chi.URLParam(r, "id"), week, routine, day)
	resp := map[string]any{"found": found, "week": week - 1}
	if found {
		resp["exercise"] = ce
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExerciseDisplay renders the "last time" line for each of ?sets=N
// planned sets, preferring the previous week.
func (s *Server) handleExerciseDisplay(w http.ResponseWriter, r *http.Request) {
	routine := r.URL.Query().Get("routine")
	day, err := intQuery(r, "day", 0)
	if err != nil || routine == "" || day == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "routine and day parameters required"})
		return
	}
	n, err := intQuery(r, "sets", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if n > models.MaxSeries {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("sets must be at most %d", models.MaxSeries)})
		return
	}

	lookup, found := s.tracker.PreviousPerformance(chi.URLParam(r, "id"), routine, day)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = history.FormatSet(lookup, i)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"found":  found,
		"lookup": lookup,
		"sets":   lines,
	})
}
