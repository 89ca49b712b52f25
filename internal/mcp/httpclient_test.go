package mcp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/rutinify/internal/importer"
	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/server"
	"github.com/claude/rutinify/internal/storage"
	"github.com/claude/rutinify/internal/tracker"
)

// newRESTServer serves the real REST API over a tracker holding the
// routine "Mi Rutina" and one week-1 session of day 1.
func newRESTServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr := tracker.New(storage.NewMemory(), log)

	routine, _, err := importer.ToRoutine("Mi Rutina", strings.NewReader(routineCSV))
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoutine(ctx, routine); err != nil {
		t.Fatal(err)
	}
	_, err = tr.AddWorkoutSession(ctx, models.WorkoutSession{
		RoutineName:  "Mi Rutina",
		DayCompleted: 1,
		Week:         1,
		CompletedExercises: []models.CompletedExercise{
			{ExerciseID: "1-A-squat", Sets: []models.CompletedSet{{Set: 1, Weight: ptrF(40), Reps: ptrI(12)}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.SetCurrentWeek(ctx, 2); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(server.New(tr, log))
	t.Cleanup(ts.Close)
	return ts
}

// TestHTTPClientRoutines verifies routine listing and lookup by a name
// that needs path escaping.
func TestHTTPClientRoutines(t *testing.T) {
	client := NewHTTPClient(newRESTServer(t).URL + "/")
	ctx := context.Background()

	routines, err := client.ListRoutines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(routines) != 1 || routines[0].Name != "Mi Rutina" {
		t.Fatalf("routines = %+v", routines)
	}

	r, found, err := client.GetRoutine(ctx, "Mi Rutina")
	if err != nil || !found {
		t.Fatalf("GetRoutine: found=%v err=%v", found, err)
	}
	if len(r.Days) != 2 {
		t.Errorf("days = %d, want 2", len(r.Days))
	}

	_, found, err = client.GetRoutine(ctx, "Nope")
	if err != nil || found {
		t.Errorf("missing routine: found=%v err=%v", found, err)
	}
}

// TestHTTPClientLookups verifies history, exercise lookups and week
// settings over the REST API.
func TestHTTPClientLookups(t *testing.T) {
	client := NewHTTPClient(newRESTServer(t).URL)
	ctx := context.Background()

	sessions, err := client.GetHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID == "" {
		t.Errorf("sessions = %+v", sessions)
	}

	ce, found, err := client.GetLatestExercise(ctx, "1-A-squat")
	if err != nil || !found || *ce.Sets[0].Weight != 40 {
		t.Errorf("latest: %+v found=%v err=%v", ce, found, err)
	}
	_, found, err = client.GetLatestExercise(ctx, "unknown")
	if err != nil || found {
		t.Errorf("latest unknown: found=%v err=%v", found, err)
	}

	ce, found, err = client.GetPreviousWeekExercise(ctx, "1-A-squat", 2, "Mi Rutina", 1)
	if err != nil || !found || *ce.Sets[0].Reps != 12 {
		t.Errorf("previous: %+v found=%v err=%v", ce, found, err)
	}
	_, found, err = client.GetPreviousWeekExercise(ctx, "1-A-squat", 2, "Mi Rutina", 2)
	if err != nil || found {
		t.Errorf("previous other day: found=%v err=%v", found, err)
	}

	ws, err := client.GetWeekSettings(ctx)
	if err != nil || ws.CurrentWeek != 2 {
		t.Errorf("week settings = %+v err=%v", ws, err)
	}
}

// TestHTTPClientErrorStatus verifies that non-200 responses surface as
// errors carrying the status.
func TestHTTPClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).ListRoutines(context.Background())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("err = %v, want status 500", err)
	}
}
