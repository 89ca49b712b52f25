package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/storage"
	"github.com/claude/rutinify/internal/tracker"
)

const routineCSV = "Día,Superserie,Ejercicio,Series,Reps,Tempo,Semana 1,Semana 2,Semana 3,Semana 4,Notas\n" +
	"1,A1,Squat,3,10,2010,,,,,\n" +
	"1,A2,Lunge,3,12,2010,,,,,\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr := tracker.New(storage.NewMemory(), log)
	if err := tr.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(tr, log)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

// TestRoutineLifecycle verifies create, duplicate, read and delete over HTTP.
func TestRoutineLifecycle(t *testing.T) {
	s := newTestServer(t)

	if rec := do(t, s, http.MethodPost, "/api/v1/routines", `{"name":"PPL"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/routines", `{"name":"PPL"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/routines", `{"name":`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/routines", "")
	var list []models.Routine
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Name != "PPL" {
		t.Errorf("list = %+v", list)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/routines/Nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing routine status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/routines/PPL", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/routines/PPL", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

// TestDayEndpoints verifies upsert, rename, edit draft and delete of days,
// including names that need escaping.
func TestDayEndpoints(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/routines", `{"name":"Mi Rutina"}`)
	base := "/api/v1/routines/Mi%20Rutina/days"

	day := `{"supersets":[{"id":"A","exercises":[{"id":"sq","name":"Squat","type":"reps",` +
		`"sets":[{"id":"s1","type":"reps","weight":0,"reps":10}],"tempo":"2010","supersetCode":"A1"}]}]}`
	rec := do(t, s, http.MethodPut, base+"/2", day)
	if rec.Code != http.StatusOK {
		t.Fatalf("put day status = %d, body %s", rec.Code, rec.Body)
	}
	var routine models.Routine
	decode(t, rec, &routine)
	if len(routine.Days) != 1 || routine.Days[0].Day != 2 {
		t.Errorf("routine = %+v", routine)
	}

	if rec := do(t, s, http.MethodPut, base+"/3", `{"day":4}`); rec.Code != http.StatusBadRequest {
		t.Errorf("mismatch status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, base+"/x", day); rec.Code != http.StatusBadRequest {
		t.Errorf("bad day status = %d, want 400", rec.Code)
	}

	if rec := do(t, s, http.MethodPut, base+"/2/name", `{"dayName":"Pierna"}`); rec.Code != http.StatusNoContent {
		t.Errorf("rename status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, base+"/2/edit", "")
	var draft models.WorkoutDay
	decode(t, rec, &draft)
	if draft.DayName != "Pierna" || len(draft.Supersets) != 1 {
		t.Errorf("draft = %+v", draft)
	}

	rec = do(t, s, http.MethodGet, base+"/5/edit", "")
	var empty models.WorkoutDay
	decode(t, rec, &empty)
	if empty.Day != 5 || len(empty.Supersets) != 0 {
		t.Errorf("empty draft = %+v", empty)
	}

	if rec := do(t, s, http.MethodDelete, base+"/2", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete day status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, base+"/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete day status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/routines/Mi%20Rutina", ""); rec.Code != http.StatusOK {
		t.Errorf("routine without days status = %d, want 200", rec.Code)
	}
}

// TestImportEndpoint verifies the CSV import, dry run and problem list.
func TestImportEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/import?name=PPL&dry_run=true", routineCSV)
	if rec.Code != http.StatusOK {
		t.Fatalf("dry run status = %d, body %s", rec.Code, rec.Body)
	}
	if list := s.tracker.Routines(); len(list) != 0 {
		t.Errorf("dry run stored %d routines", len(list))
	}

	rec = do(t, s, http.MethodPost, "/api/v1/import?name=PPL", routineCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body)
	}
	var stats struct {
		Exercises int
		Sets      int
	}
	decode(t, rec, &stats)
	if stats.Exercises != 2 || stats.Sets != 6 {
		t.Errorf("stats = %+v", stats)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/import?name=PPL", routineCSV); rec.Code != http.StatusConflict {
		t.Errorf("duplicate import status = %d, want 409", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/import", routineCSV); rec.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", rec.Code)
	}

	bad := "Día,Superserie,Ejercicio,Series,Reps,Tempo,Semana 1,Semana 2,Semana 3,Semana 4,Notas\n" +
		"8,A1,Squat,3,10,,,,,,\n" +
		"1,a,Lunge,3,10,,,,,,\n"
	rec = do(t, s, http.MethodPost, "/api/v1/import?name=Bad", bad)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid import status = %d, want 422", rec.Code)
	}
	var body struct {
		Problems []struct {
			Row   int
			Field string
		}
	}
	decode(t, rec, &body)
	if len(body.Problems) != 2 || body.Problems[0].Row != 2 || body.Problems[1].Field != "Superserie" {
		t.Errorf("problems = %+v", body.Problems)
	}
	if _, ok := s.tracker.Routine("Bad"); ok {
		t.Error("invalid file was partially imported")
	}
}

// TestSessionAndLookups verifies finishing a workout and the exercise
// lookup endpoints.
func TestSessionAndLookups(t *testing.T) {
	s := newTestServer(t)

	if rec := do(t, s, http.MethodGet, "/api/v1/exercises/sq/latest", ""); !strings.Contains(rec.Body.String(), `"found":false`) {
		t.Errorf("latest before session = %s", rec.Body)
	}

	session := `{"routineName":"PPL","day":1,"exercises":[{"exerciseId":"sq","sets":[{"weight":"60","reps":"10"},{"weight":"","reps":""}]}]}`
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", session)
	if rec.Code != http.StatusCreated {
		t.Fatalf("session status = %d, body %s", rec.Code, rec.Body)
	}
	var saved models.WorkoutSession
	decode(t, rec, &saved)
	if saved.Week != 1 || len(saved.CompletedExercises[0].Sets) != 1 {
		t.Errorf("saved = %+v", saved)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/settings/week", `{"currentWeek":2}`); rec.Code != http.StatusOK {
		t.Fatalf("set week status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/settings/week", `{"currentWeek":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("week 0 status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/sq/display?routine=PPL&day=1&sets=2", "")
	var display struct {
		Found bool
		Sets  []string
	}
	decode(t, rec, &display)
	if !display.Found || len(display.Sets) != 2 {
		t.Fatalf("display = %+v", display)
	}
	if display.Sets[0] != "60 kg x 10 reps (week 1)" || display.Sets[1] != "-- kg x -- reps" {
		t.Errorf("display sets = %q", display.Sets)
	}
	for _, sets := range []string{"0", "101", "1000000000000"} {
		if rec := do(t, s, http.MethodGet, "/api/v1/exercises/sq/display?routine=PPL&day=1&sets="+sets, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("display sets=%s status = %d, want 400", sets, rec.Code)
		}
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/sq/previous?routine=PPL&day=1", "")
	if !strings.Contains(rec.Body.String(), `"found":true`) {
		t.Errorf("previous = %s", rec.Body)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/exercises/sq/previous?routine=PPL&day=1&week=1", "")
	if !strings.Contains(rec.Body.String(), `"found":false`) {
		t.Errorf("previous at week 1 = %s", rec.Body)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/exercises/sq/previous", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing params status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history", "")
	var hist []models.WorkoutSession
	decode(t, rec, &hist)
	if len(hist) != 1 {
		t.Errorf("history = %d sessions", len(hist))
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/sessions", `{"routineName":"","day":1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid session status = %d, want 400", rec.Code)
	}
}
