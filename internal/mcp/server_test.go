package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/rutinify/internal/importer"
	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/storage"
	"github.com/claude/rutinify/internal/tracker"
)

const routineCSV = "Día,Superserie,Ejercicio,Series,Reps,Tempo,Semana 1,Semana 2,Semana 3,Semana 4,Notas\n" +
	"1,A1,Squat,2,10,2010,,,,,\n" +
	"2,A1,Press,3,8,,,,,,\n"

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

// newTestHandlers returns handlers over a tracker holding one routine and
// two sessions of day 1, in weeks 1 and 2.
func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	tr := tracker.New(storage.NewMemory(), log, tracker.WithClock(func() time.Time { return now }))

	routine, _, err := importer.ToRoutine("PPL", strings.NewReader(routineCSV))
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoutine(ctx, routine); err != nil {
		t.Fatal(err)
	}
	sessions := []models.WorkoutSession{
		{RoutineName: "PPL", DayCompleted: 1, Week: 1, CompletedExercises: []models.CompletedExercise{
			{ExerciseID: "1-A-squat", Sets: []models.CompletedSet{{Set: 1, Weight: ptrF(50), Reps: ptrI(10)}}},
		}},
		{RoutineName: "PPL", DayCompleted: 1, Week: 2, CompletedExercises: []models.CompletedExercise{
			{ExerciseID: "1-A-squat", Sets: []models.CompletedSet{{Set: 1, Weight: ptrF(55), Reps: ptrI(8)}}},
		}},
	}
	for _, s := range sessions {
		if _, err := tr.AddWorkoutSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.SetCurrentWeek(ctx, 3); err != nil {
		t.Fatal(err)
	}
	return &handlers{ds: NewLocal(tr), log: log}
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("tool returned no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text, res.IsError
}

// TestListRoutinesTool verifies the routine list is returned as JSON.
func TestListRoutinesTool(t *testing.T) {
	h := newTestHandlers(t)
	text, isErr := callTool(t, h.listRoutines, nil)
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	var routines []models.Routine
	if err := json.Unmarshal([]byte(text), &routines); err != nil {
		t.Fatal(err)
	}
	if len(routines) != 1 || len(routines[0].Days) != 2 {
		t.Errorf("routines = %+v", routines)
	}
}

// TestGetRoutineDayTool verifies day lookup and its error results.
func TestGetRoutineDayTool(t *testing.T) {
	h := newTestHandlers(t)

	text, isErr := callTool(t, h.getRoutineDay, map[string]any{"routine": "PPL", "day": 2})
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	var day models.WorkoutDay
	if err := json.Unmarshal([]byte(text), &day); err != nil {
		t.Fatal(err)
	}
	if day.Day != 2 || len(day.Supersets) != 1 || len(day.Supersets[0].Exercises[0].Sets) != 3 {
		t.Errorf("day = %+v", day)
	}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing routine", map[string]any{"day": 1}},
		{"unknown routine", map[string]any{"routine": "Nope", "day": 1}},
		{"unknown day", map[string]any{"routine": "PPL", "day": 5}},
		{"bad day", map[string]any{"routine": "PPL", "day": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, isErr := callTool(t, h.getRoutineDay, tt.args); !isErr {
				t.Error("expected tool error")
			}
		})
	}
}

// TestGetHistoryTool verifies newest-first ordering and the limit.
func TestGetHistoryTool(t *testing.T) {
	h := newTestHandlers(t)
	text, _ := callTool(t, h.getHistory, map[string]any{"limit": 1})
	var sessions []models.WorkoutSession
	if err := json.Unmarshal([]byte(text), &sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Week != 2 {
		t.Errorf("sessions = %+v", sessions)
	}

	text, _ = callTool(t, h.getHistory, map[string]any{"routine": "Other"})
	if strings.TrimSpace(text) != "[]" {
		t.Errorf("filtered history = %s", text)
	}
}

// TestExerciseLookupTools verifies the latest and previous-week tools,
// including the default to the current week.
func TestExerciseLookupTools(t *testing.T) {
	h := newTestHandlers(t)

	var res struct {
		Found    bool
		Week     int
		Exercise models.CompletedExercise
	}
	text, _ := callTool(t, h.getLatestExercise, map[string]any{"exercise_id": "1-A-squat"})
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Found || *res.Exercise.Sets[0].Weight != 55 {
		t.Errorf("latest = %+v", res)
	}

	res.Found, res.Week = false, 0
	text, _ = callTool(t, h.getPreviousWeekExercise, map[string]any{"exercise_id": "1-A-squat", "routine": "PPL", "day": 1})
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Week != 2 || *res.Exercise.Sets[0].Reps != 8 {
		t.Errorf("previous (current week) = %+v", res)
	}

	text, _ = callTool(t, h.getPreviousWeekExercise, map[string]any{"exercise_id": "1-A-squat", "routine": "PPL", "day": 1, "week": 2})
	res = struct {
		Found    bool
		Week     int
		Exercise models.CompletedExercise
	}{}
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Found || *res.Exercise.Sets[0].Weight != 50 {
		t.Errorf("previous (week 2) = %+v", res)
	}

	if _, isErr := callTool(t, h.getPreviousWeekExercise, map[string]any{"exercise_id": "1-A-squat", "day": 1}); !isErr {
		t.Error("expected error without routine")
	}
}

// TestGetLastPerformanceTool verifies the rendered set lines.
func TestGetLastPerformanceTool(t *testing.T) {
	h := newTestHandlers(t)
	text, isErr := callTool(t, h.getLastPerformance, map[string]any{"exercise_id": "1-A-squat", "routine": "PPL", "day": 1, "sets": 2})
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	var res struct {
		Found bool
		Sets  []string
	}
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	want := []string{"55 kg x 8 reps (week 2)", "-- kg x -- reps"}
	if !res.Found || len(res.Sets) != 2 || res.Sets[0] != want[0] || res.Sets[1] != want[1] {
		t.Errorf("last performance = %+v, want sets %q", res, want)
	}
}

// TestRoutinesResource verifies the routines resource contents.
func TestRoutinesResource(t *testing.T) {
	h := newTestHandlers(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "rutinify://routines"

	contents, err := h.routines(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T", contents[0])
	}
	if text.URI != "rutinify://routines" || !strings.Contains(text.Text, `"name":"PPL"`) {
		t.Errorf("resource = %+v", text)
	}
}

// TestNewestFirst verifies ordering, routine filter and limit.
func TestNewestFirst(t *testing.T) {
	sessions := []models.WorkoutSession{
		{ID: "1", RoutineName: "A"},
		{ID: "2", RoutineName: "B"},
		{ID: "3", RoutineName: "A"},
	}
	tests := []struct {
		name    string
		routine string
		limit   int
		want    []string
	}{
		{"all", "", 0, []string{"3", "2", "1"}},
		{"limit", "", 2, []string{"3", "2"}},
		{"routine", "A", 0, []string{"3", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newestFirst(sessions, tt.routine, tt.limit)
			var ids []string
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

// TestNewRegistersServer verifies that the MCP server can be built.
func TestNewRegistersServer(t *testing.T) {
	h := newTestHandlers(t)
	if s := New(h.ds, "test", h.log); s == nil {
		t.Fatal("New returned nil")
	}
}

// TestGetLastPerformanceRejectsTooManySets verifies the upper bound on the
// number of rendered sets.
func TestGetLastPerformanceRejectsTooManySets(t *testing.T) {
	h := newTestHandlers(t)
	text, isErr := callTool(t, h.getLastPerformance, map[string]any{"exercise_id": "1-A-squat", "routine": "PPL", "day": 1, "sets": 1000000000000})
	if !isErr {
		t.Fatalf("expected tool error, got %s", text)
	}
	if !strings.Contains(text, "at most") {
		t.Errorf("error text = %q", text)
	}
}
