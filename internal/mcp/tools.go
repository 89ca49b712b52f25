package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/rutinify/internal/history"
	"github.com/claude/rutinify/internal/models"
)

// newestFirst returns up to limit sessions, newest first, optionally
// restricted to one routine. limit <= 0 means no limit.
func newestFirst(sessions []models.WorkoutSession, routine string, limit int) []models.WorkoutSession {
	out := []models.WorkoutSession{}
	for i := len(sessions) - 1; i >= 0; i-- {
		if routine != "" && sessions[i].RoutineName != routine {
			continue
		}
		out = append(out, sessions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// --- Tool definitions ---

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("List every routine with its days. Each day has supersets (A, B, ...) of exercises with their planned sets, tempo and superset code (A1, A2, ...)."),
)

var toolGetRoutineDay = mcp.NewTool("get_routine_day",
	mcp.WithDescription("Get one training day of a routine, including the planned sets of each exercise."),
	mcp.WithString("routine", mcp.Required(), mcp.Description("Routine name (case-sensitive)")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day number, 1 or greater")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Completed workout sessions, newest first. Each session lists the weight and reps logged per set."),
	mcp.WithString("routine", mcp.Description("Only sessions of this routine")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions. Defaults to 20.")),
)

var toolGetLatestExercise = mcp.NewTool("get_latest_exercise",
	mcp.WithDescription("The most recent logged performance of an exercise, across all routines and weeks."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id as found in the routine (e.g. '1-A-sentadilla')")),
)

var toolGetPreviousWeekExercise = mcp.NewTool("get_previous_week_exercise",
	mcp.WithDescription("The performance of an exercise logged in the week before the given week, for the same routine and day."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id")),
	mcp.WithString("routine", mcp.Required(), mcp.Description("Routine name")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day number")),
	mcp.WithNumber("week", mcp.Description("Week being trained. Defaults to the current week.")),
)

var toolGetLastPerformance = mcp.NewTool("get_last_performance",
	mcp.WithDescription("What to show next to each planned set of an exercise: the previous week's numbers when logged, else the latest ones. Lines read like '60 kg x 10 reps (week 2)'."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id")),
	mcp.WithString("routine", mcp.Required(), mcp.Description("Routine name")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day number")),
	mcp.WithNumber("sets", mcp.Description("Number of planned sets to render. Defaults to 1.")),
)

var toolGetWeekSettings = mcp.NewTool("get_week_settings",
	mcp.WithDescription("The training week currently selected (1 or greater)."),
)

// --- Tool handlers ---

func (h *handlers) listRoutines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routines, err := h.ds.ListRoutines(ctx)
	if err != nil {
		h.log.Error("mcp list_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(routines)
}

func (h *handlers) getRoutineDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("routine")
	if err != nil {
		return mcp.NewToolResultError("routine parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	if day < 1 {
		return mcp.NewToolResultError("day must be 1 or greater"), nil
	}

	routine, found, err := h.ds.GetRoutine(ctx, name)
	if err != nil {
		h.log.Error("mcp get_routine_day", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("routine not found: " + name), nil
	}
	i := routine.FindDay(day)
	if i < 0 {
		return mcp.NewToolResultError("day not found"), nil
	}
	return jsonResult(models.MigrateDay(routine.Days[i]))
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.GetHistory(ctx)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	limit := req.GetInt("limit", 20)
	return jsonResult(newestFirst(sessions, req.GetString("routine", ""), limit))
}

func (h *handlers) getLatestExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	ce, found, err := h.ds.GetLatestExercise(ctx, id)
	if err != nil {
		h.log.Error("mcp get_latest_exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(lookupResult(found, ce, 0))
}

func (h *handlers) getPreviousWeekExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	routine, err := req.RequireString("routine")
	if err != nil {
		return mcp.NewToolResultError("routine parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	if day < 1 {
		return mcp.NewToolResultError("day must be 1 or greater"), nil
	}

	week := req.GetInt("week", 0)
	if week < 1 {
		ws, err := h.ds.GetWeekSettings(ctx)
		if err != nil {
			h.log.Error("mcp get_previous_week_exercise", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		week = ws.CurrentWeek
	}

	ce, found, err := h.ds.GetPreviousWeekExercise(ctx, id, week, routine, day)
	if err != nil {
		h.log.Error("mcp get_previous_week_exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(lookupResult(found, ce, week-1))
}

func (h *handlers) getLastPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	routine, err := req.RequireString("routine")
	if err != nil {
		return mcp.NewToolResultError("routine parameter is required"), nil
	}
	day := req.GetInt("day", 0)
	if day < 1 {
		return mcp.NewToolResultError("day must be 1 or greater"), nil
	}
	n := req.GetInt("sets", 1)
	if n < 1 {
		n = 1
	}
	if n > models.MaxSeries {
		return mcp.NewToolResultError(fmt.Sprintf("sets must be at most %d", models.MaxSeries)), nil
	}

	sessions, err := h.ds.GetHistory(ctx)
	if err != nil {
		h.log.Error("mcp get_last_performance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	ws, err := h.ds.GetWeekSettings(ctx)
	if err != nil {
		h.log.Error("mcp get_last_performance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	lookup, found := history.PreviousPerformance(history.Normalize(sessions), id, ws.CurrentWeek, routine, day)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = history.FormatSet(lookup, i)
	}
	return jsonResult(map[string]any{
		"found":  found,
		"lookup": lookup,
		"sets":   lines,
	})
}

func (h *handlers) getWeekSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := h.ds.GetWeekSettings(ctx)
	if err != nil {
		h.log.Error("mcp get_week_settings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(ws)
}

// lookupResult shapes an exercise lookup; week is omitted when 0.
func lookupResult(found bool, ce models.CompletedExercise, week int) map[string]any {
	res := map[string]any{"found": found}
	if week > 0 {
		res["week"] = week
	}
	if found {
		res["exercise"] = ce
	}
	return res
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
