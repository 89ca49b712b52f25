package mcp

import (
	"context"

	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// tracker) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListRoutines(ctx context.Context) ([]models.Routine, error)
	GetRoutine(ctx context.Context, name string) (models.Routine, bool, error)
	GetHistory(ctx context.Context) ([]models.WorkoutSession, error)
	GetLatestExercise(ctx context.Context, exerciseID string) (models.CompletedExercise, bool, error)
	GetPreviousWeekExercise(ctx context.Context, exerciseID string, week int, routineName string, day int) (models.CompletedExercise, bool, error)
	GetWeekSettings(ctx context.Context) (models.WeekSettings, error)
}

// Local serves MCP requests straight from a tracker in the same process.
type Local struct {
	t *tracker.Tracker
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(t *tracker.Tracker) *Local {
	return &Local{t: t}
}

func (l *Local) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	if err := l.t.Init(ctx); err != nil {
		return nil, err
	}
	return l.t.Routines(), nil
}

func (l *Local) GetRoutine(ctx context.Context, name string) (models.Routine, bool, error) {
	if err := l.t.Init(ctx); err != nil {
		return models.Routine{}, false, err
	}
	r, ok := l.t.Routine(name)
	return r, ok, nil
}

func (l *Local) GetHistory(ctx context.Context) ([]models.WorkoutSession, error) {
	if err := l.t.Init(ctx); err != nil {
		return nil, err
	}
	return l.t.History(), nil
}

func (l *Local) GetLatestExercise(ctx context.Context, exerciseID string) (models.CompletedExercise, bool, error) {
	if err := l.t.Init(ctx); err != nil {
		return models.CompletedExercise{}, false, err
	}
	ce, ok := l.t.LatestExerciseData(exerciseID)
	return ce, ok, nil
}

func (l *Local) GetPreviousWeekExercise(ctx context.Context, exerciseID string, week int, routineName string, day int) (models.CompletedExercise, bool, error) {
	if err := l.t.Init(ctx); err != nil {
		return models.CompletedExercise{}, false, err
	}
	ce, ok := l.t.PreviousWeekExerciseData(exerciseID, week, routineName, day)
	return ce, ok, nil
}

func (l *Local) GetWeekSettings(ctx context.Context) (models.WeekSettings, error) {
	if err := l.t.Init(ctx); err != nil {
		return models.WeekSettings{}, err
	}
	return l.t.WeekSettings(), nil
}
