package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/rutinify/internal/history"
	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/storage"
)

// AddWorkoutSession appends a finished workout to the history. The id and
// date are always assigned here; a week below 1 takes the current week.
func (t *Tracker) AddWorkoutSession(ctx context.Context, s models.WorkoutSession) (models.WorkoutSession, error) {
	if err := t.Init(ctx); err != nil {
		return models.WorkoutSession{}, err
	}
	if s.RoutineName == "" {
		return models.WorkoutSession{}, fmt.Errorf("%w: session without routine name", ErrInvalid)
	}
	if s.DayCompleted < 1 {
		return models.WorkoutSession{}, fmt.Errorf("%w: session day must be 1 or greater", ErrInvalid)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s.ID = uuid.NewString()
	s.Date = t.now().UTC()
	if s.Week < 1 {
		s.Week = t.week.CurrentWeek
	}
	if s.CompletedExercises == nil {
		s.CompletedExercises = []models.CompletedExercise{}
	}

	next := make([]models.WorkoutSession, len(t.history), len(t.history)+1)
	copy(next, t.history)
	next = append(next, s)
	if err := storage.SetJSON(ctx, t.kv, storage.KeyHistory, next); err != nil {
		t.log.Error("saving history", "error", err)
		return models.WorkoutSession{}, err
	}
	t.history = next
	t.log.Info("workout session saved", "routine", s.RoutineName, "day", s.DayCompleted, "week", s.Week, "exercises", len(s.CompletedExercises))
	return s, nil
}

// FinishWorkout finalizes a draft for the current week and appends it.
func (t *Tracker) FinishWorkout(ctx context.Context, routineName string, day int, d *history.Draft) (models.WorkoutSession, error) {
	if err := t.Init(ctx); err != nil {
		return models.WorkoutSession{}, err
	}
	week := t.WeekSettings().CurrentWeek
	return t.AddWorkoutSession(ctx, d.Finalize(routineName, day, week, t.now()))
}

// History returns a copy of the session log, oldest first.
func (t *Tracker) History() []models.WorkoutSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.WorkoutSession, len(t.history))
	copy(out, t.history)
	return out
}

// LatestExerciseData returns the most recent logged performance of an
// exercise.
func (t *Tracker) LatestExerciseData(exerciseID string) (models.CompletedExercise, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return history.LatestExerciseData(t.history, exerciseID)
}

// PreviousWeekExerciseData returns the performance logged in week
// currentWeek-1 for the same routine and day.
func (t *Tracker) PreviousWeekExerciseData(exerciseID string, currentWeek int, routineName string, day int) (models.CompletedExercise, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return history.PreviousWeekExerciseData(t.history, exerciseID, currentWeek, routineName, day)
}

// PreviousPerformance resolves what to show next to an exercise in the
// current week: the previous week's entry, else the latest one.
func (t *Tracker) PreviousPerformance(exerciseID, routineName string, day int) (history.Lookup, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return history.PreviousPerformance(t.history, exerciseID, t.week.CurrentWeek, routineName, day)
}

// WeekSettings returns the current week selector.
func (t *Tracker) WeekSettings() models.WeekSettings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.week
}

// SetCurrentWeek changes the week used for new sessions and previous-week
// lookups. The setting is global across routines.
func (t *Tracker) SetCurrentWeek(ctx context.Context, week int) error {
	if week < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWeek, week)
	}
	if err := t.Init(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	next := models.WeekSettings{CurrentWeek: week}
	if err := storage.SetJSON(ctx, t.kv, storage.KeyWeekSettings, next); err != nil {
		t.log.Error("saving week settings", "error", err)
		return err
	}
	t.week = next
	return nil
}
