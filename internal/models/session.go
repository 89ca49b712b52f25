package models

import "time"

// WorkoutSession is one finished workout. Sessions are append-only.
type WorkoutSession struct {
	ID                 string              `json:"id,omitempty"`
	Date               time.Time           `json:"date"`
	RoutineName        string              `json:"routineName"`
	DayCompleted       int                 `json:"dayCompleted"`
	Week               int                 `json:"week"`
	CompletedExercises []CompletedExercise `json:"completedExercises"`
}

// CompletedExercise is the logged performance of one planned exercise.
// ExerciseID joins back to Exercise.ID.
type CompletedExercise struct {
	ExerciseID string         `json:"exerciseId"`
	Sets       []CompletedSet `json:"sets"`
	Notes      string         `json:"notes,omitempty"`
}

// CompletedSet holds what the user actually did. A nil value means the
// field was left blank (e.g. no weight for a bodyweight exercise).
type CompletedSet struct {
	Set    int      `json:"set"`
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
}

// Empty reports whether neither weight nor reps were recorded.
func (s CompletedSet) Empty() bool {
	return s.Weight == nil && s.Reps == nil
}

// WeekSettings is the process-wide training week selector.
type WeekSettings struct {
	CurrentWeek int `json:"currentWeek"`
}

// DefaultWeekSettings starts at week 1.
func DefaultWeekSettings() WeekSettings {
	return WeekSettings{CurrentWeek: 1}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
