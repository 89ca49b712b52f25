// Package history answers "what did I do last time" questions over the
// append-only workout session log.
package history

import (
	"fmt"
	"strconv"

	"github.com/claude/rutinify/internal/models"
)

// Placeholder is shown when no performance was recorded for a set.
const Placeholder = "-- kg x -- reps"

// Lookup is a prior performance of one exercise.
type Lookup struct {
	Exercise models.CompletedExercise `json:"exercise"`
	Week     int                      `json:"week"`
	// FromPreviousWeek is set when the previous-week query matched, as
	// opposed to the latest-session fallback.
	FromPreviousWeek bool `json:"fromPreviousWeek"`
}

// Normalize returns a copy of sessions where every session without a
// week number is read as week 1.
func Normalize(sessions []models.WorkoutSession) []models.WorkoutSession {
	out := make([]models.WorkoutSession, len(sessions))
	copy(out, sessions)
	for i := range out {
		if out[i].Week < 1 {
			out[i].Week = 1
		}
	}
	return out
}

// LatestExerciseData scans sessions newest to oldest and returns the first
// entry logged for exerciseID.
func LatestExerciseData(sessions []models.WorkoutSession, exerciseID string) (models.CompletedExercise, bool) {
	ce, _, ok := latest(sessions, exerciseID)
	return ce, ok
}

func latest(sessions []models.WorkoutSession, exerciseID string) (models.CompletedExercise, int, bool) {
	for i := len(sessions) - 1; i >= 0; i-- {
		if ce, ok := find(sessions[i], exerciseID); ok {
			return ce, weekOf(sessions[i]), true
		}
	}
	return models.CompletedExercise{}, 0, false
}

// PreviousWeekExerciseData returns the entry for exerciseID from the most
// recent session of week currentWeek-1 on the same routine and day. There is
// never a previous week when currentWeek <= 1.
//
// Only the newest matching session is inspected; if it does not contain the
// exercise there is no data, and the caller falls back to
// LatestExerciseData.
func PreviousWeekExerciseData(sessions []models.WorkoutSession, exerciseID string, currentWeek int, routineName string, day int) (models.CompletedExercise, bool) {
	if currentWeek <= 1 {
		return models.CompletedExercise{}, false
	}
	target := currentWeek - 1
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		if weekOf(s) == target && s.RoutineName == routineName && s.DayCompleted == day {
			return find(s, exerciseID)
		}
	}
	return models.CompletedExercise{}, false
}

// PreviousPerformance tries the previous-week query first and falls back to
// the latest session that logged the exercise.
func PreviousPerformance(sessions []models.WorkoutSession, exerciseID string, currentWeek int, routineName string, day int) (Lookup, bool) {
	if ce, ok := PreviousWeekExerciseData(sessions, exerciseID, currentWeek, routineName, day); ok {
		return Lookup{Exercise: ce, Week: currentWeek - 1, FromPreviousWeek: true}, true
	}
	if ce, week, ok := latest(sessions, exerciseID); ok {
		return Lookup{Exercise: ce, Week: week}, true
	}
	return Lookup{}, false
}

// FormatSet renders the set at setIndex of a lookup as
// "60 kg x 10 reps". A missing weight reads "PC" (bodyweight) and a missing
// rep count reads "-". The week is appended only for previous-week results.
// The zero Lookup formats as Placeholder.
func FormatSet(l Lookup, setIndex int) string {
	if setIndex < 0 || setIndex >= len(l.Exercise.Sets) {
		return Placeholder
	}
	s := l.Exercise.Sets[setIndex]
	hasWeight := s.Weight != nil && *s.Weight != 0
	hasReps := s.Reps != nil && *s.Reps != 0
	if !hasWeight && !hasReps {
		return Placeholder
	}

	weight := "PC"
	if hasWeight {
		weight = strconv.FormatFloat(*s.Weight, 'f', -1, 64)
	}
	reps := "-"
	if hasReps {
		reps = strconv.Itoa(*s.Reps)
	}

	out := fmt.Sprintf("%s kg x %s reps", weight, reps)
	if l.FromPreviousWeek {
		out += fmt.Sprintf(" (week %d)", l.Week)
	}
	return out
}

func find(s models.WorkoutSession, exerciseID string) (models.CompletedExercise, bool) {
	for _, ce := range s.CompletedExercises {
		if ce.ExerciseID == exerciseID {
			return ce, true
		}
	}
	return models.CompletedExercise{}, false
}

func weekOf(s models.WorkoutSession) int {
	if s.Week < 1 {
		return 1
	}
	return s.Week
}
