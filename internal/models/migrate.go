package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultSeries = 3
	defaultReps   = 10
)

// MaxSeries caps the number of sets generated from a series count.
const MaxSeries = 100

// MigrateExercise upgrades a legacy series/reps exercise to the typed
// per-set shape. Current-shape exercises are returned unchanged, so
// MigrateExercise(MigrateExercise(e)) equals MigrateExercise(e).
//
// Set ids are derived from the exercise id, which keeps the result
// deterministic for the same input.
func MigrateExercise(e Exercise) Exercise {
	if !e.IsLegacy() {
		return e
	}

	series := ParseSeries(e.Series, defaultSeries)
	reps := ParseCount(e.Reps, defaultReps)

	sets := make([]ExerciseSet, series)
	for i := range sets {
		sets[i] = ExerciseSet{
			ID:     SetID(e.ID, i),
			Type:   TypeReps,
			Weight: 0,
			Reps:   reps,
		}
	}

	tempo := e.Tempo
	if tempo == "" {
		tempo = DefaultTempo
	}

	return Exercise{
		ID:           e.ID,
		Name:         e.Name,
		Type:         TypeReps,
		Sets:         sets,
		Tempo:        tempo,
		SupersetCode: e.SupersetCode,
		Notes:        e.Notes,
	}
}

// MigrateDay returns a deep copy of d with every exercise migrated.
func MigrateDay(d WorkoutDay) WorkoutDay {
	out := d.Clone()
	for i := range out.Supersets {
		for j, ex := range out.Supersets[i].Exercises {
			out.Supersets[i].Exercises[j] = MigrateExercise(ex)
		}
	}
	return out
}

// MigrateRoutine returns a deep copy of r with every exercise migrated.
func MigrateRoutine(r Routine) Routine {
	out := Routine{Name: r.Name, Days: make([]WorkoutDay, len(r.Days))}
	for i, d := range r.Days {
		out.Days[i] = MigrateDay(d)
	}
	return out
}

// SetID is the deterministic id of the i-th generated set of an exercise.
func SetID(exerciseID string, i int) string {
	return fmt.Sprintf("%s-set-%d", exerciseID, i)
}

// ParseCount reads a positive count the way a browser parseInt would
// (leading integer, trailing junk ignored) and falls back to def when the
// text has no leading integer or the value is below 1.
func ParseCount(s string, def int) int {
	n, ok := ParseLeadingInt(s)
	if !ok || n < 1 {
		return def
	}
	return n
}

// ParseSeries is ParseCount capped at MaxSeries.
func ParseSeries(s string, def int) int {
	return min(ParseCount(s, def), MaxSeries)
}

var (
	leadingIntRe   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloatRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseLeadingInt parses the integer prefix of s after leading whitespace.
// "12 reps" -> 12, "3.5" -> 3, "x" -> not ok.
func ParseLeadingInt(s string) (int, bool) {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseLeadingFloat parses the decimal prefix of s after leading
// whitespace. A decimal comma is accepted ("62,5" -> 62.5).
func ParseLeadingFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := leadingFloatRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
