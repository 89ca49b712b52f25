package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultTempo is used for new exercises and for legacy records without a tempo.
const DefaultTempo = "2010"

// Exercise is a planned exercise inside a superset.
//
// Two shapes exist in storage. The current shape carries an explicit Sets
// list (possibly empty, never nil). The legacy shape predates typed sets and
// only has Series and Reps counts; it decodes with Sets == nil. Each shape is
// written back exactly as it was read, so loading and saving a routine never
// rewrites days nobody edited. Use MigrateExercise to obtain the current shape.
type Exercise struct {
	ID           string
	Name         string
	Type         ExerciseType
	Tempo        string
	SupersetCode string // display label, e.g. "A1"
	Notes        string
	Sets         []ExerciseSet

	// Legacy shape only.
	Series string
	Reps   string
}

// IsLegacy reports whether the exercise is still in the flat series/reps shape.
func (e Exercise) IsLegacy() bool {
	return e.Sets == nil
}

type currentExerciseJSON struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         ExerciseType  `json:"type"`
	Sets         []ExerciseSet `json:"sets"`
	Tempo        string        `json:"tempo"`
	SupersetCode string        `json:"supersetCode"`
	Notes        string        `json:"notes,omitempty"`
}

type legacyExerciseJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	Reps         string `json:"reps"`
	Tempo        string `json:"tempo"`
	SupersetCode string `json:"supersetCode"`
	Notes        string `json:"notes,omitempty"`
}

type storedExerciseJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         ExerciseType    `json:"type"`
	Sets         json.RawMessage `json:"sets"`
	Series       json.RawMessage `json:"series"`
	Reps         json.RawMessage `json:"reps"`
	Tempo        string          `json:"tempo"`
	SupersetCode string          `json:"supersetCode"`
	Notes        string          `json:"notes"`
}

// MarshalJSON writes the exercise in the shape it currently holds.
func (e Exercise) MarshalJSON() ([]byte, error) {
	if e.IsLegacy() {
		return json.Marshal(legacyExerciseJSON{
			ID:           e.ID,
			Name:         e.Name,
			Series:       e.Series,
			Reps:         e.Reps,
			Tempo:        e.Tempo,
			SupersetCode: e.SupersetCode,
			Notes:        e.Notes,
		})
	}
	return json.Marshal(currentExerciseJSON{
		ID:           e.ID,
		Name:         e.Name,
		Type:         e.Type,
		Sets:         e.Sets,
		Tempo:        e.Tempo,
		SupersetCode: e.SupersetCode,
		Notes:        e.Notes,
	})
}

// UnmarshalJSON detects the stored shape: an array-valued "sets" field means
// current shape, anything else is treated as legacy.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	var in storedExerciseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Exercise{
		ID:           in.ID,
		Name:         in.Name,
		Type:         in.Type,
		Tempo:        in.Tempo,
		SupersetCode: in.SupersetCode,
		Notes:        in.Notes,
	}

	raw := bytes.TrimSpace(in.Sets)
	if len(raw) > 0 && raw[0] == '[' {
		sets := []ExerciseSet{}
		if err := json.Unmarshal(raw, &sets); err != nil {
			return fmt.Errorf("exercise %q sets: %w", in.ID, err)
		}
		e.Sets = sets
		return nil
	}

	e.Series = looseString(in.Series)
	e.Reps = looseString(in.Reps)
	return nil
}

// looseString accepts either a JSON string or a bare number; very old
// records stored series as a number.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// Clone returns a deep copy, preserving the legacy/current shape.
func (e Exercise) Clone() Exercise {
	out := e
	if e.Sets != nil {
		out.Sets = make([]ExerciseSet, len(e.Sets))
		copy(out.Sets, e.Sets)
	}
	return out
}

// NewExercise returns a blank reps exercise with one default set.
func NewExercise(supersetCode string) Exercise {
	return Exercise{
		ID:           uuid.NewString(),
		Name:         "Nuevo Ejercicio",
		Type:         TypeReps,
		Sets:         []ExerciseSet{NewSet(TypeReps)},
		Tempo:        DefaultTempo,
		SupersetCode: supersetCode,
	}
}

// ChangeType switches the exercise to t and rebuilds its sets with the
// defaults for t, keeping the set count (3 when there were none).
func (e *Exercise) ChangeType(t ExerciseType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown exercise type %q", t)
	}
	n := len(e.Sets)
	if n == 0 {
		n = 3
	}
	sets := make([]ExerciseSet, n)
	for i := range sets {
		sets[i] = NewSet(t)
	}
	e.Type = t
	e.Sets = sets
	e.Series, e.Reps = "", ""
	return nil
}

// Validate checks the current-shape invariants. Legacy exercises are
// accepted as stored.
func (e Exercise) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("exercise %q: missing id", e.Name)
	}
	if e.IsLegacy() {
		return nil
	}
	if !e.Type.Valid() {
		return fmt.Errorf("exercise %q: unknown type %q", e.ID, e.Type)
	}
	seen := make(map[string]bool, len(e.Sets))
	for _, s := range e.Sets {
		if s.ID == "" {
			return fmt.Errorf("exercise %q: set without id", e.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("exercise %q: duplicate set id %q", e.ID, s.ID)
		}
		seen[s.ID] = true
		if err := s.Validate(); err != nil {
			return fmt.Errorf("exercise %q: %w", e.ID, err)
		}
	}
	return nil
}
