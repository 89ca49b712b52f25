package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExerciseType selects how an exercise (and each of its sets) is measured.
type ExerciseType string

const (
	TypeReps       ExerciseType = "reps"
	TypeTime       ExerciseType = "time"
	TypeWeightTime ExerciseType = "weight-time"
)

// Valid reports whether t is one of the known exercise types.
func (t ExerciseType) Valid() bool {
	switch t {
	case TypeReps, TypeTime, TypeWeightTime:
		return true
	}
	return false
}

// ExerciseSet is one planned set. Which of Weight, Reps and Duration are
// meaningful depends on Type:
//
//	reps        → Weight, Reps
//	time        → Duration
//	weight-time → Weight, Duration
//
// Only those fields are written to JSON.
type ExerciseSet struct {
	ID        string
	Type      ExerciseType
	Weight    float64
	Reps      int
	Duration  string // "m:ss"
	Completed bool
}

type setJSON struct {
	ID        string       `json:"id"`
	Type      ExerciseType `json:"type"`
	Weight    *float64     `json:"weight,omitempty"`
	Reps      *float64     `json:"reps,omitempty"`
	Duration  *string      `json:"duration,omitempty"`
	Completed bool         `json:"completed,omitempty"`
}

// MarshalJSON writes only the fields required by the set's type.
func (s ExerciseSet) MarshalJSON() ([]byte, error) {
	out := setJSON{ID: s.ID, Type: s.Type, Completed: s.Completed}
	switch s.Type {
	case TypeReps:
		w, r := s.Weight, float64(s.Reps)
		out.Weight, out.Reps = &w, &r
	case TypeTime:
		d := s.Duration
		out.Duration = &d
	case TypeWeightTime:
		w, d := s.Weight, s.Duration
		out.Weight, out.Duration = &w, &d
	default:
		return nil, fmt.Errorf("set %q: unknown type %q", s.ID, s.Type)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a set, dropping any field its type does not use.
func (s *ExerciseSet) UnmarshalJSON(data []byte) error {
	var in setJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = ExerciseSet{ID: in.ID, Type: in.Type, Completed: in.Completed}
	if in.Type == TypeReps || in.Type == TypeWeightTime {
		if in.Weight != nil {
			s.Weight = *in.Weight
		}
	}
	if in.Type == TypeReps && in.Reps != nil {
		s.Reps = int(*in.Reps)
	}
	if in.Type == TypeTime || in.Type == TypeWeightTime {
		if in.Duration != nil {
			s.Duration = *in.Duration
		}
	}
	return nil
}

// Validate checks the set's type and, for timed sets, its duration.
func (s ExerciseSet) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("set %q: unknown type %q", s.ID, s.Type)
	}
	if s.Type == TypeReps && s.Reps < 0 {
		return fmt.Errorf("set %q: negative reps", s.ID)
	}
	if s.Type != TypeTime && s.Weight < 0 {
		return fmt.Errorf("set %q: negative weight", s.ID)
	}
	if s.Type != TypeReps {
		if _, err := ParseSetDuration(s.Duration); err != nil {
			return fmt.Errorf("set %q: %w", s.ID, err)
		}
	}
	return nil
}

// NewSet returns a set with the default values for the given type.
func NewSet(t ExerciseType) ExerciseSet {
	s := ExerciseSet{ID: uuid.NewString(), Type: t}
	switch t {
	case TypeTime:
		s.Duration = "0:30"
	case TypeWeightTime:
		s.Duration = "1:00"
	default:
		s.Type = TypeReps
		s.Reps = 10
	}
	return s
}

// ParseSetDuration parses "m:ss" (minutes unbounded, seconds 00-59).
func ParseSetDuration(s string) (time.Duration, error) {
	mins, secs, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("duration %q: want mm:ss", s)
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("duration %q: invalid minutes", s)
	}
	if len(secs) != 2 {
		return 0, fmt.Errorf("duration %q: seconds must have two digits", s)
	}
	sc, err := strconv.Atoi(secs)
	if err != nil || sc < 0 || sc > 59 {
		return 0, fmt.Errorf("duration %q: invalid seconds", s)
	}
	return time.Duration(m)*time.Minute + time.Duration(sc)*time.Second, nil
}
