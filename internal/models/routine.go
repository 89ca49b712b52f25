package models

import (
	"fmt"
	"sort"
	"strings"
)

// Routine is a named workout program. Names are unique within a store.
type Routine struct {
	Name string       `json:"name"`
	Days []WorkoutDay `json:"days"`
}

// WorkoutDay is one training day of a routine. Day numbers are unique per
// routine; an empty superset list is a valid, not-yet-populated day.
type WorkoutDay struct {
	Day       int        `json:"day"`
	DayName   string     `json:"dayName,omitempty"`
	Supersets []Superset `json:"supersets"`
}

// Superset groups exercises performed back to back, e.g. "A".
type Superset struct {
	ID        string     `json:"id"`
	Exercises []Exercise `json:"exercises"`
}

// Clone returns a deep copy of the routine.
func (r Routine) Clone() Routine {
	out := Routine{Name: r.Name, Days: make([]WorkoutDay, len(r.Days))}
	for i, d := range r.Days {
		out.Days[i] = d.Clone()
	}
	return out
}

// FindDay returns the index of day n, or -1.
func (r Routine) FindDay(n int) int {
	for i, d := range r.Days {
		if d.Day == n {
			return i
		}
	}
	return -1
}

// Validate checks the routine name, every day and day-number uniqueness.
func (r Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("routine name is required")
	}
	seen := make(map[int]bool, len(r.Days))
	for _, d := range r.Days {
		if seen[d.Day] {
			return fmt.Errorf("duplicate day %d", d.Day)
		}
		seen[d.Day] = true
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SortDays orders days ascending by day number.
func (r *Routine) SortDays() {
	sort.SliceStable(r.Days, func(i, j int) bool { return r.Days[i].Day < r.Days[j].Day })
}

// Clone returns a deep copy of the day.
func (d WorkoutDay) Clone() WorkoutDay {
	out := WorkoutDay{Day: d.Day, DayName: d.DayName, Supersets: make([]Superset, len(d.Supersets))}
	for i, ss := range d.Supersets {
		cp := Superset{ID: ss.ID, Exercises: make([]Exercise, len(ss.Exercises))}
		for j, ex := range ss.Exercises {
			cp.Exercises[j] = ex.Clone()
		}
		out.Supersets[i] = cp
	}
	return out
}

// Label is the display name of the day, falling back to "Día N".
func (d WorkoutDay) Label() string {
	if d.DayName != "" {
		return d.DayName
	}
	return fmt.Sprintf("Día %d", d.Day)
}

// Exercise looks up an exercise by id anywhere in the day.
func (d WorkoutDay) Exercise(id string) (Exercise, bool) {
	for _, ss := range d.Supersets {
		for _, ex := range ss.Exercises {
			if ex.ID == id {
				return ex, true
			}
		}
	}
	return Exercise{}, false
}

// Validate checks the structural invariants of a day.
func (d WorkoutDay) Validate() error {
	if d.Day < 1 {
		return fmt.Errorf("day %d: must be a positive number", d.Day)
	}
	supersets := make(map[string]bool, len(d.Supersets))
	for _, ss := range d.Supersets {
		if ss.ID == "" {
			return fmt.Errorf("day %d: superset without id", d.Day)
		}
		if supersets[ss.ID] {
			return fmt.Errorf("day %d: duplicate superset %q", d.Day, ss.ID)
		}
		supersets[ss.ID] = true
		for _, ex := range ss.Exercises {
			if err := ex.Validate(); err != nil {
				return fmt.Errorf("day %d superset %s: %w", d.Day, ss.ID, err)
			}
		}
	}
	return nil
}

// NextSupersetID returns the letter for a superset appended to the day
// (A, B, C, ...).
func (d WorkoutDay) NextSupersetID() string {
	return string(rune('A' + len(d.Supersets)))
}
