package history

import (
	"sort"
	"time"

	"github.com/claude/rutinify/internal/models"
)

// SetInput is the raw text typed for one set.
type SetInput struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
}

type draftEntry struct {
	sets  map[int]SetInput
	notes string
}

// Draft buffers the input of a workout in progress. It is owned by a single
// workout and never shares memory with the routine being trained.
type Draft struct {
	order   []string
	entries map[string]*draftEntry
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{entries: make(map[string]*draftEntry)}
}

func (d *Draft) entry(exerciseID string) *draftEntry {
	if d.entries == nil {
		d.entries = make(map[string]*draftEntry)
	}
	e, ok := d.entries[exerciseID]
	if !ok {
		e = &draftEntry{sets: make(map[int]SetInput)}
		d.entries[exerciseID] = e
		d.order = append(d.order, exerciseID)
	}
	return e
}

// SetWeight records the weight text for a set.
func (d *Draft) SetWeight(exerciseID string, setIndex int, v string) {
	e := d.entry(exerciseID)
	in := e.sets[setIndex]
	in.Weight = v
	e.sets[setIndex] = in
}

// SetReps records the reps text for a set.
func (d *Draft) SetReps(exerciseID string, setIndex int, v string) {
	e := d.entry(exerciseID)
	in := e.sets[setIndex]
	in.Reps = v
	e.sets[setIndex] = in
}

// SetNotes records free-text notes for an exercise.
func (d *Draft) SetNotes(exerciseID, notes string) {
	d.entry(exerciseID).notes = notes
}

// Len is the number of exercises touched so far.
func (d *Draft) Len() int {
	return len(d.order)
}

// Finalize converts the draft into a session. Sets are numbered 1..n in
// set-index order before blank sets are dropped, so a gap keeps the
// ordinal of the set the user actually filled. Weight "0" and reps "0"
// count as blank. Exercises are kept even when all their sets are blank.
func (d *Draft) Finalize(routineName string, day, week int, now time.Time) models.WorkoutSession {
	if week < 1 {
		week = 1
	}
	session := models.WorkoutSession{
		Date:               now.UTC(),
		RoutineName:        routineName,
		DayCompleted:       day,
		Week:               week,
		CompletedExercises: make([]models.CompletedExercise, 0, len(d.order)),
	}

	for _, id := range d.order {
		e := d.entries[id]
		indexes := make([]int, 0, len(e.sets))
		for i := range e.sets {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)

		ce := models.CompletedExercise{ExerciseID: id, Sets: []models.CompletedSet{}, Notes: e.notes}
		for pos, i := range indexes {
			cs := models.CompletedSet{Set: pos + 1}
			in := e.sets[i]
			if w, ok := models.ParseLeadingFloat(in.Weight); ok && w != 0 {
				cs.Weight = models.Ptr(w)
			}
			if r, ok := models.ParseLeadingInt(in.Reps); ok && r != 0 {
				cs.Reps = models.Ptr(r)
			}
			if cs.Empty() {
				continue
			}
			ce.Sets = append(ce.Sets, cs)
		}
		session.CompletedExercises = append(session.CompletedExercises, ce)
	}
	return session
}
