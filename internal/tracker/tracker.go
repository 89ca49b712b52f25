// Package tracker owns the routine collection, the session history and the
// week setting, and keeps them in sync with storage.
package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/claude/rutinify/internal/history"
	"github.com/claude/rutinify/internal/importer"
	"github.com/claude/rutinify/internal/models"
	"github.com/claude/rutinify/internal/storage"
)

// SeedRoutineName is the name given to the routine imported from the seed
// CSV on first start.
const SeedRoutineName = "Mi Rutina Actual"

var (
	ErrDuplicateRoutine = errors.New("a routine with that name already exists")
	ErrRoutineNotFound  = errors.New("routine not found")
	ErrDayNotFound      = errors.New("day not found")
	ErrDayMismatch      = errors.New("day number in body does not match path")
	ErrInvalidWeek      = errors.New("week must be 1 or greater")
	ErrInvalid          = errors.New("invalid routine")
)

// Tracker is the process-wide state of the application. All methods are
// safe for concurrent use. Every mutation builds a new collection, persists
// it whole and only then replaces the in-memory state, so a failed write
// leaves the last known good state in place.
type Tracker struct {
	kv   storage.KV
	log  *slog.Logger
	seed []byte
	now  func() time.Time

	initOnce sync.Once
	initErr  error

	mu       sync.RWMutex
	routines []models.Routine
	history  []models.WorkoutSession
	week     models.WeekSettings
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSeedCSV imports csv as SeedRoutineName when the routine collection has
// never been stored.
func WithSeedCSV(csv []byte) Option {
	return func(t *Tracker) { t.seed = csv }
}

// WithClock replaces time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker over kv. Call Init before reading state.
func New(kv storage.KV, log *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		kv:   kv,
		log:  log,
		now:  time.Now,
		week: models.DefaultWeekSettings(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Init loads routines, history and week settings from storage. Only the
// first call does any work; later calls return the first call's result.
// Mutating methods call Init themselves.
func (t *Tracker) Init(ctx context.Context) error {
	t.initOnce.Do(func() {
		t.initErr = t.load(ctx)
	})
	return t.initErr
}

func (t *Tracker) load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs error

	var routines []models.Routine
	found, err := storage.GetJSON(ctx, t.kv, storage.KeyRoutines, &routines)
	switch {
	case err != nil:
		errs = multierr.Append(errs, err)
	case !found && t.seed != nil:
		t.seedRoutines(ctx)
	default:
		t.routines = routines
	}

	var sessions []models.WorkoutSession
	if _, err := storage.GetJSON(ctx, t.kv, storage.KeyHistory, &sessions); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		t.history = history.Normalize(sessions)
	}

	week := models.DefaultWeekSettings()
	if _, err := storage.GetJSON(ctx, t.kv, storage.KeyWeekSettings, &week); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		if week.CurrentWeek < 1 {
			week.CurrentWeek = 1
		}
		t.week = week
	}

	if errs != nil {
		return fmt.Errorf("loading state: %w", errs)
	}
	t.log.Info("state loaded", "routines", len(t.routines), "sessions", len(t.history), "week", t.week.CurrentWeek)
	return nil
}

// seedRoutines must be called with t.mu held.
func (t *Tracker) seedRoutines(ctx context.Context) {
	r, _, err := importer.ToRoutine(SeedRoutineName, bytes.NewReader(t.seed))
	if err != nil {
		t.log.Error("seed csv rejected", "error", err)
		return
	}
	if err := t.commitRoutines(ctx, []models.Routine{r}); err != nil {
		return
	}
	t.log.Info("seed routine imported", "routine", r.Name, "days", len(r.Days))
}

// commitRoutines persists next and swaps it in. Must be called with t.mu
// held for writing.
func (t *Tracker) commitRoutines(ctx context.Context, next []models.Routine) error {
	if err := storage.SetJSON(ctx, t.kv, storage.KeyRoutines, next); err != nil {
		t.log.Error("saving routines", "error", err)
		return err
	}
	t.routines = next
	return nil
}

// cloneRoutines returns a deep copy of the collection. Must be called with
// t.mu held.
func (t *Tracker) cloneRoutines() []models.Routine {
	out := make([]models.Routine, len(t.routines))
	for i, r := range t.routines {
		out[i] = r.Clone()
	}
	return out
}

func (t *Tracker) indexOf(name string) int {
	for i, r := range t.routines {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// Routines returns every routine with legacy exercises migrated. The result
// is a copy; storage is not rewritten.
func (t *Tracker) Routines() []models.Routine {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Routine, len(t.routines))
	for i, r := range t.routines {
		out[i] = models.MigrateRoutine(r)
	}
	return out
}

// Routine returns one migrated routine by exact name.
func (t *Tracker) Routine(name string) (models.Routine, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.indexOf(name)
	if i < 0 {
		return models.Routine{}, false
	}
	return models.MigrateRoutine(t.routines[i]), true
}

// AddRoutine appends r. A name already in use (exact, case-sensitive match)
// fails with ErrDuplicateRoutine and changes nothing.
func (t *Tracker) AddRoutine(ctx context.Context, r models.Routine) error {
	if err := t.Init(ctx); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexOf(r.Name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateRoutine, r.Name)
	}

	r = r.Clone()
	r.SortDays()
	next := append(t.cloneRoutines(), r)
	return t.commitRoutines(ctx, next)
}

// UpdateRoutine replaces the routine with the same name. It does nothing
// when no routine has that name.
func (t *Tracker) UpdateRoutine(ctx context.Context, r models.Routine) error {
	if err := t.Init(ctx); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(r.Name)
	if i < 0 {
		return nil
	}
	next := t.cloneRoutines()
	next[i] = r.Clone()
	next[i].SortDays()
	return t.commitRoutines(ctx, next)
}

// DeleteRoutine removes a routine. Sessions that reference it stay in the
// history.
func (t *Tracker) DeleteRoutine(ctx context.Context, name string) error {
	if err := t.Init(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrRoutineNotFound, name)
	}
	next := t.cloneRoutines()
	next = append(next[:i], next[i+1:]...)
	return t.commitRoutines(ctx, next)
}

// DeleteWorkoutDay removes one day. A routine left without days is kept.
func (t *Tracker) DeleteWorkoutDay(ctx context.Context, routineName string, day int) error {
	return t.mutateRoutine(ctx, routineName, func(r *models.Routine) error {
		i := r.FindDay(day)
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrDayNotFound, day)
		}
		r.Days = append(r.Days[:i], r.Days[i+1:]...)
		return nil
	})
}

// UpdateWorkoutDay inserts or replaces day number dayNumber with d and keeps
// days sorted. A zero d.Day takes dayNumber; any other mismatch fails with
// ErrDayMismatch.
func (t *Tracker) UpdateWorkoutDay(ctx context.Context, routineName string, dayNumber int, d models.WorkoutDay) error {
	if d.Day == 0 {
		d.Day = dayNumber
	}
	if d.Day != dayNumber {
		return fmt.Errorf("%w: %d != %d", ErrDayMismatch, d.Day, dayNumber)
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	d = d.Clone()
	return t.mutateRoutine(ctx, routineName, func(r *models.Routine) error {
		if i := r.FindDay(dayNumber); i >= 0 {
			r.Days[i] = d
		} else {
			r.Days = append(r.Days, d)
		}
		r.SortDays()
		return nil
	})
}

// UpdateDayName sets the display name of a day. A blank name clears it.
func (t *Tracker) UpdateDayName(ctx context.Context, routineName string, day int, name string) error {
	name = strings.TrimSpace(name)
	return t.mutateRoutine(ctx, routineName, func(r *models.Routine) error {
		i := r.FindDay(day)
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrDayNotFound, day)
		}
		r.Days[i].DayName = name
		return nil
	})
}

// mutateRoutine applies fn to a copy of the named routine and commits the
// result.
func (t *Tracker) mutateRoutine(ctx context.Context, routineName string, fn func(*models.Routine) error) error {
	if err := t.Init(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(routineName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrRoutineNotFound, routineName)
	}
	next := t.cloneRoutines()
	if err := fn(&next[i]); err != nil {
		return err
	}
	return t.commitRoutines(ctx, next)
}

// EditDay returns an independent, migrated copy of a day for editing. A day
// that does not exist yet comes back empty. Changes reach the store only
// through UpdateWorkoutDay.
func (t *Tracker) EditDay(routineName string, day int) (models.WorkoutDay, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.indexOf(routineName)
	if i < 0 {
		return models.WorkoutDay{}, fmt.Errorf("%w: %q", ErrRoutineNotFound, routineName)
	}
	r := t.routines[i]
	if j := r.FindDay(day); j >= 0 {
		return models.MigrateDay(r.Days[j]), nil
	}
	return models.WorkoutDay{Day: day, Supersets: []models.Superset{}}, nil
}
