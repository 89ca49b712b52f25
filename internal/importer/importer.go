package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/claude/rutinify/internal/models"
)

// Stats summarizes one import run.
type Stats struct {
	RoutineName string
	RowsParsed  int
	BlankRows   int
	Days        int
	Supersets   int
	Exercises   int
	Sets        int
	Problems    []Problem
}

// RoutineAdder receives the converted routine.
type RoutineAdder interface {
	AddRoutine(ctx context.Context, r models.Routine) error
}

// Importer reads routine CSV files and hands the result to a RoutineAdder.
type Importer struct {
	dest   RoutineAdder
	log    *slog.Logger
	dryRun bool
}

// New creates a new Importer. With dryRun set the file is validated and
// converted but never added.
func New(dest RoutineAdder, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{dest: dest, log: log, dryRun: dryRun}
}

// Import parses, validates and converts r into a routine called name, then
// adds it. Nothing is added when any row has a problem; Stats.Problems lists
// all of them.
func (imp *Importer) Import(ctx context.Context, name string, r io.Reader) (*Stats, error) {
	stats := &Stats{RoutineName: strings.TrimSpace(name)}

	routine, parsed, err := ToRoutine(name, r)
	if parsed != nil {
		stats.RowsParsed = len(parsed.Rows)
		stats.BlankRows = parsed.BlankRows
		for _, p := range parsed.Problems() {
			stats.Problems = append(stats.Problems, ProblemOf(p))
		}
	}
	if err != nil {
		if len(stats.Problems) == 0 {
			stats.Problems = []Problem{ProblemOf(err)}
		}
		return stats, err
	}

	stats.Days = len(routine.Days)
	for _, d := range routine.Days {
		stats.Supersets += len(d.Supersets)
		for _, ss := range d.Supersets {
			stats.Exercises += len(ss.Exercises)
			for _, ex := range ss.Exercises {
				stats.Sets += len(ex.Sets)
			}
		}
	}

	if imp.dryRun {
		imp.log.Info("dry run: routine not added", "routine", routine.Name, "days", stats.Days, "exercises", stats.Exercises)
		return stats, nil
	}

	if err := imp.dest.AddRoutine(ctx, routine); err != nil {
		return stats, fmt.Errorf("adding routine %q: %w", routine.Name, err)
	}
	imp.log.Info("routine imported", "routine", routine.Name, "days", stats.Days, "exercises", stats.Exercises)
	return stats, nil
}

// ToRoutine is Parse followed by Convert. The parsed file is returned
// whenever the header was valid so callers can list row problems.
func ToRoutine(name string, r io.Reader) (models.Routine, *Parsed, error) {
	parsed, err := Parse(r)
	if err != nil {
		return models.Routine{}, nil, err
	}
	if err := parsed.Err(); err != nil {
		return models.Routine{}, parsed, fmt.Errorf("%d invalid rows: %w", len(parsed.Problems()), err)
	}
	routine, err := Convert(name, parsed)
	if err != nil {
		return models.Routine{}, parsed, err
	}
	return routine, parsed, nil
}

// RoutineNameFromFilename suggests a routine name from a file path:
// "data/rutina-fuerza.csv" -> "Rutina-fuerza".
func RoutineNameFromFilename(path string) string {
	base := strings.Replace(filepath.Base(path), ".csv", "", 1)
	r, size := utf8.DecodeRuneInString(base)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + base[size:]
}
