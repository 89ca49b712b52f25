package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/claude/rutinify/internal/models"
)

const (
	defaultSupersetCode = "A1"
	defaultImportTempo  = "----"
	defaultSeries       = 3
	defaultReps         = 10
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, replaces every run of non [a-z0-9] characters with a
// single hyphen and trims hyphens from both ends.
func Slug(s string) string {
	return strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ExerciseID is the deterministic id of an imported exercise. Re-importing
// the same file reproduces the same ids, which keeps history lookups working.
func ExerciseID(day int, supersetLetter, name string) string {
	return fmt.Sprintf("%d-%s-%s", day, supersetLetter, Slug(name))
}

// supersetLetter strips the digits from a code: "A1" -> "A".
func supersetLetter(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, code)
}

// Convert builds a routine from a parsed file. It refuses to convert when
// the file has any validation problem, so an import is all or nothing.
func Convert(name string, p *Parsed) (models.Routine, error) {
	if err := p.Err(); err != nil {
		return models.Routine{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Routine{}, ErrMissingName
	}

	type group struct {
		letter string
		rows   []Row
	}
	dayGroups := map[int][]*group{}
	var dayOrder []int

	for _, row := range p.Rows {
		code := row.Superset
		if code == "" {
			code = defaultSupersetCode
		}
		letter := supersetLetter(code)

		groups, seen := dayGroups[row.Day]
		if !seen {
			dayOrder = append(dayOrder, row.Day)
		}
		var g *group
		for _, existing := range groups {
			if existing.letter == letter {
				g = existing
				break
			}
		}
		if g == nil {
			g = &group{letter: letter}
			dayGroups[row.Day] = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}

	sort.Ints(dayOrder)
	routine := models.Routine{Name: name, Days: make([]models.WorkoutDay, 0, len(dayOrder))}
	usedIDs := map[string]int{}

	for _, dayNum := range dayOrder {
		day := models.WorkoutDay{Day: dayNum, Supersets: []models.Superset{}}
		for _, g := range dayGroups[dayNum] {
			ss := models.Superset{ID: g.letter, Exercises: make([]models.Exercise, 0, len(g.rows))}
			for _, row := range g.rows {
				ss.Exercises = append(ss.Exercises, rowToExercise(row, g.letter, usedIDs))
			}
			day.Supersets = append(day.Supersets, ss)
		}
		routine.Days = append(routine.Days, day)
	}

	return routine, nil
}

func rowToExercise(row Row, letter string, usedIDs map[string]int) models.Exercise {
	id := ExerciseID(row.Day, letter, row.Exercise)
	usedIDs[id]++
	if n := usedIDs[id]; n > 1 {
		id = fmt.Sprintf("%s-%d", id, n)
	}

	code := row.Superset
	if code == "" {
		code = letter + "1"
	}
	tempo := row.Tempo
	if tempo == "" {
		tempo = defaultImportTempo
	}

	series := models.ParseSeries(row.Series, defaultSeries)
	reps := models.ParseCount(row.Reps, defaultReps)
	sets := make([]models.ExerciseSet, series)
	for i := range sets {
		sets[i] = models.ExerciseSet{
			ID:   models.SetID(id, i),
			Type: models.TypeReps,
			Reps: reps,
		}
	}

	return models.Exercise{
		ID:           id,
		Name:         row.Exercise,
		Type:         models.TypeReps,
		Sets:         sets,
		Tempo:        tempo,
		SupersetCode: code,
		Notes:        row.Notes,
	}
}
