package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/rutinify/internal/models"
	"github.com/google/go-cmp/cmp"
)

const header = "Día,Superserie,Ejercicio,Series,Reps,Tempo,Semana 1,Semana 2,Semana 3,Semana 4,Notas\n"

const sampleCSV = header +
	"1,A1,Squat,3,10,2010,,,,,\n" +
	"1,A2,Lunge,3,12,2010,,,,,\n" +
	",,,,,,,,,,\n" +
	"1,B1,\"Press, banca\",4,8,3010,60,62.5,,,\"Agarre \"\"cerrado\"\"\"\n" +
	"2,A1,Peso muerto rumano,,,,,,,,\n" +
	",A2,Plancha,2,x,,,,,,\n"

func mustRoutine(t *testing.T, csv string) models.Routine {
	t.Helper()
	r, _, err := ToRoutine("PPL", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return r
}

// TestImportGroupsByDayAndSuperset verifies the day -> superset letter ->
// exercise grouping of a valid file.
func TestImportGroupsByDayAndSuperset(t *testing.T) {
	r := mustRoutine(t, sampleCSV)

	if r.Name != "PPL" {
		t.Errorf("name = %q", r.Name)
	}
	if len(r.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(r.Days))
	}

	d1 := r.Days[0]
	if d1.Day != 1 || len(d1.Supersets) != 2 {
		t.Fatalf("day 1 = %d with %d supersets, want 1 with 2", d1.Day, len(d1.Supersets))
	}
	if d1.Supersets[0].ID != "A" || d1.Supersets[1].ID != "B" {
		t.Errorf("superset ids = %q, %q", d1.Supersets[0].ID, d1.Supersets[1].ID)
	}
	if len(d1.Supersets[0].Exercises) != 2 || len(d1.Supersets[1].Exercises) != 1 {
		t.Errorf("superset sizes = %d, %d, want 2, 1", len(d1.Supersets[0].Exercises), len(d1.Supersets[1].Exercises))
	}

	press := d1.Supersets[1].Exercises[0]
	if press.Name != "Press, banca" {
		t.Errorf("quoted name = %q", press.Name)
	}
	if press.Notes != `Agarre "cerrado"` {
		t.Errorf("escaped notes = %q", press.Notes)
	}
	if press.ID != "1-B-press-banca" {
		t.Errorf("id = %q", press.ID)
	}
	if len(press.Sets) != 4 || press.Sets[0].Reps != 8 || press.Sets[0].Weight != 0 {
		t.Errorf("sets = %+v", press.Sets)
	}
	if press.Sets[3].ID != "1-B-press-banca-set-3" {
		t.Errorf("set id = %q", press.Sets[3].ID)
	}
}

// TestImportDefaults verifies the 3x10 fallback, the tempo placeholder and
// the day inherited by a row with an empty Día cell.
func TestImportDefaults(t *testing.T) {
	r := mustRoutine(t, sampleCSV)
	d2 := r.Days[1]
	if d2.Day != 2 || len(d2.Supersets) != 1 {
		t.Fatalf("day 2 = %+v", d2)
	}
	rdl := d2.Supersets[0].Exercises[0]
	if len(rdl.Sets) != 3 || rdl.Sets[0].Reps != 10 {
		t.Errorf("rdl sets = %+v, want 3x10", rdl.Sets)
	}
	if rdl.Tempo != "----" {
		t.Errorf("tempo = %q", rdl.Tempo)
	}
	plank := d2.Supersets[0].Exercises[1]
	if plank.ID != "2-A-plancha" {
		t.Errorf("inherited day id = %q", plank.ID)
	}
	if len(plank.Sets) != 2 || plank.Sets[0].Reps != 10 {
		t.Errorf("plank sets = %+v", plank.Sets)
	}
}

// TestImportDeterministicIDs verifies that importing the same text twice
// reproduces identical exercise ids.
func TestImportDeterministicIDs(t *testing.T) {
	a := mustRoutine(t, sampleCSV)
	b := mustRoutine(t, sampleCSV)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("second import differs (-first +second):\n%s", diff)
	}
}

// TestImportHeaderOrderIndependent verifies that columns can appear in any
// order.
func TestImportHeaderOrderIndependent(t *testing.T) {
	csv := "Notas,Ejercicio,Día,Superserie,Series,Reps,Tempo,Semana 4,Semana 3,Semana 2,Semana 1\n" +
		"slow,Row,3,C1,5,5,2011,,,,\n"
	r := mustRoutine(t, csv)
	ex := r.Days[0].Supersets[0].Exercises[0]
	if r.Days[0].Day != 3 || ex.Name != "Row" || ex.Notes != "slow" || len(ex.Sets) != 5 {
		t.Errorf("got day %d exercise %+v", r.Days[0].Day, ex)
	}
}

// TestImportMissingHeaders verifies that missing columns abort before any
// row is parsed and are named in the error.
func TestImportMissingHeaders(t *testing.T) {
	_, err := Parse(strings.NewReader("Día,Superserie,Ejercicio,Series,Reps,Tempo\n1,A1,Squat,3,10,2010\n"))
	var he *HeaderValidationError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want HeaderValidationError", err)
	}
	want := []string{"Semana 1", "Semana 2", "Semana 3", "Semana 4", "Notas"}
	if diff := cmp.Diff(want, he.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
}

// TestImportAccumulatesRowErrors verifies that every bad row is reported
// and that nothing is converted.
func TestImportAccumulatesRowErrors(t *testing.T) {
	csv := header +
		"9,A1,Squat,3,10,2010,,,,,\n" + // line 2: bad day
		"1,a1,Lunge,3,10,2010,,,,,\n" + // line 3: bad superset
		"1,A2,,3,10,2010,,,,,\n" + // line 4: missing exercise
		"1,A3,Row,3\n" + // line 5: wrong shape
		"1,B1,Curl,3,10,2010,,,,,\n"

	parsed, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	problems := parsed.Problems()
	if len(problems) != 4 {
		t.Fatalf("problems = %d (%v), want 4", len(problems), problems)
	}

	var fe *FieldError
	if !errors.As(problems[0], &fe) || fe.Row != 2 || fe.Field != ColDay {
		t.Errorf("problem 0 = %v", problems[0])
	}
	if !errors.As(problems[1], &fe) || fe.Row != 3 || fe.Field != ColSuperset {
		t.Errorf("problem 1 = %v", problems[1])
	}
	if !errors.As(problems[2], &fe) || fe.Row != 4 || fe.Field != ColExercise {
		t.Errorf("problem 2 = %v", problems[2])
	}
	var se *RowShapeError
	if !errors.As(problems[3], &se) || se.Row != 5 || se.Expected != 11 || se.Actual != 4 {
		t.Errorf("problem 3 = %v", problems[3])
	}

	if _, err := Convert("PPL", parsed); err == nil {
		t.Error("Convert accepted a file with problems")
	}
}

// TestImportFirstRowNeedsDay verifies that a data row before any day value
// is rejected.
func TestImportFirstRowNeedsDay(t *testing.T) {
	parsed, err := Parse(strings.NewReader(header + ",A1,Squat,3,10,2010,,,,,\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var fe *FieldError
	if !errors.As(parsed.Err(), &fe) || fe.Field != ColDay {
		t.Errorf("err = %v", parsed.Err())
	}
}

// TestImportNoData verifies empty input and header-only input.
func TestImportNoData(t *testing.T) {
	for _, in := range []string{"", header, header + ",,,,,,,,,,\n"} {
		if _, err := Parse(strings.NewReader(in)); !errors.Is(err, ErrNoData) {
			t.Errorf("Parse(%q) err = %v, want ErrNoData", in, err)
		}
	}
}

// TestImportDuplicateExerciseNames verifies that repeated names in the same
// superset get distinct, still deterministic ids.
func TestImportDuplicateExerciseNames(t *testing.T) {
	r := mustRoutine(t, header+"1,A1,Curl,3,10,,,,,,\n1,A2,Curl,3,10,,,,,,\n")
	ex := r.Days[0].Supersets[0].Exercises
	if ex[0].ID != "1-A-curl" || ex[1].ID != "1-A-curl-2" {
		t.Errorf("ids = %q, %q", ex[0].ID, ex[1].ID)
	}
}

// TestImportBlankName verifies that a routine needs a name.
func TestImportBlankName(t *testing.T) {
	if _, _, err := ToRoutine("  ", strings.NewReader(sampleCSV)); !errors.Is(err, ErrMissingName) {
		t.Errorf("err = %v, want ErrMissingName", err)
	}
}

// TestSlug verifies the id slug rules.
func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Squat":                "squat",
		"Press Banca (Barra)":  "press-banca-barra",
		"  --Jalón al pecho--": "jal-n-al-pecho",
		"Dominadas 3x":         "dominadas-3x",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRoutineNameFromFilename verifies the suggested routine name.
func TestRoutineNameFromFilename(t *testing.T) {
	if got := RoutineNameFromFilename("/tmp/rutina-fuerza.csv"); got != "Rutina-fuerza" {
		t.Errorf("got %q", got)
	}
	if got := RoutineNameFromFilename("élite.csv"); got != "Élite" {
		t.Errorf("got %q", got)
	}
}

type recordingAdder struct {
	added []models.Routine
}

func (a *recordingAdder) AddRoutine(_ context.Context, r models.Routine) error {
	a.added = append(a.added, r)
	return nil
}

// TestImporterDryRun verifies that a dry run reports stats without adding.
func TestImporterDryRun(t *testing.T) {
	dest := &recordingAdder{}
	imp := New(dest, slog.New(slog.NewTextHandler(io.Discard, nil)), true)

	stats, err := imp.Import(context.Background(), "PPL", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(dest.added) != 0 {
		t.Error("dry run added a routine")
	}
	if stats.Days != 2 || stats.Exercises != 5 || stats.BlankRows != 1 || stats.RowsParsed != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Sets != 3+3+4+3+2 {
		t.Errorf("sets = %d", stats.Sets)
	}
}

// TestImporterRejectsInvalidFile verifies that nothing is added and every
// problem is listed when the file has errors.
func TestImporterRejectsInvalidFile(t *testing.T) {
	dest := &recordingAdder{}
	imp := New(dest, slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	stats, err := imp.Import(context.Background(), "PPL", strings.NewReader(header+"8,A1,Squat,3,10,,,,,,\n1,A1,,3,10,,,,,,\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(dest.added) != 0 {
		t.Error("invalid file was added")
	}
	if len(stats.Problems) != 2 {
		t.Errorf("problems = %+v", stats.Problems)
	}
}

// TestImportRejectsHugeSeries verifies that a series count above the cap is
// reported against the Series column instead of being expanded into sets.
func TestImportRejectsHugeSeries(t *testing.T) {
	_, parsed, err := ToRoutine("PPL", strings.NewReader(header+"1,A1,Squat,1000000000000000,10,2010,,,,,\n"))
	if err == nil {
		t.Fatal("ToRoutine accepted a huge series count")
	}
	problems := parsed.Problems()
	var fe *FieldError
	if len(problems) != 1 || !errors.As(problems[0], &fe) || fe.Row != 2 || fe.Field != ColSeries {
		t.Fatalf("problems = %v, want one Series error on row 2", problems)
	}

	r := mustRoutine(t, header+"1,A1,Squat,100,10,2010,,,,,\n")
	if n := len(r.Days[0].Supersets[0].Exercises[0].Sets); n != models.MaxSeries {
		t.Errorf("sets = %d, want %d", n, models.MaxSeries)
	}
}
