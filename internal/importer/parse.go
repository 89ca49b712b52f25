package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/claude/rutinify/internal/models"
)

// Column names of the routine CSV format.
const (
	ColDay      = "Día"
	ColSuperset = "Superserie"
	ColExercise = "Ejercicio"
	ColSeries   = "Series"
	ColReps     = "Reps"
	ColTempo    = "Tempo"
	ColWeek1    = "Semana 1"
	ColWeek2    = "Semana 2"
	ColWeek3    = "Semana 3"
	ColWeek4    = "Semana 4"
	ColNotes    = "Notas"
)

// RequiredHeaders must all be present in the header row, in any order.
var RequiredHeaders = []string{
	ColDay, ColSuperset, ColExercise, ColSeries, ColReps, ColTempo,
	ColWeek1, ColWeek2, ColWeek3, ColWeek4, ColNotes,
}

// supersetCodeRe matches A1, B12, ...
var supersetCodeRe = regexp.MustCompile(`^[A-Z][0-9]+$`)

// Row is one validated data row.
type Row struct {
	Line     int // line number in the file, header is line 1
	Day      int // resolved day; inherited from the previous row when the cell is empty
	Superset string
	Exercise string
	Series   string
	Reps     string
	Tempo    string
	Weeks    [4]string // Semana 1..4, kept for reference only
	Notes    string
}

// Parsed is the result of reading a routine CSV.
type Parsed struct {
	Headers     []string
	Rows        []Row
	BlankRows   int
	errs        error
	lastDay     int
	headerIndex map[string]int
}

// Err returns every row and field problem combined, or nil when the file
// can be converted.
func (p *Parsed) Err() error {
	return p.errs
}

// Problems returns the individual validation errors in file order.
func (p *Parsed) Problems() []error {
	return multierr.Errors(p.errs)
}

// Parse reads the full CSV text. A missing required header aborts with a
// *HeaderValidationError. Row shape and field problems do not abort; they
// accumulate in Parsed.Err so they can be reported together.
func Parse(r io.Reader) (*Parsed, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	p := &Parsed{headerIndex: make(map[string]int, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		p.Headers = append(p.Headers, h)
		if _, dup := p.headerIndex[h]; !dup {
			p.headerIndex[h] = i
		}
	}

	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := p.headerIndex[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderValidationError{Missing: missing}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("reading csv: %w", err)
			}
			p.errs = multierr.Append(p.errs, &FieldError{Row: pe.StartLine, Field: "general", Message: pe.Err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)
		p.addRecord(line, record)
	}

	if len(p.Rows) == 0 && p.errs == nil {
		return nil, ErrNoData
	}
	return p, nil
}

func (p *Parsed) addRecord(line int, record []string) {
	blank := true
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
		if record[i] != "" {
			blank = false
		}
	}
	if blank {
		p.BlankRows++
		return
	}

	if len(record) != len(p.Headers) {
		p.errs = multierr.Append(p.errs, &RowShapeError{Row: line, Expected: len(p.Headers), Actual: len(record)})
		return
	}

	get := func(col string) string { return record[p.headerIndex[col]] }
	row := Row{
		Line:     line,
		Superset: get(ColSuperset),
		Exercise: get(ColExercise),
		Series:   get(ColSeries),
		Reps:     get(ColReps),
		Tempo:    get(ColTempo),
		Weeks:    [4]string{get(ColWeek1), get(ColWeek2), get(ColWeek3), get(ColWeek4)},
		Notes:    get(ColNotes),
	}

	valid := true
	fail := func(field, msg string) {
		valid = false
		p.errs = multierr.Append(p.errs, &FieldError{Row: line, Field: field, Message: msg})
	}

	if dayText := get(ColDay); dayText != "" {
		day, err := strconv.Atoi(dayText)
		if err != nil || day < 1 || day > 7 {
			fail(ColDay, "must be a number between 1 and 7")
		} else {
			row.Day = day
			p.lastDay = day
		}
	} else if p.lastDay == 0 {
		fail(ColDay, "required on the first row")
	} else {
		row.Day = p.lastDay
	}

	if row.Superset != "" && !supersetCodeRe.MatchString(row.Superset) {
		fail(ColSuperset, "must look like A1, B2, ...")
	}

	if row.Exercise == "" {
		fail(ColExercise, "exercise name is required")
	}

	if n, ok := models.ParseLeadingInt(row.Series); ok && n > models.MaxSeries {
		fail(ColSeries, fmt.Sprintf("must be at most %d", models.MaxSeries))
	}

	if valid {
		p.Rows = append(p.Rows, row)
	}
}
