package importer

import (
	"encoding/csv"
	"strings"

	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// defaultActivity names rows whose source carries no activity column.
const defaultActivity = "jobb"

var csvVocabulary = map[string][]string{
	"date":  {"dato", "date", "dag", "day"},
	"start": {"start", "fra", "from", "begin"},
	"end":   {"slutt", "stopp", "stop", "end", "til", "to"},
	"name":  {"aktivitet", "activity", "navn", "name", "type", "art", "beskrivelse", "description"},
}

// columnRoles maps the semantic columns to their index in the header,
// -1 when the column is absent.
type columnRoles struct {
	date, start, end, name int
}

// csvFormat reads spreadsheet exports. The delimiter is taken by
// majority vote over comma, semicolon and tab in the header line, and
// the header names are matched against a small Norwegian and English
// vocabulary.
type csvFormat struct{}

func (csvFormat) Name() string { return "csv" }

func (csvFormat) CanParse(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return false
	}
	header := firstNonEmptyLine(text)
	if header == "" {
		return false
	}
	delim := detectDelimiter(header)
	_, ok := mapColumns(splitHeader(header, delim))
	return ok
}

func (csvFormat) Parse(text string) Result {
	var res Result

	header := firstNonEmptyLine(text)
	delim := detectDelimiter(header)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		res.errorf("broken csv: %v", err)
		return res
	}
	if len(records) == 0 {
		res.errorf("empty csv input")
		return res
	}

	roles, ok := mapColumns(records[0])
	if !ok {
		res.errorf("csv header has no recognizable date and start columns")
		return res
	}

	for i, rec := range records[1:] {
		row := i + 2
		if blankRecord(rec) {
			continue
		}

		date, err := timeutil.ParseDateLiteral(field(rec, roles.date))
		if err != nil {
			res.warnf("row %d: %v", row, err)
			continue
		}
		sh, sm, err := timeutil.ParseClockLiteral(field(rec, roles.start))
		if err != nil {
			res.warnf("row %d: start time: %v", row, err)
			continue
		}
		eh, em, err := timeutil.ParseClockLiteral(field(rec, roles.end))
		if err != nil {
			res.warnf("row %d: end time: %v", row, err)
			continue
		}

		name := strings.TrimSpace(field(rec, roles.name))
		if name == "" {
			name = defaultActivity
		}

		start := timeutil.At(date, sh, sm)
		end := timeutil.At(date, eh, em)
		if end.Before(start) {
			// An end before the start means the shift ran past
			// midnight.
			end = end.AddDate(0, 0, 1)
		}

		startLocal := timeutil.NewLocal(start)
		endLocal := timeutil.NewLocal(end)
		res.Entries = append(res.Entries, timekeep.Timer{
			Name:      name,
			StartTime: &startLocal,
			EndTime:   &endLocal,
		})
	}
	return res
}

func detectDelimiter(header string) rune {
	delims := []rune{',', ';', '\t'}
	best := delims[0]
	bestCount := strings.Count(header, string(best))
	for _, d := range delims[1:] {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// splitHeader is a plain split for sniffing only; real rows go through
// encoding/csv so quoting works.
func splitHeader(header string, delim rune) []string {
	return strings.Split(header, string(delim))
}

// mapColumns claims one header column per role, in role order, so a
// header like "startdato" cannot satisfy both date and start at once.
func mapColumns(columns []string) (columnRoles, bool) {
	roles := columnRoles{date: -1, start: -1, end: -1, name: -1}
	claimed := make([]bool, len(columns))

	assign := func(role string) int {
		for _, word := range csvVocabulary[role] {
			for i, col := range columns {
				if claimed[i] {
					continue
				}
				if headerMatches(strings.ToLower(strings.TrimSpace(col)), word) {
					claimed[i] = true
					return i
				}
			}
		}
		return -1
	}

	roles.date = assign("date")
	roles.start = assign("start")
	roles.end = assign("end")
	roles.name = assign("name")
	return roles, roles.date >= 0 && roles.start >= 0 && roles.end >= 0
}

// headerMatches is deliberately loose for long vocabulary words but
// demands a word boundary for short ones, so "Total" never passes for
// the end column via "to".
func headerMatches(field, word string) bool {
	if field == word {
		return true
	}
	if len(word) >= 4 {
		return strings.Contains(field, word)
	}
	return strings.HasPrefix(field, word+" ") || strings.HasSuffix(field, " "+word)
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
