// Package export renders computed time data as CSV text. The output
// is meant for download by the host, never parsed back by this
// program, so the column orders here are a stable contract.
package export

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/timeflowhq/timeflow/internal/balance"
	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// SummaryCSV renders day summaries as one row per day and type bucket,
// with hours worked and the flextime contribution of that bucket.
// Days without entries produce no rows.
func SummaryCSV(days []balance.DaySummary) string {
	var b strings.Builder
	b.WriteString("Date,Type,Hours,Flextime\n")

	for _, day := range days {
		type bucket struct {
			hours    float64
			flextime float64
		}
		buckets := make(map[string]*bucket)
		var order []string
		for _, e := range day.Entries {
			id := e.TypeID()
			agg, ok := buckets[id]
			if !ok {
				agg = &bucket{}
				buckets[id] = agg
				order = append(order, id)
			}
			agg.hours += e.Duration
			agg.flextime += e.Flextime
		}
		sort.Strings(order)

		date := day.Date.Format(timeutil.DayLayout)
		for _, id := range order {
			agg := buckets[id]
			b.WriteString(strings.Join([]string{
				csvEscape(date),
				csvEscape(id),
				csvNumber(agg.hours),
				csvNumber(agg.flextime),
			}, ","))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// EntriesCSV renders flattened timer entries verbatim, one row each.
func EntriesCSV(entries []timekeep.FlatEntry) string {
	var b strings.Builder
	b.WriteString("Name,Start Time,End Time,Duration\n")
	for _, e := range entries {
		b.WriteString(strings.Join([]string{
			csvEscape(e.Name),
			csvEscape(e.Start.Format(timeutil.LayoutLocal)),
			csvEscape(e.End.Format(timeutil.LayoutLocal)),
			csvNumber(e.Duration),
		}, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// csvNumber renders decimal hours with the shortest exact form, after
// shaving float accumulation noise.
func csvNumber(v float64) string {
	v = math.Round(v*1e9) / 1e9
	if v == 0 {
		// Avoid "-0" for tiny negative residue.
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
