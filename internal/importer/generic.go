package importer

import (
	"encoding/json"
	"strings"

	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// genericJSON accepts an array of flat objects from other trackers.
// Field names are matched by the same Norwegian and English synonyms
// as the csv columns, and timestamps may be combined datetimes or a
// date plus a clock.
type genericJSON struct{}

func (genericJSON) Name() string { return "json" }

func (genericJSON) CanParse(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "[")
}

func (genericJSON) Parse(text string) Result {
	var res Result

	var rows []map[string]any
	if err := json.Unmarshal([]byte(text), &rows); err != nil {
		res.errorf("not a json array of objects: %v", err)
		return res
	}

	for i, row := range rows {
		fields := stringFields(row)
		num := i + 1

		name := pick(fields, "name", "navn", "aktivitet", "activity", "type", "art", "beskrivelse", "description")
		if name == "" {
			name = defaultActivity
		}

		date := pick(fields, "date", "dato", "dag", "day")
		start, err := resolveStamp(pick(fields, "starttime", "start", "fra", "from", "begin"), date)
		if err != nil {
			res.warnf("element %d (%s): start: %v", num, name, err)
			continue
		}
		if start == nil {
			res.warnf("element %d (%s): missing start time", num, name)
			continue
		}

		entry := timekeep.Timer{Name: name, StartTime: start}

		rawEnd := pick(fields, "endtime", "end", "slutt", "stopp", "stop", "til", "to")
		if rawEnd != "" {
			end, err := resolveStamp(rawEnd, date)
			if err != nil {
				res.warnf("element %d (%s): end: %v", num, name, err)
				continue
			}
			if end != nil && end.Time.Before(start.Time) && !strings.Contains(rawEnd, "T") {
				// Clock-only ends roll past midnight like csv rows.
				// Full datetimes are taken at face value.
				rolled := timeutil.NewLocal(end.AddDate(0, 0, 1))
				end = &rolled
			}
			entry.EndTime = end
		}

		res.Entries = append(res.Entries, entry)
	}
	return res
}

// resolveStamp turns a combined datetime, or a clock literal paired
// with a date, into a local timestamp. An empty value is not an error;
// it just resolves to nothing.
func resolveStamp(value, date string) (*timeutil.LocalTime, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if strings.Contains(value, "T") || strings.Count(value, "-") >= 2 || len(value) > 10 {
		lt, err := timeutil.ParseLocal(value)
		if err != nil {
			return nil, err
		}
		return &lt, nil
	}

	day, err := timeutil.ParseDateLiteral(date)
	if err != nil {
		return nil, err
	}
	h, m, err := timeutil.ParseClockLiteral(value)
	if err != nil {
		return nil, err
	}
	lt := timeutil.NewLocal(timeutil.At(day, h, m))
	return &lt, nil
}

// stringFields lowers the keys and keeps only string values, the only
// kind a foreign export puts times and names in.
func stringFields(row map[string]any) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		if s, ok := v.(string); ok {
			out[strings.ToLower(k)] = s
		}
	}
	return out
}

func pick(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
