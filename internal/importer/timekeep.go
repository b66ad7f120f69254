package importer

import (
	"encoding/json"
	"strings"

	"github.com/timeflowhq/timeflow/internal/timekeep"
)

// timekeepJSON accepts a full note payload, the object with an
// "entries" array that the fenced block in the note carries. Groups
// and sub entries survive the trip untouched.
type timekeepJSON struct{}

func (timekeepJSON) Name() string { return "timekeep" }

func (timekeepJSON) CanParse(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `"entries"`)
}

func (timekeepJSON) Parse(text string) Result {
	var res Result

	var doc struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		res.errorf("not a timekeep document: %v", err)
		return res
	}

	for i, raw := range doc.Entries {
		var t timekeep.Timer
		if err := json.Unmarshal(raw, &t); err != nil {
			res.warnf("entry %d: %v", i+1, err)
			continue
		}
		if strings.TrimSpace(t.Name) == "" {
			res.warnf("entry %d: missing name", i+1)
			continue
		}
		if t.StartTime == nil && len(t.SubEntries) == 0 {
			res.warnf("entry %d (%s): missing start time", i+1, t.Name)
			continue
		}
		res.Entries = append(res.Entries, t)
	}
	return res
}
