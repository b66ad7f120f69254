package timeutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LayoutLocal is the canonical timestamp layout of the timekeep block:
// local wall-clock time with no zone suffix. The omission is deliberate;
// all arithmetic treats stored values as naive local time.
const LayoutLocal = "2006-01-02T15:04:05"

// DayLayout is the calendar-date layout used for day keys and the
// holiday calendar.
const DayLayout = "2006-01-02"

// LocalTime is a wall-clock timestamp as stored in the note. It keeps
// the raw text it was parsed from so that migration passes can tell
// whether re-serializing would change the file.
type LocalTime struct {
	time.Time
	raw string
}

// NewLocal builds a canonical LocalTime from t, dropping sub-second
// precision and pinning the location to local.
func NewLocal(t time.Time) LocalTime {
	lt := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
	return LocalTime{Time: lt, raw: lt.Format(LayoutLocal)}
}

// ParseLocal reads a timestamp in any accepted wire form. Values with a
// "Z" or offset suffix are legacy artifacts: the written wall-clock
// fields are reinterpreted as local time, not converted between zones.
func ParseLocal(s string) (LocalTime, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return LocalTime{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range []string{
		LayoutLocal,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
	} {
		if t, err := time.ParseInLocation(layout, str, time.Local); err == nil {
			clean := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
			return LocalTime{Time: clean, raw: str}, nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		clean := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
		return LocalTime{Time: clean, raw: str}, nil
	}

	return LocalTime{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// String renders the canonical wire form.
func (lt LocalTime) String() string {
	return lt.Format(LayoutLocal)
}

// DayKey returns the calendar-date key of the timestamp.
func (lt LocalTime) DayKey() string {
	return lt.Format(DayLayout)
}

// Canonical reports whether the text this value was read from already
// matches the canonical local layout. Values built in-process are
// canonical by construction.
func (lt LocalTime) Canonical() bool {
	return lt.raw == "" || lt.raw == lt.Format(LayoutLocal)
}

// MarshalJSON writes the canonical wire form.
func (lt LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(lt.String())
}

// UnmarshalJSON accepts every form ParseLocal does.
func (lt *LocalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocal(s)
	if err != nil {
		return err
	}
	*lt = parsed
	return nil
}
