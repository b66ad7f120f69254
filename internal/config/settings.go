// Package config holds the two configuration layers: the TOML app file
// under the timeflow home directory, and the settings document embedded
// in the timekeep note. The embedded document is partial; it overlays
// the shipped defaults at load time.
package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// Weekday accepts both lowercase names and legacy numeric values
// (0 = Sunday) in JSON, and always writes names.
type Weekday time.Weekday

func (w Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(time.Weekday(w).String()))
}

func (w *Weekday) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.EqualFold(d.String(), name) {
				*w = Weekday(d)
				return nil
			}
		}
		return fmt.Errorf("unknown weekday %q", name)
	}
	var num int
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("weekday must be a name or a number: %s", data)
	}
	if num < 0 || num > 6 {
		return fmt.Errorf("weekday %d out of range", num)
	}
	*w = Weekday(num)
	return nil
}

// HalfDayMode selects how a half-day goal is computed.
type HalfDayMode string

const (
	// HalfFixed uses the configured half-day hour count.
	HalfFixed HalfDayMode = "fixed"
	// HalfPercent uses a fraction of the full daily goal.
	HalfPercent HalfDayMode = "percent"
)

func (m *HalfDayMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch HalfDayMode(s) {
	case HalfFixed, HalfPercent:
		*m = HalfDayMode(s)
		return nil
	case "":
		*m = HalfFixed
		return nil
	}
	return fmt.Errorf("unknown half-day mode %q", s)
}

// Thresholds bound the balance for display warnings.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Limits flag suspiciously long entries and days during manual entry
// and import. Informational only.
type Limits struct {
	MaxEntryHours float64 `json:"maxEntryHours"`
	MaxDayHours   float64 `json:"maxDayHours"`
}

// Settings is the canonical configuration shape consumed by the engine.
// The note embeds a partial version of it; Merge produces the effective
// value.
type Settings struct {
	BaseWorkday         float64     `json:"baseWorkday"`
	BaseWorkweek        float64     `json:"baseWorkweek"`
	WorkPercent         float64     `json:"workPercent"`
	TrackWorkPercent    bool        `json:"trackWorkPercent"`
	WorkDays            []Weekday   `json:"workDays"`
	AlternateWorkDays   []Weekday   `json:"alternatingWeekWorkDays,omitempty"`
	UseAlternatingWeeks bool        `json:"useAlternatingWeeks"`
	WorkTypeID          string      `json:"workTypeId"`
	SpecialDayBehaviors []Behavior  `json:"specialDayBehaviors"`
	BalanceStartDate    string      `json:"balanceStartDate,omitempty"`
	HalfDayMode         HalfDayMode `json:"halfDayMode"`
	HalfDayHours        float64     `json:"halfDayHours"`
	HalfDayFraction     float64     `json:"halfDayPercent"`
	BalanceThresholds   Thresholds  `json:"balanceThresholds"`
	Validation          Limits      `json:"validationThresholds"`
}

// Default returns the shipped configuration.
func Default() Settings {
	return Settings{
		BaseWorkday:       7.5,
		BaseWorkweek:      37.5,
		WorkPercent:       1.0,
		WorkDays:          weekdayRange(time.Monday, time.Friday),
		AlternateWorkDays: weekdayRange(time.Monday, time.Friday),
		WorkTypeID:        "jobb",
		SpecialDayBehaviors: []Behavior{
			{ID: "ferie", Label: "Ferie", Icon: "🏖", Color: "#2e7d32", NoHoursRequired: true, FlextimeEffect: EffectNone, IncludeInStats: true, MaxDaysPerYear: intPtr(25)},
			{ID: "syk", Label: "Syk", Icon: "🤒", Color: "#c62828", NoHoursRequired: true, FlextimeEffect: EffectNone, IncludeInStats: true},
			{ID: "avspasering", Label: "Avspasering", Icon: "⏳", Color: "#1565c0", NoHoursRequired: true, FlextimeEffect: EffectWithdraw, IncludeInStats: true},
			{ID: "kurs", Label: "Kurs", Icon: "📚", Color: "#6a1b9a", NoHoursRequired: false, FlextimeEffect: EffectAccumulate, IncludeInStats: true},
			{ID: PublicHolidayID, Label: "Helligdag", Icon: "🎉", Color: "#ef6c00", NoHoursRequired: true, FlextimeEffect: EffectNone, IncludeInStats: false, ConvertPastDays: boolPtr(false)},
		},
		HalfDayMode:       HalfFixed,
		HalfDayHours:      3.75,
		HalfDayFraction:   0.5,
		BalanceThresholds: Thresholds{Low: -7.5, High: 15},
		Validation:        Limits{MaxEntryHours: 12, MaxDayHours: 16},
	}
}

// Merge overlays a partial settings document on top of base. Absent
// fields keep their base values; retired fields are folded into the
// canonical shape before the result is returned.
func Merge(base Settings, raw []byte) (Settings, error) {
	if len(raw) == 0 {
		return base, nil
	}
	merged := base
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base, fmt.Errorf("parse settings: %w", err)
	}
	var legacy legacySettings
	_ = json.Unmarshal(raw, &legacy)
	merged.upgrade(legacy)
	return merged, nil
}

type legacySettings struct {
	SpecialDayColors map[string]string `json:"specialDayColors"`
	SpecialDayLabels map[string]string `json:"specialDayLabels"`
}

// upgrade folds the retired specialDayColors and specialDayLabels maps
// into the behavior list. A configured behavior keeps its own values;
// ids known only to the legacy maps become minimal no-hours behaviors
// so old data keeps rendering. Nothing downstream sees the old shape.
func (s *Settings) upgrade(legacy legacySettings) {
	if len(legacy.SpecialDayColors) == 0 && len(legacy.SpecialDayLabels) == 0 {
		return
	}

	ids := make(map[string]bool)
	for id := range legacy.SpecialDayColors {
		ids[id] = true
	}
	for id := range legacy.SpecialDayLabels {
		ids[id] = true
	}
	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	for _, id := range ordered {
		b := s.BehaviorFor(id)
		if b == nil {
			s.SpecialDayBehaviors = append(s.SpecialDayBehaviors, Behavior{
				ID:              id,
				Label:           orDefault(legacy.SpecialDayLabels[id], id),
				Color:           legacy.SpecialDayColors[id],
				NoHoursRequired: true,
				FlextimeEffect:  EffectNone,
				IncludeInStats:  true,
			})
			continue
		}
		if b.Label == "" {
			b.Label = legacy.SpecialDayLabels[id]
		}
		if b.Color == "" {
			b.Color = legacy.SpecialDayColors[id]
		}
	}
}

// FullDayHours is the nominal daily goal before calendar adjustments.
func (s Settings) FullDayHours() float64 {
	full := s.BaseWorkday
	if s.TrackWorkPercent {
		full *= s.WorkPercent
	}
	return full
}

// HalfDayGoalHours is the reduced goal on a half absence day.
func (s Settings) HalfDayGoalHours() float64 {
	if s.HalfDayMode == HalfPercent {
		return s.FullDayHours() * s.HalfDayFraction
	}
	return s.HalfDayHours
}

// WorkdaySets returns the primary and alternate weekday sets for the
// calendar helpers.
func (s Settings) WorkdaySets() (primary, alternate []time.Weekday) {
	primary = make([]time.Weekday, len(s.WorkDays))
	for i, d := range s.WorkDays {
		primary[i] = time.Weekday(d)
	}
	alternate = make([]time.Weekday, len(s.AlternateWorkDays))
	for i, d := range s.AlternateWorkDays {
		alternate[i] = time.Weekday(d)
	}
	if len(alternate) == 0 {
		alternate = primary
	}
	return primary, alternate
}

// StartDate parses the configured balance start date. The zero time
// means no explicit start; the engine then begins at the earliest
// entry.
func (s Settings) StartDate() time.Time {
	if s.BalanceStartDate == "" {
		return time.Time{}
	}
	t, err := timeutil.ParseDayKey(s.BalanceStartDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func weekdayRange(from, to time.Weekday) []Weekday {
	var days []Weekday
	for d := from; d <= to; d++ {
		days = append(days, Weekday(d))
	}
	return days
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
