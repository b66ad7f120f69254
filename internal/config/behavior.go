package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PublicHolidayID is the built-in behavior for public holidays. It is
// the one shipped type that never converts into timer entries.
const PublicHolidayID = "helligdag"

// FlextimeEffect describes how hours logged under a behavior touch the
// running flextime balance.
type FlextimeEffect string

const (
	// EffectNone counts hours at face value against the daily goal.
	EffectNone FlextimeEffect = "none"
	// EffectWithdraw spends balance: the hours subtract directly.
	EffectWithdraw FlextimeEffect = "withdraw"
	// EffectAccumulate builds balance with hours beyond the daily goal.
	EffectAccumulate FlextimeEffect = "accumulate"
)

func (e *FlextimeEffect) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch FlextimeEffect(s) {
	case EffectNone, EffectWithdraw, EffectAccumulate:
		*e = FlextimeEffect(s)
		return nil
	case "":
		*e = EffectNone
		return nil
	}
	return fmt.Errorf("unknown flextime effect %q", s)
}

// Behavior configures one absence or special-day type. ID is the join
// key against timer names and holiday calendar types.
type Behavior struct {
	ID              string         `json:"id"`
	Label           string         `json:"label"`
	Icon            string         `json:"icon,omitempty"`
	Color           string         `json:"color,omitempty"`
	NoHoursRequired bool           `json:"noHoursRequired"`
	FlextimeEffect  FlextimeEffect `json:"flextimeEffect"`
	IncludeInStats  bool           `json:"includeInStats"`
	MaxDaysPerYear  *int           `json:"maxDaysPerYear,omitempty"`
	ConvertPastDays *bool          `json:"convertPastDays,omitempty"`
}

// ConvertsPastDays reports whether planned days of this type are
// materialized into timer entries once the date has passed. Unset falls
// back to the shipped rule: no-hours types convert, the public-holiday
// type does not.
func (b Behavior) ConvertsPastDays() bool {
	if b.ConvertPastDays != nil {
		return *b.ConvertPastDays
	}
	return b.NoHoursRequired && b.ID != PublicHolidayID
}

// DisplayLabel returns the label, falling back to the ID.
func (b Behavior) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	return b.ID
}

// BehaviorFor resolves a timer or calendar type name against the
// configured behaviors. Nil means ordinary work.
func (s Settings) BehaviorFor(name string) *Behavior {
	for i := range s.SpecialDayBehaviors {
		if strings.EqualFold(s.SpecialDayBehaviors[i].ID, name) {
			return &s.SpecialDayBehaviors[i]
		}
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
