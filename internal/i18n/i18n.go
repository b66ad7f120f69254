// Package i18n provides the user-facing string catalog. The catalog
// is tiny on purpose: English and norsk bokmål, flat keys, English as
// the fallback for anything a locale does not carry.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.Norwegian,
}

var matcher = language.NewMatcher(supported)

// Translator resolves catalog keys for one locale. The zero value
// translates to English.
type Translator struct {
	table map[string]string
}

// New builds a Translator for a BCP 47 language code such as "nb",
// "nb-NO" or "en-US". Unknown codes fall back to English.
func New(code string) Translator {
	_, idx := language.MatchStrings(matcher, code)
	if supported[idx] == language.Norwegian {
		return Translator{table: norwegian}
	}
	return Translator{}
}

// T resolves a catalog key. Keys missing from the locale fall back to
// English; keys missing entirely come back verbatim so a typo is
// visible instead of silent.
func (t Translator) T(key string) string {
	if s, ok := t.table[key]; ok {
		return s
	}
	if s, ok := english[key]; ok {
		return s
	}
	return key
}

// Tf is T with fmt.Sprintf arguments.
func (t Translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

var english = map[string]string{
	"timer.started":     "Started %s at %s",
	"timer.stopped":     "Stopped %s after %s",
	"timer.running":     "%s running since %s (%s)",
	"timer.none":        "No timer is running",
	"timer.already":     "%s is already running",
	"timer.added":       "Added %s: %s",
	"timer.deleted":     "Deleted %s",
	"entry.duplicate":   "skipped as duplicate",
	"balance.label":     "Flextime balance",
	"balance.asof":      "Balance as of %s: %s",
	"goal.label":        "Goal",
	"worked.label":      "Worked",
	"weekend.label":     "Weekend hours",
	"week.label":        "This week",
	"month.label":       "This month",
	"year.label":        "This year",
	"today.label":       "Today",
	"import.added":      "Imported %d entries (%d duplicates skipped)",
	"import.nothing":    "Nothing to import",
	"convert.done":      "Converted %d calendar days to timers",
	"convert.none":      "No calendar days due for conversion",
	"holiday.added":     "Planned %s on %s",
	"dashboard.loading": "Loading notes",
	"tab.overview":      "Overview",
	"tab.calendar":      "Calendar",
	"tab.stats":         "Statistics",
	"calendar.weekdays": "Mo Tu We Th Fr Sa Su",
	"help.quit":         "quit",
	"help.reload":       "reload",
	"help.tab":          "switch view",
	"help.navigate":     "navigate",
	"help.more":         "more",
	"vacation.used":     "Vacation days used",
	"vacation.over":     "over the yearly allowance",
}

var norwegian = map[string]string{
	"timer.started":     "Startet %s kl. %s",
	"timer.stopped":     "Stoppet %s etter %s",
	"timer.running":     "%s har gått siden %s (%s)",
	"timer.none":        "Ingen tidtaker er i gang",
	"timer.already":     "%s er allerede i gang",
	"timer.added":       "La til %s: %s",
	"timer.deleted":     "Slettet %s",
	"entry.duplicate":   "hoppet over som duplikat",
	"balance.label":     "Fleksitidsaldo",
	"balance.asof":      "Saldo per %s: %s",
	"goal.label":        "Mål",
	"worked.label":      "Arbeidet",
	"weekend.label":     "Helgetimer",
	"week.label":        "Denne uken",
	"month.label":       "Denne måneden",
	"year.label":        "I år",
	"today.label":       "I dag",
	"import.added":      "Importerte %d oppføringer (%d duplikater hoppet over)",
	"import.nothing":    "Ingenting å importere",
	"convert.done":      "Konverterte %d kalenderdager til tidtakere",
	"convert.none":      "Ingen kalenderdager klare for konvertering",
	"holiday.added":     "Planla %s den %s",
	"dashboard.loading": "Laster notater",
	"tab.overview":      "Oversikt",
	"tab.calendar":      "Kalender",
	"tab.stats":         "Statistikk",
	"calendar.weekdays": "Ma Ti On To Fr Lø Sø",
	"help.quit":         "avslutt",
	"help.reload":       "last inn på nytt",
	"help.tab":          "bytt visning",
	"help.navigate":     "naviger",
	"help.more":         "mer",
	"vacation.used":     "Feriedager brukt",
	"vacation.over":     "over årskvoten",
}
