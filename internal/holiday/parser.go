package holiday

import (
	"bufio"
	"errors"
	"io/fs"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/timeflowhq/timeflow/internal/timeutil"
)

var (
	entryPattern  = regexp.MustCompile(`^-\s+(\d{4}-\d{2}-\d{2}):\s*([^:]+?)\s*(?::\s*(.*))?$`)
	windowPattern = regexp.MustCompile(`\b(\d{1,2}[:.]\d{2})\s*-\s*(\d{1,2}[:.]\d{2})\b`)
)

// Load reads and parses the holiday note. A missing file yields an
// empty calendar; other read failures are logged and also yield empty.
func Load(path, section string) Calendar {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("timeflow: read holiday note: %v", err)
		}
		return Calendar{}
	}
	return Parse(string(data), section)
}

// Parse extracts the calendar entries from note text. The section
// marker is matched on its trimmed line; entries live in the fenced
// block that follows, though a bare list under the marker is tolerated.
// Malformed lines are skipped, order is preserved.
func Parse(text, section string) Calendar {
	const (
		seekMarker = iota
		seekBlock
		inBlock
	)

	var cal Calendar
	state := seekMarker
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch state {
		case seekMarker:
			if line == strings.TrimSpace(section) {
				state = seekBlock
			}
		case seekBlock:
			switch {
			case strings.HasPrefix(line, "```"):
				state = inBlock
			case strings.HasPrefix(line, "#"):
				return cal
			default:
				if entry, ok := parseLine(line); ok {
					cal.Entries = append(cal.Entries, entry)
				}
			}
		case inBlock:
			if strings.HasPrefix(line, "```") {
				return cal
			}
			if entry, ok := parseLine(line); ok {
				cal.Entries = append(cal.Entries, entry)
			}
		}
	}
	return cal
}

func parseLine(line string) (Entry, bool) {
	matches := entryPattern.FindStringSubmatch(line)
	if matches == nil {
		return Entry{}, false
	}

	date, err := timeutil.ParseDayKey(matches[1])
	if err != nil {
		return Entry{}, false
	}
	typ := strings.ToLower(strings.TrimSpace(matches[2]))
	if typ == "" {
		return Entry{}, false
	}

	entry := Entry{
		Date:        date,
		Type:        typ,
		Description: strings.TrimSpace(matches[3]),
	}
	entry.HalfDay = hasHalfDayMarker(entry.Description)
	if start, end, ok := parseWindow(entry.Description, date); ok {
		entry.Start, entry.End = &start, &end
	}
	return entry, true
}

func hasHalfDayMarker(desc string) bool {
	lower := strings.ToLower(desc)
	return strings.Contains(lower, "halv dag") ||
		strings.Contains(lower, "halvdag") ||
		strings.Contains(lower, "half day")
}

func parseWindow(desc string, day time.Time) (time.Time, time.Time, bool) {
	matches := windowPattern.FindStringSubmatch(desc)
	if matches == nil {
		return time.Time{}, time.Time{}, false
	}
	startHour, startMin, err := timeutil.ParseClockLiteral(matches[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endHour, endMin, err := timeutil.ParseClockLiteral(matches[2])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return timeutil.At(day, startHour, startMin), timeutil.At(day, endHour, endMin), true
}
