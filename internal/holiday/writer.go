package holiday

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/timeflowhq/timeflow/internal/notes"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// Append adds one entry at the end of the calendar block, creating the
// section and block when missing. Surrounding note content is left
// untouched.
func Append(path, section string, entry Entry) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read holiday note: %w", err)
	}
	lines := notes.SplitLines(string(data))

	formatted := formatLine(entry)
	marker := notes.FindLine(lines, section)
	if marker == -1 {
		if notes.NeedsSeparation(lines) {
			lines = append(lines, "")
		}
		lines = append(lines, strings.TrimSpace(section), "```", formatted, "```")
	} else {
		closing := findBlockEnd(lines, marker)
		if closing == -1 {
			lines = notes.InsertLine(lines, marker+1, "```")
			lines = notes.InsertLine(lines, marker+2, formatted)
			lines = notes.InsertLine(lines, marker+3, "```")
		} else {
			lines = notes.InsertLine(lines, closing, formatted)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return notes.WriteLines(path, lines)
}

// findBlockEnd locates the closing fence of the block following the
// marker line, or -1 when the section has no fenced block.
func findBlockEnd(lines []string, marker int) int {
	opened := false
	for i := marker + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "```") {
			if opened {
				return i
			}
			opened = true
			continue
		}
		if !opened && strings.HasPrefix(trimmed, "#") {
			return -1
		}
	}
	return -1
}

func formatLine(entry Entry) string {
	desc := entry.Description
	if entry.Start != nil && entry.End != nil && !windowPattern.MatchString(desc) {
		window := fmt.Sprintf("%s-%s", entry.Start.Format("15:04"), entry.End.Format("15:04"))
		desc = strings.TrimSpace(window + " " + desc)
	}
	if entry.HalfDay && !hasHalfDayMarker(desc) {
		desc = strings.TrimSpace(desc + " (halv dag)")
	}

	if desc == "" {
		return fmt.Sprintf("- %s: %s", entry.Date.Format(timeutil.DayLayout), entry.Type)
	}
	return fmt.Sprintf("- %s: %s: %s", entry.Date.Format(timeutil.DayLayout), entry.Type, desc)
}
