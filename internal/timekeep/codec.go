package timekeep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timeflowhq/timeflow/internal/notes"
)

// DefaultHeader starts a freshly created note.
const DefaultHeader = "# Timeoversikt"

const (
	entriesFenceTag  = "timekeep"
	settingsFenceTag = "timeflow-settings"
)

// ParseNote pulls the timer document and the raw settings overlay out
// of note text. A settings block wins over a legacy overlay embedded
// inside the timekeep block. A note without a timekeep block yields an
// empty document.
func ParseNote(text string) (Document, []byte, error) {
	lines := notes.SplitLines(text)

	var doc Document
	if body, ok := blockBody(lines, entriesFenceTag); ok {
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return Document{}, nil, fmt.Errorf("parse timekeep block: %w", err)
		}
	}

	var settings []byte
	if body, ok := blockBody(lines, settingsFenceTag); ok {
		if trimmed := strings.TrimSpace(body); trimmed != "" {
			settings = []byte(trimmed)
		}
	}
	if settings == nil && len(doc.Settings) > 0 {
		settings = append([]byte(nil), doc.Settings...)
	}
	return doc, settings, nil
}

// RenderNote writes the document and overlay back into note text,
// replacing each fenced block in place and appending blocks that are
// missing. Content around the blocks is preserved; an empty note gains
// the default header. The legacy embedded overlay is dropped in favor
// of the separate block.
func RenderNote(text string, doc Document, settings []byte) (string, error) {
	doc.Settings = nil
	if doc.Entries == nil {
		doc.Entries = []Timer{}
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode timekeep block: %w", err)
	}

	lines := notes.SplitLines(text)
	if len(lines) == 0 {
		lines = []string{DefaultHeader}
	}

	lines = setBlock(lines, entriesFenceTag, notes.SplitLines(string(payload)))
	if len(settings) > 0 {
		body := settings
		var buf bytes.Buffer
		// Hand-edited overlays that no longer parse are kept verbatim.
		if err := json.Indent(&buf, settings, "", "  "); err == nil {
			body = buf.Bytes()
		}
		lines = setBlock(lines, settingsFenceTag, notes.SplitLines(string(body)))
	}

	return strings.Join(lines, "\n") + "\n", nil
}

func fenceLine(tag string) string { return "```" + tag }

// findBlock locates the fence pair for tag. An unclosed block runs to
// the end of the note.
func findBlock(lines []string, tag string) (open, closing int, ok bool) {
	open = -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if open == -1 {
			if trimmed == fenceLine(tag) {
				open = i
			}
			continue
		}
		if trimmed == "```" {
			return open, i, true
		}
	}
	if open >= 0 {
		return open, len(lines), true
	}
	return 0, 0, false
}

func blockBody(lines []string, tag string) (string, bool) {
	open, closing, ok := findBlock(lines, tag)
	if !ok {
		return "", false
	}
	return strings.Join(lines[open+1:closing], "\n"), true
}

func setBlock(lines []string, tag string, body []string) []string {
	open, closing, ok := findBlock(lines, tag)
	if !ok {
		if notes.NeedsSeparation(lines) {
			lines = append(lines, "")
		}
		lines = append(lines, fenceLine(tag))
		lines = append(lines, body...)
		return append(lines, "```")
	}

	out := make([]string, 0, open+1+len(body)+len(lines)-closing)
	out = append(out, lines[:open+1]...)
	out = append(out, body...)
	if closing < len(lines) {
		out = append(out, lines[closing:]...)
	} else {
		out = append(out, "```")
	}
	return out
}
