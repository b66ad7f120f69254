// Package notes holds the line-level helpers shared by the markdown
// codecs: lossless line splitting, in-place insertion, and atomic
// rewrite of a note file.
package notes

import (
	"os"
	"path/filepath"
	"strings"
)

// SplitLines breaks note text into lines, normalizing CRLF.
func SplitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	// Remove the trailing empty element produced by Split when the input ends with a newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// NeedsSeparation reports whether appending a new section requires a
// blank line first.
func NeedsSeparation(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	return strings.TrimSpace(lines[len(lines)-1]) != ""
}

// InsertLine places line at index, appending when out of range.
func InsertLine(lines []string, index int, line string) []string {
	if index < 0 || index > len(lines) {
		return append(lines, line)
	}
	lines = append(lines[:index], append([]string{line}, lines[index:]...)...)
	return lines
}

// FindLine returns the index of the first line whose trimmed text
// equals want, or -1.
func FindLine(lines []string, want string) int {
	want = strings.TrimSpace(want)
	for i, line := range lines {
		if strings.TrimSpace(line) == want {
			return i
		}
	}
	return -1
}

// WriteLines rewrites path atomically via a temp file in the same
// directory, preserving the file mode of an existing target.
func WriteLines(path string, lines []string) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "timeflow-*")
	if err != nil {
		return err
	}
	defer os.Remove(temp.Name())

	content := strings.Join(lines, "\n")
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if _, err := temp.WriteString(content); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Close(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err == nil {
		if err := os.Chmod(temp.Name(), info.Mode()); err != nil {
			return err
		}
	}

	return os.Rename(temp.Name(), path)
}
