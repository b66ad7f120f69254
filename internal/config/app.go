package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// DefaultDirName defines the folder under the user's home directory.
	DefaultDirName = ".timeflow"

	appFileName = "config.toml"
)

// App is the file-level configuration: where the notes live and how the
// tool behaves around them. It is stored as TOML in the timeflow home.
type App struct {
	DataDir          string `toml:"data_dir"`
	TimekeepNote     string `toml:"timekeep_note"`
	HolidayNote      string `toml:"holiday_note"`
	HolidaySection   string `toml:"holiday_section"`
	Language         string `toml:"language"`
	ReloadSuppressMS int    `toml:"reload_suppress_ms"`
}

// ResolveBaseDir determines where timeflow keeps its configuration and
// notes, defaulting to ~/.timeflow. The location can be overridden by
// exporting TIMEFLOW_HOME.
func ResolveBaseDir() (string, error) {
	if override, ok := os.LookupEnv("TIMEFLOW_HOME"); ok {
		override = strings.TrimSpace(override)
		if override != "" {
			return normalizePath(override)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

func normalizePath(input string) (string, error) {
	if strings.HasPrefix(input, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		input = filepath.Join(home, strings.TrimPrefix(input, "~"))
	}
	return input, nil
}

// DefaultApp returns the configuration used when no file exists yet.
func DefaultApp(baseDir string) App {
	return App{
		DataDir:          baseDir,
		TimekeepNote:     "timekeep.md",
		HolidayNote:      "holidays.md",
		HolidaySection:   "## Planlagt fravær",
		Language:         "en",
		ReloadSuppressMS: 500,
	}
}

// LoadApp reads the app configuration, writing an annotated default
// file on first run. A missing file is not an error; a broken one is.
func LoadApp() (App, error) {
	dir, err := ResolveBaseDir()
	if err != nil {
		return App{}, err
	}

	path := filepath.Join(dir, appFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		app := DefaultApp(dir)
		if werr := writeDefaultApp(path, app); werr != nil {
			log.Printf("timeflow: could not write default config: %v", werr)
		}
		return app, nil
	}
	if err != nil {
		return App{}, fmt.Errorf("read config: %w", err)
	}

	var app App
	if err := toml.Unmarshal(data, &app); err != nil {
		return App{}, fmt.Errorf("parse %s: %w", path, err)
	}
	app.setDefaults(dir)
	return app, nil
}

const appTemplate = `# timeflow configuration

# Directory holding the notes. Relative note paths resolve against it.
data_dir = %q

# Markdown note carrying the timekeep and settings blocks.
timekeep_note = %q

# Markdown note carrying the planned-absence calendar.
holiday_note = %q

# Heading that marks the calendar section inside the holiday note.
holiday_section = %q

# Display language (en, nb).
language = %q

# How long after a save an external reload stays suppressed.
reload_suppress_ms = %d
`

func writeDefaultApp(path string, app App) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body := fmt.Sprintf(appTemplate,
		app.DataDir, app.TimekeepNote, app.HolidayNote,
		app.HolidaySection, app.Language, app.ReloadSuppressMS)
	return os.WriteFile(path, []byte(body), 0o644)
}

func (a *App) setDefaults(baseDir string) {
	def := DefaultApp(baseDir)
	if a.DataDir == "" {
		a.DataDir = def.DataDir
	} else if expanded, err := normalizePath(a.DataDir); err == nil {
		a.DataDir = expanded
	}
	if a.TimekeepNote == "" {
		a.TimekeepNote = def.TimekeepNote
	}
	if a.HolidayNote == "" {
		a.HolidayNote = def.HolidayNote
	}
	if a.HolidaySection == "" {
		a.HolidaySection = def.HolidaySection
	}
	if a.Language == "" {
		a.Language = def.Language
	}
	if a.ReloadSuppressMS <= 0 {
		a.ReloadSuppressMS = def.ReloadSuppressMS
	}
}

// TimekeepPath returns the resolved path of the timekeep note.
func (a App) TimekeepPath() string { return a.resolve(a.TimekeepNote) }

// HolidayPath returns the resolved path of the holiday note.
func (a App) HolidayPath() string { return a.resolve(a.HolidayNote) }

func (a App) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.DataDir, p)
}

// ReloadWindow is the span after a save during which an external
// reload is considered unsafe.
func (a App) ReloadWindow() time.Duration {
	return time.Duration(a.ReloadSuppressMS) * time.Millisecond
}
