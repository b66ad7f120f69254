package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/timeflowhq/timeflow/internal/balance"
	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/holiday"
	"github.com/timeflowhq/timeflow/internal/i18n"
	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/ui"
	"github.com/timeflowhq/timeflow/internal/version"
)

// Env bundles the loaded configuration and the note store that every
// command works against.
type Env struct {
	App      config.App
	Store    *timekeep.Store
	Settings config.Settings
	Lang     i18n.Translator
}

// Calendar reads the planned-absence note fresh, so commands always see
// edits made outside this process.
func (e *Env) Calendar() holiday.Calendar {
	return holiday.Load(e.App.HolidayPath(), e.App.HolidaySection)
}

// Engine builds a balance engine over the current settings and
// calendar.
func (e *Env) Engine() *balance.Engine {
	return balance.NewEngine(e.Settings, e.Calendar())
}

// NewRootCommand creates the top-level Cobra command to host subcommands and the dashboard launcher.
func NewRootCommand(ctx context.Context, env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeflow",
		Short: "Track work hours and flextime balance from your terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := ui.NewModel(ctx, env.Store, env.Settings, env.App, env.Lang)
			if _, err := tea.NewProgram(m).Run(); err != nil {
				return fmt.Errorf("run dashboard: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newStartCommand(env),
		newStopCommand(env),
		newStatusCommand(env),
		newAddCommand(env),
		newDeleteCommand(env),
		newListCommand(env),
		newBalanceCommand(env),
		newReportCommand(env),
		newImportCommand(env),
		newExportCommand(env),
		newConvertCommand(env),
		newHolidayCommand(env),
		newTypesCommand(env),
		newVersionCommand(),
	)

	return cmd
}

// ExecuteCommand loads the configuration and notes, then executes the
// Cobra root command. The timestamp migration runs here, once per
// invocation, and persists only when it changed something.
func ExecuteCommand(ctx context.Context) error {
	app, err := config.LoadApp()
	if err != nil {
		return err
	}

	store := timekeep.NewStore(app.TimekeepPath(), app.ReloadWindow())
	store.Load()
	if store.NormalizeTimestamps() {
		store.Save()
	}

	cfg, err := config.Merge(config.Default(), store.SettingsRaw())
	if err != nil {
		log.Printf("timeflow: %v (using defaults)", err)
	}

	env := &Env{
		App:      app,
		Store:    store,
		Settings: cfg,
		Lang:     i18n.New(app.Language),
	}
	cmd := NewRootCommand(ctx, env)
	return cmd.Execute()
}

// Main is a helper used by cmd/timeflow/main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
}
