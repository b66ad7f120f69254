package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/export"
	"github.com/timeflowhq/timeflow/internal/importer"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

func newImportCommand(env *Env) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from a timekeep, CSV or JSON export.",
		Long:  "import auto-detects the file format, merges the entries into the note, and reports duplicates separately from additions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			var res importer.Result
			if formatFlag != "" {
				format, ok := importer.ByName(formatFlag)
				if !ok {
					return fmt.Errorf("unknown format %q", formatFlag)
				}
				res = format.Parse(string(data))
			} else {
				res = importer.Detect(string(data))
			}

			out := cmd.OutOrStdout()
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%s", strings.Join(res.Errors, "; "))
			}
			if !res.Success() {
				fmt.Fprintln(out, env.Lang.T("import.nothing"))
				return nil
			}

			added, skipped := env.Store.Merge(res.Entries)
			fmt.Fprintln(out, env.Lang.Tf("import.added", added, skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Force a format instead of auto-detection (timekeep, csv, json)")

	return cmd
}

func newExportCommand(env *Env) *cobra.Command {
	var (
		entriesFlag bool
		outFlag     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked data as CSV.",
		Long:  "export writes the per-day summary CSV, or with --entries the raw entry list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			flat := env.Store.FlatEntries()

			var body string
			if entriesFlag {
				body = export.EntriesCSV(flat)
			} else {
				today := timeutil.StartOfDay(time.Now())
				from := env.Settings.StartDate()
				if from.IsZero() {
					from = today
					for _, e := range flat {
						if day := timeutil.StartOfDay(e.Start); day.Before(from) {
							from = day
						}
					}
				}
				body = export.SummaryCSV(env.Engine().Days(flat, from, today))
			}

			if outFlag == "" {
				fmt.Fprint(cmd.OutOrStdout(), body)
				return nil
			}
			if err := os.WriteFile(outFlag, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outFlag)
			return nil
		},
	}

	cmd.Flags().BoolVar(&entriesFlag, "entries", false, "Export raw entries instead of the day summary")
	cmd.Flags().StringVar(&outFlag, "out", "", "Write to a file instead of stdout")

	return cmd
}

func newConvertCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Turn past planned absence days into timer entries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := env.Store.ConvertPastPlannedDays(env.Calendar(), env.Settings, time.Now())

			out := cmd.OutOrStdout()
			if n == 0 {
				fmt.Fprintln(out, env.Lang.T("convert.none"))
				return nil
			}
			fmt.Fprintln(out, env.Lang.Tf("convert.done", n))
			return nil
		},
	}

	return cmd
}

func newTypesCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the configured day types and their flextime effects.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s (%s)\n", env.Settings.WorkTypeID, env.Lang.T("worked.label"))
			for _, b := range env.Settings.SpecialDayBehaviors {
				line := fmt.Sprintf("%s %s", b.Icon, b.ID)
				if b.Label != "" && !strings.EqualFold(b.Label, b.ID) {
					line += fmt.Sprintf(" (%s)", b.Label)
				}
				var notes []string
				if b.FlextimeEffect != "" && b.FlextimeEffect != config.EffectNone {
					notes = append(notes, string(b.FlextimeEffect))
				}
				if b.NoHoursRequired {
					notes = append(notes, "no hours required")
				}
				if b.MaxDaysPerYear != nil {
					notes = append(notes, fmt.Sprintf("max %d/year", *b.MaxDaysPerYear))
				}
				if len(notes) > 0 {
					line += ": " + strings.Join(notes, ", ")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	return cmd
}
