package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timeflowhq/timeflow/internal/holiday"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

func newHolidayCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Manage the planned-absence calendar.",
	}

	cmd.AddCommand(
		newHolidayAddCommand(env),
		newHolidayListCommand(env),
	)

	return cmd
}

func newHolidayAddCommand(env *Env) *cobra.Command {
	var (
		halfDay  bool
		fromFlag string
		toFlag   string
	)

	cmd := &cobra.Command{
		Use:   "add <date> <type> [note ...]",
		Short: "Plan an absence day.",
		Long:  "add appends a dated line to the calendar note. A clock window or a half-day marker is carried in the note text and honored when the day converts.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := timeutil.ParseDateLiteral(args[0])
			if err != nil {
				return fmt.Errorf("parse date: %w", err)
			}

			entry := holiday.Entry{
				Date:        timeutil.StartOfDay(date),
				Type:        args[1],
				Description: strings.TrimSpace(strings.Join(args[2:], " ")),
				HalfDay:     halfDay,
			}

			if (fromFlag == "") != (toFlag == "") {
				return fmt.Errorf("--from and --to must be given together")
			}
			if fromFlag != "" {
				start, err := resolveClock(entry.Date, fromFlag)
				if err != nil {
					return err
				}
				end, err := resolveClock(entry.Date, toFlag)
				if err != nil {
					return err
				}
				entry.Start = &start
				entry.End = &end
			}

			if err := holiday.Append(env.App.HolidayPath(), env.App.HolidaySection, entry); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), env.Lang.Tf("holiday.added",
				entry.Type, entry.Date.Format(timeutil.DayLayout)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&halfDay, "half-day", false, "Mark the absence as half a day")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Explicit start clock (HH:MM)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Explicit end clock (HH:MM)")

	return cmd
}

func newHolidayListCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show planned days and their conversion status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cal := env.Calendar()
			if len(cal.Entries) == 0 {
				fmt.Fprintln(out, "(no planned days)")
				return nil
			}

			today := time.Now()
			for _, e := range cal.Entries {
				behavior := env.Settings.BehaviorFor(e.Type)
				converts := behavior != nil && behavior.ConvertsPastDays()
				status := e.Status(today, env.Store.HasEntryOn(e.Date, e.Type), converts)

				line := fmt.Sprintf("%s %s [%s]", e.Date.Format(timeutil.DayLayout), e.Type, status)
				if e.HalfDay {
					line += " (halv dag)"
				}
				if e.Description != "" {
					line += " " + e.Description
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	return cmd
}
