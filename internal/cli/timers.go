package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

func newStartCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [name]",
		Short: "Start a timer.",
		Long:  "start begins a new running timer. Without a name the primary work type is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := env.Settings.WorkTypeID
			if len(args) > 0 {
				name = strings.Join(args, " ")
			}

			timer := env.Store.Start(name, time.Now())
			fmt.Fprintln(cmd.OutOrStdout(),
				env.Lang.Tf("timer.started", timer.Name, timer.StartTime.Format("15:04")))
			return nil
		},
	}

	return cmd
}

func newStopCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer.",
		RunE: func(cmd *cobra.Command, args []string) error {
			stopped, ok := env.Store.StopActive(time.Now())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), env.Lang.T("timer.none"))
				return nil
			}

			worked := timeutil.FormatHours(
				timeutil.HoursBetween(stopped.StartTime.Time, stopped.EndTime.Time))
			fmt.Fprintln(cmd.OutOrStdout(), env.Lang.Tf("timer.stopped", stopped.Name, worked))
			return nil
		},
	}

	return cmd
}

func newStatusCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running timer and today's progress.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			now := time.Now()

			if active, ok := env.Store.Active(); ok {
				elapsed := timeutil.FormatHours(timeutil.HoursBetween(active.StartTime.Time, now))
				fmt.Fprintln(out, env.Lang.Tf("timer.running",
					active.Name, active.StartTime.Format("15:04"), elapsed))
			} else {
				fmt.Fprintln(out, env.Lang.T("timer.none"))
			}

			today := timeutil.StartOfDay(now)
			days := env.Engine().Days(env.Store.FlatEntries(), today, today)
			if len(days) == 1 {
				fmt.Fprintf(out, "%s: %s / %s\n", env.Lang.T("today.label"),
					timeutil.FormatHours(days[0].Actual), timeutil.FormatHours(days[0].Goal))
			}
			return nil
		},
	}

	return cmd
}

func newAddCommand(env *Env) *cobra.Command {
	var (
		dateFlag  string
		overnight bool
	)

	cmd := &cobra.Command{
		Use:   "add <name> <start> <end>",
		Short: "Record a completed entry by hand.",
		Long:  "add appends a finished entry with an explicit clock window. An end before the start is rejected unless --overnight confirms the shift crossed midnight.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateFlag)
			if err != nil {
				return err
			}

			start, err := resolveClock(date, args[1])
			if err != nil {
				return err
			}
			end, err := resolveClock(date, args[2])
			if err != nil {
				return err
			}

			if end.Before(start) {
				if !overnight {
					return fmt.Errorf("end %s is before start %s; pass --overnight if the shift crossed midnight", args[2], args[1])
				}
				end = end.AddDate(0, 0, 1)
			}

			hours := timeutil.HoursBetween(start, end)
			if limit := env.Settings.Validation.MaxEntryHours; limit > 0 && hours > limit {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: entry spans %s, more than the configured %s\n",
					timeutil.FormatHours(hours), timeutil.FormatHours(limit))
			}

			startLT := timeutil.NewLocal(start)
			endLT := timeutil.NewLocal(end)
			timer := timekeep.Timer{Name: args[0], StartTime: &startLT, EndTime: &endLT}
			env.Store.Add(timer)

			fmt.Fprintln(cmd.OutOrStdout(),
				env.Lang.Tf("timer.added", timer.Name, timeutil.FormatHours(hours)))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Target date (default: today)")
	cmd.Flags().BoolVar(&overnight, "overnight", false, "Allow an end time on the following day")

	return cmd
}

func newDeleteCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <index>",
		Short: "Remove an entry by its list index.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index <= 0 {
				return fmt.Errorf("index must be a positive integer")
			}

			removed, ok := env.Store.Delete(index - 1)
			if !ok {
				return fmt.Errorf("no entry at index %d", index)
			}

			fmt.Fprintln(cmd.OutOrStdout(), env.Lang.Tf("timer.deleted", formatTimer(removed)))
			return nil
		},
	}

	return cmd
}
