package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/timeflowhq/timeflow/internal/balance"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

func newListCommand(env *Env) *cobra.Command {
	var weekFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries with the indexes delete uses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			entries := env.Store.Entries()

			var from, to time.Time
			if weekFlag {
				from, to = timeutil.WeekRange(time.Now())
			}

			printed := 0
			for i, t := range entries {
				if weekFlag {
					if t.StartTime == nil ||
						t.StartTime.Before(from) || !t.StartTime.Before(to) {
						continue
					}
				}
				fmt.Fprintf(out, "%d. %s\n", i+1, formatTimer(t))
				printed++
			}

			if printed == 0 {
				fmt.Fprintln(out, "(no entries)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&weekFlag, "week", false, "Only entries from the current week")

	return cmd
}

func newBalanceCommand(env *Env) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the running flextime balance.",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateFlag)
			if err != nil {
				return err
			}

			total := env.Engine().Balance(env.Store.FlatEntries(), date)
			fmt.Fprintln(cmd.OutOrStdout(), env.Lang.Tf("balance.asof",
				date.Format(timeutil.DayLayout), timeutil.FormatSignedHours(total)))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Balance cutoff date (default: today)")

	return cmd
}

func newReportCommand(env *Env) *cobra.Command {
	var (
		weekFlag  bool
		monthFlag bool
		yearFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a week, month or year.",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			flat := env.Store.FlatEntries()
			eng := env.Engine()

			var stats balance.PeriodStats
			switch {
			case yearFlag:
				stats = eng.YearStats(flat, now)
			case monthFlag:
				stats = eng.MonthStats(flat, now)
			default:
				stats = eng.WeekStats(flat, now)
			}

			printPeriodStats(cmd, env.Lang, stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&weekFlag, "week", false, "Report the current ISO week (default)")
	cmd.Flags().BoolVar(&monthFlag, "month", false, "Report the current month")
	cmd.Flags().BoolVar(&yearFlag, "year", false, "Report the current year")
	cmd.MarkFlagsMutuallyExclusive("week", "month", "year")

	return cmd
}
