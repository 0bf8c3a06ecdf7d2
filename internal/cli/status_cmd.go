package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/cli/formatter"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
)

func newStatusCmd(app *App) *cobra.Command {
	var showHistory bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current week at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.Identity.Await(ctx)
			if err != nil {
				return err
			}
			if watch {
				return watchStatus(ctx, app, id)
			}
			return printStatus(ctx, app, id, showHistory)
		},
	}

	cmd.Flags().BoolVar(&showHistory, "history", false, "Include past weeks")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep the view updated as tasks change")

	return cmd
}

func printStatus(ctx context.Context, app *App, id identity.Identity, showHistory bool) error {
	weekID := calendar.WeekIDFor(time.Now().UTC())
	week, err := app.Weeks.GetOrCreate(ctx, weekID, id.UserID)
	if err != nil {
		return err
	}
	tasks, err := app.Tasks.ListByWeek(ctx, weekID, id.UserID)
	if err != nil {
		return err
	}
	streak, err := app.Streaks.CurrentStreak(ctx, id, weekID)
	if err != nil {
		return err
	}

	out := app.out()
	fmt.Fprintln(out, formatter.FormatWeekOverview(week, tasks, streak))

	if showHistory {
		stats, err := app.Weeks.ListWithStats(ctx, id.UserID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatter.FormatWeekHistory(pastWeeks(stats, weekID)))
	}
	return nil
}

// watchStatus re-renders the current week whenever its tasks change, until
// the context is cancelled.
func watchStatus(ctx context.Context, app *App, id identity.Identity) error {
	weekID := calendar.WeekIDFor(time.Now().UTC())
	week, err := app.Weeks.GetOrCreate(ctx, weekID, id.UserID)
	if err != nil {
		return err
	}

	updates, cancel, err := app.Tasks.WatchByWeek(ctx, weekID, id.UserID)
	if err != nil {
		return err
	}
	defer cancel()

	out := app.out()
	for {
		select {
		case <-ctx.Done():
			return nil
		case tasks, ok := <-updates:
			if !ok {
				return nil
			}
			streak, err := app.Streaks.CurrentStreak(ctx, id, weekID)
			if err != nil {
				return err
			}
			fmt.Fprint(out, "\033[H\033[2J")
			fmt.Fprintln(out, formatter.FormatWeekOverview(week, tasks, streak))
			fmt.Fprintln(out, formatter.Dim("watching — ctrl+c to stop"))
		}
	}
}

// pastWeeks filters the current week out of the history listing.
func pastWeeks(stats []domain.WeekStats, currentWeekID string) []domain.WeekStats {
	out := stats[:0:0]
	for _, ws := range stats {
		if ws.Week.ID != currentWeekID {
			out = append(out, ws)
		}
	}
	return out
}
