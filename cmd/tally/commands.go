package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/logger"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
	"github.com/j-veylop/dhikr-tally/internal/ui/components"
)

var errUsage = errors.New("usage: tally <inc|today|history|import> [args], see tally --help")

// runCommand dispatches a scripting subcommand.
func runCommand(ctx context.Context, mgr *services.Manager, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "inc":
		return cmdInc(ctx, mgr, args[1:], out)
	case "today":
		return cmdToday(ctx, mgr, args[1:], out)
	case "history":
		return cmdHistory(ctx, mgr, args[1:], out)
	case "import":
		return cmdImport(ctx, mgr, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func cmdInc(ctx context.Context, mgr *services.Manager, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: tally inc <kind> [category]")
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}

	var category string
	if len(args) == 2 {
		category = args[1]
	} else {
		phrases := mgr.Catalogue().Phrases(kind)
		if len(phrases) == 0 {
			return fmt.Errorf("no phrases configured for %s, pass a category", kind)
		}
		category = phrases[0].ID
	}

	rec := mgr.IncrementFrom(ctx, kind, category, services.SourceCLI)
	if mgr.Store(kind).Degraded() {
		return fmt.Errorf("storage unavailable, %s count was not saved", kind)
	}

	fmt.Fprintf(out, "%s %s: %d (%s %d)\n", kind, rec.Date, rec.Total,
		mgr.Catalogue().Label(kind, category), rec.Details[category])
	return nil
}

func cmdToday(ctx context.Context, mgr *services.Manager, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: tally today <kind>")
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}

	rec := mgr.Store(kind).Today(ctx)
	fmt.Fprintf(out, "%s %s: %d\n", kind, rec.Date, rec.Total)
	writeDetails(out, mgr.Catalogue(), kind, rec)
	return nil
}

func cmdHistory(ctx context.Context, mgr *services.Manager, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: tally history <kind> [days]")
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}

	days := mgr.Config().HistoryDays
	if len(args) == 2 {
		days, err = strconv.Atoi(args[1])
		if err != nil || days <= 0 {
			return fmt.Errorf("days must be a positive number, got %q", args[1])
		}
	}

	s := mgr.Summary(ctx, kind, days)
	for _, d := range s.Days {
		fmt.Fprintf(out, "%s %s %5d\n", d.Date, d.Date.Weekday().String()[:3], d.Total)
	}

	fmt.Fprintf(out, "\n%s\n", components.RenderSparkline(s.Series(), len(s.Days)))
	fmt.Fprintf(out, "total %d, average %.1f, streak %d, active %d/%d\n",
		s.Total, s.Average, s.Streak, s.ActiveDays, len(s.Days))
	if s.BestDay.Total > 0 {
		fmt.Fprintf(out, "best day %s with %d\n", s.BestDay.Date, s.BestDay.Total)
	}
	if dates, err := mgr.Store(kind).RecordedDates(ctx); err != nil {
		logger.Debug("recorded dates unavailable", "kind", kind, "error", err)
	} else if len(dates) > 0 {
		fmt.Fprintf(out, "on record since %s, %d days counted\n", dates[0], len(dates))
	}
	for _, c := range s.Categories {
		fmt.Fprintf(out, "  %-32s %d\n", c.Label, c.Count)
	}
	return nil
}

func cmdImport(ctx context.Context, mgr *services.Manager, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: tally import <file>")
	}

	n, err := mgr.ImportDump(ctx, args[0])
	if err != nil {
		return fmt.Errorf("import failed after %d keys: %w", n, err)
	}
	fmt.Fprintf(out, "imported %d keys into %s\n", n, mgr.BackendName())
	return nil
}

func writeDetails(out io.Writer, catalogue models.Catalogue, kind models.Kind, rec counter.DayRecord) {
	ids := rec.Categories()
	slices.SortStableFunc(ids, func(a, b string) int {
		return rec.Details[b] - rec.Details[a]
	})
	for _, id := range ids {
		fmt.Fprintf(out, "  %-32s %d\n", catalogue.Label(kind, id), rec.Details[id])
	}
}
