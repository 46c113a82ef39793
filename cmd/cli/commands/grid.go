package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/services"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/statistics"
)

// ImportGridCmd creates the importGrid command
func ImportGridCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importGrid <grid.yaml>",
		Short: "Store a draft schedule grid from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var grid model.ScheduleGrid
			if err := readYAML(args[0], &grid); err != nil {
				return err
			}

			app.Logger.Debug("importGrid command", zap.String("file", args[0]))

			saved, err := services.ImportGrid(app.Ctx, app.Database, app.Unit, app.Logger, grid)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Grid for %04d-%02d stored as draft (%d staff, version %d)\n\n",
				saved.Year, int(saved.Month), len(saved.Assignments), saved.Version)
			return nil
		},
	}
}

// ViewStatisticsCmd creates the viewStatistics command
func ViewStatisticsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewStatistics <YYYY-MM>",
		Short: "Show per-staff statistics of a month's grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			stats, err := services.ComputeGridStatistics(app.Ctx, app.Database, app.Unit, app.Logger, key)
			if err != nil {
				return err
			}

			printStatistics(stats, app.Unit.Catalog)
			return nil
		},
	}
}

// CheckCompletenessCmd creates the checkCompleteness command
func CheckCompletenessCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkCompleteness <YYYY-MM>",
		Short: "Compare a month's grid with the required headcount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			report, err := services.CheckCompleteness(app.Ctx, app.Database, app.Unit, app.Logger, key)
			if err != nil {
				return err
			}

			printCompleteness(report)
			return nil
		},
	}
}

// PublishGridCmd creates the publishGrid command
func PublishGridCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishGrid <YYYY-MM>",
		Short: "Publish the grid of a locked month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			result, err := services.PublishGrid(app.Ctx, app.Database, app.Unit, app.Logger, key)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Grid for %s published\n", key)
			printCompleteness(result.Report)
			return nil
		},
	}
}

func printStatistics(stats *statistics.GridStatistics, catalog *model.ShiftCatalog) {
	defs := catalog.Definitions()

	nameColWidth := 12
	for _, s := range stats.Staff {
		nameColWidth = max(nameColWidth, len(s.StaffID)+2)
	}

	fmt.Println()
	fmt.Printf("%-*s%6s%6s%6s%6s", nameColWidth, "Staff", "Work", "Off", "Hol", "Run")
	for _, def := range defs {
		fmt.Printf("%6s", def.Code)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", nameColWidth+24+6*len(defs)))

	for _, s := range stats.Staff {
		fmt.Printf("%-*s%6d%6d%6d%6d", nameColWidth, s.StaffID, s.WorkDays, s.OffDays, s.HolidayWorkDays, s.ConsecutiveMax)
		for _, def := range defs {
			fmt.Printf("%6d", s.ShiftCounts[def.Code])
		}
		fmt.Println()
	}

	fmt.Println()
	fmt.Printf("Unit totals: %d work days, %d on holidays\n", stats.WorkDays, stats.HolidayWorkDays)
	for _, def := range defs {
		if n, ok := stats.Totals[def.Code]; ok {
			fmt.Printf("  %-4s %d\n", def.Code, n)
		}
	}
	fmt.Println()
}

func printCompleteness(report statistics.Report) {
	if report.Complete {
		fmt.Printf("%s✓ Every required shift is staffed%s\n\n", colorGreen, colorReset)
		return
	}

	fmt.Printf("%s⚠️  %d shifts short:%s\n", colorYellow, report.TotalShortage(), colorReset)
	for _, m := range report.Missing {
		fmt.Printf("  %s %-4s %d of %d (%s-%d%s)\n", m.Date, m.Shift, m.Actual, m.Required, colorRed, m.Shortage, colorReset)
	}
	fmt.Println()
}
