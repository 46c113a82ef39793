package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/demand"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/services"
)

// ViewDemandCmd creates the viewDemand command
func ViewDemandCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewDemand <YYYY-MM>",
		Short: "Show the aggregated wishes of a month against the required headcount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			var provisional *model.WishSet
			if path, _ := cmd.Flags().GetString("with"); path != "" {
				provisional = &model.WishSet{}
				if err := readYAML(path, provisional); err != nil {
					return err
				}
			}

			app.Logger.Debug("viewDemand command", zap.String("key", key.String()), zap.Bool("provisional", provisional != nil))

			report, err := services.PreviewDemand(app.Ctx, app.Database, app.Unit, app.Logger, key, provisional)
			if err != nil {
				return err
			}

			printDemandTable(report, app.Unit.Catalog)
			printCoverage(report.Coverage)

			if len(report.OverCapacity) > 0 {
				fmt.Printf("%sDays with more off wishes than can be spared:%s\n", colorYellow, colorReset)
				for _, c := range report.OverCapacity {
					fmt.Printf("  %s  %d requested, %d available\n", c.Date, c.Requested, c.Capacity)
				}
				fmt.Println()
			}

			if len(report.GroupIssues) > 0 {
				fmt.Printf("%sGroup limits:%s\n", colorYellow, colorReset)
				for _, issue := range report.GroupIssues {
					fmt.Printf("  %s\n", issue)
				}
				fmt.Println()
			}

			printProgress(report.Progress)
			return nil
		},
	}

	cmd.Flags().String("with", "", "Preview with this unsaved wish set (YAML) in place of its owner's submission")

	return cmd
}

// ViewProgressCmd creates the viewProgress command
func ViewProgressCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewProgress <YYYY-MM>",
		Short: "Show which participants have submitted wishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			progress, err := services.ViewSubmissionProgress(app.Ctx, app.Database, app.Logger, key)
			if err != nil {
				return err
			}

			printProgress(progress)
			return nil
		},
	}
}

func printDemandTable(report *services.DemandReport, catalog *model.ShiftCatalog) {
	defs := catalog.Definitions()

	fmt.Printf("\nWishes for %04d-%02d\n\n", report.Request.Year, int(report.Request.Month))
	fmt.Printf("%-16s", "Date")
	for _, def := range defs {
		fmt.Printf("%6s", def.Code)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 16+6*len(defs)))

	for _, day := range report.Days {
		label := fmt.Sprintf("%s %s", day.Date, day.Weekday.String()[:3])
		if day.IsHoliday {
			fmt.Printf("%s%-16s%s", colorDim, label, colorReset)
		} else {
			fmt.Printf("%-16s", label)
		}
		for _, def := range defs {
			fmt.Printf("%6d", report.Aggregate.Count(day.Date, def.Code))
		}
		fmt.Println()
	}
	fmt.Println()
}

func printCoverage(coverage []demand.Coverage) {
	if len(coverage) == 0 {
		return
	}

	fmt.Println("Required headcount:")
	for _, c := range coverage {
		color := colorGreen
		if !c.Met {
			color = colorRed
		}
		fmt.Printf("  %s %-4s %s%d/%d%s\n", c.Date, c.Shift, color, c.Count, c.Required, colorReset)
	}
	fmt.Println()
}

func printProgress(progress demand.Progress) {
	fmt.Printf("Submitted %d of %d\n", len(progress.Submitted), progress.Total())
	for _, id := range progress.Submitted {
		fmt.Printf("  %s✓%s %s\n", colorGreen, colorReset, id)
	}
	for _, id := range progress.Pending {
		fmt.Printf("  %s✗%s %s\n", colorRed, colorReset, id)
	}
	fmt.Println()
}
