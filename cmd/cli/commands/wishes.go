package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/services"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/wishes"
)

// SubmitWishesCmd creates the submitWishes command
func SubmitWishesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submitWishes <YYYY-MM> <wishes.yaml>",
		Short: "Validate and submit a staff member's wish set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			var ws model.WishSet
			if err := readYAML(args[1], &ws); err != nil {
				return err
			}

			caps := model.Capabilities{}
			caps.AdminOverride, _ = cmd.Flags().GetBool("admin")
			caps.BatchEligible, _ = cmd.Flags().GetBool("batch-eligible")

			app.Logger.Debug("submitWishes command",
				zap.String("key", key.String()),
				zap.String("staff_id", ws.StaffID),
				zap.Bool("admin", caps.AdminOverride))

			accepted, err := services.SubmitWishes(app.Ctx, app.Database, app.Locks, app.Unit, app.Logger,
				key, ws, caps, app.Today())

			var violations wishes.ValidationErrors
			if errors.As(err, &violations) {
				printViolations(violations)
				return fmt.Errorf("wish set for %s was not saved", ws.StaffID)
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Wish set accepted for %s (version %d)\n", accepted.StaffID, accepted.Version)
			fmt.Printf("  %d wishes, priorities %v\n\n", len(accepted.Wishes), accepted.Preferences.Codes())
			return nil
		},
	}

	cmd.Flags().Bool("admin", false, "Write as a scheduler on the staff member's behalf")
	cmd.Flags().Bool("batch-eligible", false, "The staff member may commit to a batch of one night type")

	return cmd
}

func printViolations(violations wishes.ValidationErrors) {
	fmt.Printf("\n%s✗ Wish set rejected with %d violations:%s\n\n", colorRed, len(violations), colorReset)
	for _, v := range violations {
		fmt.Printf("  %s%-26s%s %s\n", colorYellow, v.Rule, colorReset, v.Description)
		if len(v.Dates) > 0 {
			fmt.Printf("  %-26s %s%v%s\n", "", colorDim, v.Dates, colorReset)
		}
	}
	fmt.Println()
}
