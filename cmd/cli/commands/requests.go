package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/services"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// CreateRequestCmd creates the createRequest command
func CreateRequestCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "createRequest <request.yaml>",
		Short: "Create a draft pre-schedule request from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in services.RequestInput
			if err := readYAML(args[0], &in); err != nil {
				return err
			}

			app.Logger.Debug("createRequest command", zap.String("file", args[0]))

			req, err := services.CreateRequest(app.Ctx, app.Database, app.Unit, app.Logger, in)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Pre-schedule request created!\n\n")
			printRequest(req)
			return nil
		},
	}
}

// OpenRequestCmd creates the openRequest command
func OpenRequestCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openRequest <YYYY-MM>",
		Short: "Open a draft request for wish submissions and queue the participant notice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			var closeDate model.Date
			if raw, _ := cmd.Flags().GetString("close"); raw != "" {
				if closeDate, err = model.ParseDate(raw); err != nil {
					return fmt.Errorf("invalid --close: %w", err)
				}
			}

			result, err := services.OpenPreSchedule(app.Ctx, app.Database, app.Locks, app.Queue, app.Unit, app.Logger,
				key, app.Today(), closeDate)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request opened!\n\n")
			printRequest(result.Request)
			if result.NoticeID != "" {
				fmt.Printf("Notice queued for %d participants (message %s)\n\n", len(result.Notice.Recipients), result.NoticeID)
			} else {
				fmt.Printf("%s⚠️  The participant notice could not be queued, see the log%s\n\n", colorYellow, colorReset)
			}
			return nil
		},
	}

	cmd.Flags().String("close", "", "Last day of the editing window (YYYY-MM-DD), defaults to the configured window")

	return cmd
}

// CloseRequestCmd creates the closeRequest command
func CloseRequestCmd(app *AppContext) *cobra.Command {
	return transitionCmd(app, "closeRequest", "Stop participant editing of an open request", services.ClosePreSchedule)
}

// ReopenRequestCmd creates the reopenRequest command
func ReopenRequestCmd(app *AppContext) *cobra.Command {
	return transitionCmd(app, "reopenRequest", "Reopen a closed request for editing", services.ReopenPreSchedule)
}

// LockRequestCmd creates the lockRequest command
func LockRequestCmd(app *AppContext) *cobra.Command {
	return transitionCmd(app, "lockRequest", "Lock a request so no wish set can change", services.LockPreSchedule)
}

type transitionFunc func(ctx context.Context, store db.RequestStore, locker services.Locker, logger *zap.Logger, key db.MonthKey) (*model.PreScheduleRequest, error)

func transitionCmd(app *AppContext, name, short string, run transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <YYYY-MM>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.MonthKey(args[0])
			if err != nil {
				return err
			}

			app.Logger.Debug(name+" command", zap.String("key", key.String()))

			req, err := run(app.Ctx, app.Database, app.Locks, app.Logger, key)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request is now %s\n\n", req.Status)
			printRequest(req)
			return nil
		},
	}
}

func printRequest(req *model.PreScheduleRequest) {
	fmt.Printf("Request ID:   %s\n", req.ID)
	fmt.Printf("Month:        %s\n", db.KeyOf(req))
	fmt.Printf("Status:       %s\n", req.Status)
	if !req.OpenDate.IsZero() {
		fmt.Printf("Window:       %s to %s\n", req.OpenDate, req.CloseDate)
	}
	fmt.Printf("Max off:      %d (holidays %d)\n", req.MaxOffDays, req.MaxHoliday)
	fmt.Printf("Shift types:  %d", req.ShiftTypesLimit)
	if req.AllowThreeTypesVoluntary {
		fmt.Print(" (3 on request)")
	}
	fmt.Println()
	fmt.Printf("Participants: %d\n\n", len(req.Participants))
}
