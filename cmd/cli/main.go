package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/cmd/cli/commands"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/internal/config"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/clients/lockclient"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/clients/queueclient"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/services"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/postgres"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/utils/logging"
)

var env string

func main() {
	app := &commands.AppContext{Ctx: context.Background()}

	rootCmd := &cobra.Command{
		Use:   "ward",
		Short: "Ward pre-schedule CLI - collect and check monthly shift wishes",
		Long: `A CLI for running a nursing unit's monthly pre-schedule: open a month for wishes,
validate submissions against the unit's quotas, preview demand and check the final grid.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp(app)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.CreateRequestCmd(app))
	rootCmd.AddCommand(commands.OpenRequestCmd(app))
	rootCmd.AddCommand(commands.CloseRequestCmd(app))
	rootCmd.AddCommand(commands.ReopenRequestCmd(app))
	rootCmd.AddCommand(commands.LockRequestCmd(app))
	rootCmd.AddCommand(commands.SubmitWishesCmd(app))
	rootCmd.AddCommand(commands.ViewDemandCmd(app))
	rootCmd.AddCommand(commands.ViewProgressCmd(app))
	rootCmd.AddCommand(commands.ImportGridCmd(app))
	rootCmd.AddCommand(commands.ViewStatisticsCmd(app))
	rootCmd.AddCommand(commands.CheckCompletenessCmd(app))
	rootCmd.AddCommand(commands.PublishGridCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, lock and queue clients
func initApp(app *commands.AppContext) error {
	var err error

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Unit, err = services.UnitFromConfig(app.Cfg)
	if err != nil {
		return err
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("unit", app.Unit.ID),
		zap.Int("shifts", len(app.Cfg.Shifts)))

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(app.Ctx); err != nil {
		database.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = database
	app.Logger.Debug("Database ready")

	app.Logger.Info("Connecting to redis", zap.String("addr", app.Cfg.Redis.Addr))
	app.Locks, err = lockclient.Connect(app.Ctx, app.Cfg.Redis.Addr, app.Cfg.Redis.Password, app.Cfg.Redis.DB, app.Cfg.Redis.LockTTL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.Logger.Info("Connecting to message broker")
	app.Queue, err = queueclient.Dial(app.Cfg.RabbitMQ.URL, app.Cfg.RabbitMQ.Queue, app.Cfg.RabbitMQ.PublishTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}

	app.Logger.Info("Application initialized")
	return nil
}

func closeApp(app *commands.AppContext) {
	if app.Queue != nil {
		if err := app.Queue.Close(); err != nil {
			app.Logger.Warn("Failed to close broker connection", zap.Error(err))
		}
	}
	if app.Locks != nil {
		if err := app.Locks.Close(); err != nil {
			app.Logger.Warn("Failed to close redis connection", zap.Error(err))
		}
	}
	if app.Database != nil {
		app.Database.Close()
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}
}
