package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pushpilot-be/internal/bootstrap"
	"pushpilot-be/internal/config"
	"pushpilot-be/internal/pkg/logger"
	"pushpilot-be/internal/scheduler"
	"pushpilot-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "housekeeping",
	Short:         "Run one housekeeping job and exit",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		jobCommand(scheduler.JobCleanup, "Delete expired conversations and stale rate-limit rows"),
		jobCommand(scheduler.JobReminder, "Push the daily reminder to every registered device"),
		jobCommand(scheduler.JobReport, "Log weekly totals"),
	)
}

// jobCommand maps a subcommand onto a scheduler job. "notification" is kept
// as an alias for the reminder.
func jobCommand(job, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   job,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), job)
		},
	}
	if job == scheduler.JobReminder {
		cmd.Aliases = []string{"notification"}
	}
	return cmd
}

func runJob(ctx context.Context, job string) error {
	cfg := config.Load()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer log.Sync()

	sched, closeFn, err := bootstrap.NewHousekeepingScheduler(db, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	color.Cyan("▶ Running %s job", job)
	if err := sched.RunNow(ctx, job); err != nil {
		return err
	}
	color.Green("✔ %s job finished", job)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("✖ %v", err)
		os.Exit(1)
	}
}
