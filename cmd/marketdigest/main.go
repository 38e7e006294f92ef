package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"MarketDigest/internal/app"
	"MarketDigest/internal/config"
	"MarketDigest/internal/logging"
)

func main() {
	// Secrets come from the environment; .env is a local convenience.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	root := &cobra.Command{
		Use:           "marketdigest",
		Short:         "Scheduled news, market, and screenshot digests delivered by email",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run [workflow...]",
		Short: "Run the named workflows once (all when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if _, ok := cfg.Workflow(name); !ok {
					return fmt.Errorf("unknown workflow %q", name)
				}
			}

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			return application.RunOnce(cmd.Context(), args...)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run all workflows on their cron schedules until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			return application.Serve(cmd.Context())
		},
	}

	root.AddCommand(runCmd, serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("marketdigest stopped", "error", err)
		os.Exit(1)
	}
}
