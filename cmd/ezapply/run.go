package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alirezadp10/ezapply/internal/config"
	"github.com/alirezadp10/ezapply/internal/notifier"
	"github.com/alirezadp10/ezapply/internal/runner"
	"github.com/alirezadp10/ezapply/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the application daemon",
	Long:  "Logs in, then searches and applies on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := config.Load(envFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"keywords", cfg.Keywords,
		"countries", cfg.Countries,
		"work_type", cfg.WorkType,
		"window", cfg.SearchWindow.String(),
		"interval", cfg.PollInterval.String(),
	)

	regions, err := resolveRegions(cfg)
	if err != nil {
		logger.Error("invalid region config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := openSession(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	r := runner.New(runner.Params{
		Searcher:   newSearcher(cfg, session, logger),
		Applicator: buildApplicator(cfg, session, sqlStore, logger),
		Page:       session,
		Store:      sqlStore,
		Notifier:   notifier.NewLogNotifier(logger),
		Relevance:  buildRelevanceGate(cfg),
		Keywords:   cfg.Keywords,
		Regions:    regions,
		Logger:     logger,
	})

	sched := runner.NewScheduler(r, cfg.PollInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
