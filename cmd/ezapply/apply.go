package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alirezadp10/ezapply/internal/config"
	"github.com/alirezadp10/ezapply/internal/model"
	"github.com/alirezadp10/ezapply/internal/search"
	"github.com/alirezadp10/ezapply/internal/store"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply <jobID>...",
	Short: "Apply to specific postings by ID",
	Long:  "Walks the quick-apply wizard for each given posting ID and exits. Use --dry-run to keep the result store untouched.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "do not record results or answers")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := config.Load(envFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var st model.ResultStore
	if applyDryRun {
		logger.Info("dry-run mode enabled, nothing will be recorded")
		st = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		st = sqlStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := openSession(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	applicator := buildApplicator(cfg, session, st, logger)

	exitCode := 0
	for _, jobID := range args {
		if ctx.Err() != nil {
			break
		}
		posting := model.JobPosting{
			ID:        jobID,
			URL:       search.PostingURL(cfg.BaseURL, jobID),
			EasyApply: true,
		}
		if err := session.Navigate(ctx, posting.URL); err != nil {
			logger.Error("navigate to posting", "job_id", jobID, "error", err)
			exitCode = 1
			continue
		}

		res := applicator.Apply(ctx, posting)
		if err := st.SaveResult(res); err != nil {
			logger.Error("save result", "job_id", jobID, "error", err)
		}
		switch res.Status {
		case model.StatusApplied:
			fmt.Printf("%s: applied\n", jobID)
		default:
			fmt.Printf("%s: %s (%s)\n", jobID, res.Status, res.Reason)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
