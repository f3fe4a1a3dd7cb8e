package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alirezadp10/ezapply/internal/config"
	"github.com/alirezadp10/ezapply/internal/history"
	"github.com/alirezadp10/ezapply/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded applications (TUI)",
	Long:  "Opens the split-pane result browser; Enter shows a posting's submitted answers.",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	sqlStore, err := store.NewSQLiteStore(config.DBPath(envFile))
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	return history.Run(sqlStore)
}
