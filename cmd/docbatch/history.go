// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbatch/internal/history"
	"github.com/pdiddy/docbatch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversion runs",
	Long: `History lists runs recorded in the local SQLite history database,
newest first. Use --failures with a run ID to list the files that failed in
that run.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of runs to list")
	historyCmd.Flags().String("failures", "", "list failed files for this run ID")
	historyCmd.Flags().String("history-db", history.DefaultPath, "SQLite run history database")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("failures")
	dbPath := viper.GetString("history-db")
	if cmd.Flags().Changed("history-db") {
		dbPath, _ = cmd.Flags().GetString("history-db")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if runID != "" {
		failures, err := store.Failures(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(failures) == 0 {
			fmt.Fprintf(w, "No failed files recorded for run %s\n", runID)
			return nil
		}
		fmt.Fprintf(w, "Failed files in run %s:\n", runID)
		printFailures(w, failures)
		return nil
	}

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	printRuns(w, runs)
	return nil
}

func printRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %d/%d ok  %d failed  %s -> %s (%s)\n",
			r.ID, r.GeneratedAt.Local().Format(time.DateTime),
			r.Succeeded, r.Total, r.Failed, r.InputDir, r.OutputDir, r.Backend)
	}
}

// printFailures lists failed outcomes, one per line.
func printFailures(w io.Writer, outcomes []types.Outcome) {
	for _, o := range outcomes {
		if !o.Succeeded {
			fmt.Fprintf(w, "  %s: %s\n", o.SourcePath, o.Error)
		}
	}
}
