package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/imgurgrab/imgurgrab/internal/config"
	"github.com/imgurgrab/imgurgrab/internal/database"
	"github.com/imgurgrab/imgurgrab/internal/model"
	"github.com/imgurgrab/imgurgrab/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects download runs recorded in the local database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded download runs",
		Long: `History lists, shows and deletes download runs recorded in the local
database.

Every completed fetch is recorded unless --no-history was given. A record
holds the run counters plus the full report, so past runs can be
re-rendered without touching the network.

Examples:
  # List all recorded runs
  imgurgrab history list

  # List runs for a single tag
  imgurgrab history list --tag astronomy

  # List the five most recent runs
  imgurgrab history list --limit 5

  # Show the report of a recorded run
  imgurgrab history show 6b1e9017-98ac-4d0f-a1b3-2f9e34c58a11

  # Show the most recent run for a tag, with per-item records
  imgurgrab history show --latest astronomy --items

  # Delete a recorded run
  imgurgrab history delete 6b1e9017-98ac-4d0f-a1b3-2f9e34c58a11`,
	}

	cmd.AddCommand(NewHistoryListCmd())
	cmd.AddCommand(NewHistoryShowCmd())
	cmd.AddCommand(NewHistoryDeleteCmd())

	return cmd
}

// NewHistoryListCmd creates the history list command.
func NewHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded download runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}

	cmd.Flags().StringP("tag", "t", "",
		"Only list runs for this gallery tag")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of runs to list (0 lists all)")

	return cmd
}

// runHistoryListCmd executes the history list command.
func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return listRuns(context.Background(), db, tag, limit)
}

// NewHistoryShowCmd creates the history show command.
func NewHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the report of a recorded run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistoryShowCmd,
	}

	cmd.Flags().StringP("latest", "l", "",
		"Show the most recent run for this gallery tag instead of a run ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output the stored report as JSON")
	cmd.Flags().BoolP("items", "i", false,
		"List the per-item records stored for the run")

	return cmd
}

// runHistoryShowCmd executes the history show command.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	latestTag, err := cmd.Flags().GetString("latest")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	var runID string
	if len(args) > 0 {
		runID = args[0]
	}
	if runID == "" && latestTag == "" {
		return errors.New("run ID is required (or use --latest <tag> for the most recent run)")
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	showItems, err := cmd.Flags().GetBool("items")
	if err != nil {
		return err
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return showRun(context.Background(), db, runID, latestTag, jsonOutput, showItems)
}

// NewHistoryDeleteCmd creates the history delete command.
func NewHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

// runHistoryDeleteCmd executes the history delete command.
func runHistoryDeleteCmd(_ *cobra.Command, args []string) error {
	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return deleteRun(context.Background(), db, args[0])
}

// openHistoryDB opens the run history database in the XDG data directory.
func openHistoryDB() (*database.RunDB, error) {
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// listRuns lists recorded runs, optionally filtered by tag and capped at
// limit rows.
func listRuns(ctx context.Context, db *database.RunDB, tag string, limit int) error {
	runs, err := db.ListRuns(ctx, tag, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		if tag != "" {
			fmt.Printf("No recorded runs found for tag %q.\n", tag)
		} else {
			fmt.Println("No recorded runs found.")
		}
		fmt.Println("\nUse 'imgurgrab fetch' to download a gallery tag.")
		return nil
	}

	fmt.Printf("Recorded runs (%d):\n\n", len(runs))
	fmt.Printf("  %-36s  %-15s  %-10s  %-19s  %s\n", "Run ID", "Tag", "Mode", "Started", "Result")
	fmt.Println("  " + strings.Repeat("-", 98))

	for _, meta := range runs {
		fmt.Printf("  %-36s  %-15s  %-10s  %-19s  %d ok / %d failed\n",
			meta.RunID,
			meta.Tag,
			meta.Mode,
			meta.StartedAt.Format("2006-01-02 15:04:05"),
			meta.Succeeded,
			meta.Failed,
		)
	}

	fmt.Println("\nUse 'imgurgrab history show <run-id>' to see the full report.")

	return nil
}

// showRun renders the stored report of a single run.
// The run is selected either by ID or, when latestTag is set, as the most
// recent run for that tag.
func showRun(ctx context.Context, db *database.RunDB, runID, latestTag string, jsonOutput, showItems bool) error {
	var runReport *model.DownloadReport
	var err error

	if latestTag != "" {
		runReport, err = db.GetLatestRun(ctx, latestTag)
	} else {
		runReport, err = db.GetRun(ctx, runID)
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if runReport == nil {
		if latestTag != "" {
			return fmt.Errorf("no recorded run for tag %q", latestTag)
		}
		return fmt.Errorf("no recorded run with ID %q", runID)
	}

	if jsonOutput {
		writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
		_, err = writer.Write(runReport)
		return err
	}

	writer := report.NewSimpleWriter(os.Stdout)
	if _, err := writer.Write(runReport); err != nil {
		return err
	}

	if showItems {
		return printRunItems(ctx, db, runReport.RunID)
	}

	return nil
}

// printRunItems prints the per-item records stored for a run.
func printRunItems(ctx context.Context, db *database.RunDB, runID string) error {
	items, err := db.GetRunItems(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No items recorded for this run.")
		return nil
	}

	fmt.Printf("Items (%d):\n\n", len(items))
	fmt.Printf("  %-7s  %-7s  %-10s  %s\n", "Ordinal", "Status", "Bytes", "Path / Error")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, item := range items {
		if item.Succeeded() {
			fmt.Printf("  %-7d  %-7s  %-10d  %s\n", item.Ordinal, "ok", item.Bytes, item.Path)
			continue
		}
		fmt.Printf("  %-7d  %-7s  %-10s  %s: %s\n", item.Ordinal, "failed", "-", item.Failure, item.Error)
	}

	return nil
}

// deleteRun removes a recorded run and its items.
func deleteRun(ctx context.Context, db *database.RunDB, runID string) error {
	deleted, err := db.DeleteRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("no recorded run with ID %q", runID)
	}

	fmt.Printf("Deleted run %s.\n", runID)
	return nil
}
