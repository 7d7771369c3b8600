package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded daily runs",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 14, "number of days to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if historyLimit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", historyLimit)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	runs, err := store.ListRuns(ctx, int64(historyLimit))
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	total, err := store.CountRuns(ctx)
	if err != nil {
		return fmt.Errorf("count runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tINDEX\tAUTHOR\tSTATUS\tREF")
	for _, r := range runs {
		ref := r.PublishedRef.String
		if r.Error.Valid {
			ref = r.Error.String
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.Day, r.QuoteIndex, r.Author, r.Status, ref)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d runs\n", len(runs), total)
	return nil
}
