package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/axitome/internal/card"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the card for today or a given date",
	Long: `Select the quote for the day, lay it out and compose its caption.
With --record the card is also written to the outbox and the run ledger,
once per day.`,
	RunE: runToday,
}

var (
	todayDate   string
	todayFormat string
	todayRecord bool
)

func init() {
	todayCmd.Flags().StringVar(&todayDate, "date", "", "day to show (YYYY-MM-DD, default today)")
	todayCmd.Flags().StringVar(&todayFormat, "format", "text", "output format: text or json")
	todayCmd.Flags().BoolVar(&todayRecord, "record", false, "publish to the outbox and record the run")
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := checkFormat(todayFormat); err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t := time.Now()
	if todayDate != "" {
		t, err = a.Builder.Selector().ParseDay(todayDate)
		if err != nil {
			return err
		}
	}

	c, err := a.Builder.ForDay(t)
	if err != nil {
		return fmt.Errorf("build card: %w", err)
	}

	if todayRecord {
		if _, err := a.OpenStore(ctx); err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		run, err := a.Scheduler().RunDay(ctx, t)
		if err != nil {
			return fmt.Errorf("record day: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "recorded %s (%s)\n", run.Day, run.PublishedRef.String)
	}

	if todayFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), c)
	}
	printCard(cmd.OutOrStdout(), c)
	return nil
}

func printCard(w io.Writer, c *card.Card) {
	fmt.Fprintf(w, "Day:    %s\n", c.Day)
	fmt.Fprintf(w, "Index:  %d\n", c.Index)
	fmt.Fprintf(w, "Author: %s\n", c.Quote.Author)
	fmt.Fprintf(w, "Size:   %gpx, %d lines, block %g..%g\n",
		c.FontSize, len(c.Lines), c.Block.Top, c.Block.Top+c.Block.TotalHeight)
	fmt.Fprintln(w)
	for _, l := range c.Lines {
		fmt.Fprintf(w, "  %s\n", l.Text)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintln(w, c.Caption)
	if c.CaptionFallback {
		fmt.Fprintln(w, "(fallback caption)")
	}
}
