package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Build the card for a specific quote",
	Long:  `Lay out and caption a quote chosen by index, linked to today's date.`,
	RunE:  runCard,
}

var (
	cardIndex  int
	cardFormat string
)

func init() {
	cardCmd.Flags().IntVar(&cardIndex, "index", 0, "corpus index of the quote")
	cardCmd.Flags().StringVar(&cardFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(cardCmd)
}

func runCard(cmd *cobra.Command, args []string) error {
	if err := checkFormat(cardFormat); err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Builder.ForIndex(cardIndex, time.Now())
	if err != nil {
		return fmt.Errorf("build card: %w", err)
	}

	if cardFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), c)
	}
	printCard(cmd.OutOrStdout(), c)
	return nil
}
