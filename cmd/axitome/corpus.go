package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Validate and list the quote corpus",
	RunE:  runCorpus,
}

var (
	corpusTag    string
	corpusFormat string
)

func init() {
	corpusCmd.Flags().StringVar(&corpusTag, "tag", "", "only list quotes with this tag")
	corpusCmd.Flags().StringVar(&corpusFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(corpusCmd)
}

func runCorpus(cmd *cobra.Command, args []string) error {
	if err := checkFormat(corpusFormat); err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries := a.Corpus.ByTag(corpusTag)
	if corpusFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tCHARS\tAUTHOR\tTAGS\tTEXT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
			e.Index,
			utf8.RuneCountInString(e.Quote.Text),
			e.Quote.Author,
			strings.Join(e.Quote.Tags, ","),
			preview(e.Quote.Text, 60),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d quotes", len(entries), a.Corpus.Len())
	if tags := a.Corpus.Tags(); len(tags) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "; tags: %s", strings.Join(tags, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
