package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hemascan/internal/corpus"
)

func newCorpusCommand(ctx *commandContext) *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Research corpus utilities",
	}
	corpusCmd.AddCommand(newCorpusStatsCommand(ctx))
	corpusCmd.AddCommand(newCorpusExportCommand(ctx))
	return corpusCmd
}

func newCorpusStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the anonymized research corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := corpus.NewService(store).Summarize(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Corpus entries:    %d (%d consented)\n",
				summary.Stats.TotalEntries, summary.Stats.ConsentedOnly)
			if summary.Stats.MeanHb > 0 {
				fmt.Fprintf(out, "Mean hemoglobin:   %.1f g/dL\n", summary.Stats.MeanHb)
			}
			if !summary.Stats.OldestEntry.IsZero() {
				fmt.Fprintf(out, "Collected between: %s and %s\n",
					summary.Stats.OldestEntry.Format(time.DateOnly),
					summary.Stats.NewestEntry.Format(time.DateOnly))
			}

			if len(summary.Shares) > 0 {
				rows := make([][]string, 0, len(summary.Shares))
				for _, share := range summary.Shares {
					rows = append(rows, []string{
						share.Stage.Label(),
						fmt.Sprintf("%d", share.Count),
						fmt.Sprintf("%.1f%%", share.Percent),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "Count", "Share"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
			}
			return nil
		},
	}
}

func newCorpusExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export consented corpus entries as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			writer := cmd.OutOrStdout()
			target := strings.TrimSpace(outputPath)
			if target != "" {
				file, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				writer = file
			}

			count, err := corpus.NewService(store).Export(cmd.Context(), writer)
			if err != nil {
				return err
			}
			if target != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", count, target)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the export to a file instead of stdout")
	return cmd
}
