package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hemascan/internal/scan"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect stored scan records",
	}
	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scan records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			found, malformed, err := listRecords(cmd, store, ownerID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No scan records stored")
			} else {
				rows := make([][]string, 0, len(found))
				for _, record := range found {
					rows = append(rows, []string{
						record.ID,
						record.SubjectName,
						record.Stage.Label(),
						fmt.Sprintf("%.1f", record.HemoglobinEstimate),
						fmt.Sprintf("%.0f%%", record.Confidence*100),
						record.Provider,
						record.CreatedAt().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Subject", "Stage", "Hb", "Conf", "Provider", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
			}
			if len(malformed) > 0 {
				fmt.Fprintf(out, "Skipped %d unreadable record(s)\n", len(malformed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Limit to one owner's records")
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show one scan record in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var record *scan.Record
			if owner := strings.TrimSpace(ownerID); owner != "" {
				record, err = store.GetOwned(cmd.Context(), owner, args[0])
			} else {
				record, err = store.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), *record)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Fail unless the record belongs to this owner")
	return cmd
}
