package main

import (
	"strings"

	"github.com/spf13/cobra"

	"hemascan/internal/records"
	"hemascan/internal/scan"
)

func listRecords(cmd *cobra.Command, store *records.Store, ownerID string) ([]scan.Record, []records.ParseError, error) {
	owner := strings.TrimSpace(ownerID)
	if owner != "" {
		return store.List(cmd.Context(), owner)
	}
	return store.ListAll(cmd.Context())
}
