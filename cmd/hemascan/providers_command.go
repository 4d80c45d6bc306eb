package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hemascan/internal/providers"
)

const providerCheckTimeout = 30 * time.Second

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Analysis provider utilities",
	}
	providersCmd.AddCommand(newProvidersCheckCommand(ctx))
	return providersCmd
}

func newProvidersCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify each configured provider responds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			chain, err := providers.BuildChain(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failures := 0
			for _, provider := range chain {
				if !provider.Available() {
					fmt.Fprintf(out, "%-12s skipped (no API key)\n", provider.Name())
					continue
				}
				checker, ok := provider.(providers.HealthChecker)
				if !ok {
					fmt.Fprintf(out, "%-12s no health check\n", provider.Name())
					continue
				}

				checkCtx, cancel := context.WithTimeout(cmd.Context(), providerCheckTimeout)
				err := checker.HealthCheck(checkCtx)
				cancel()
				if err != nil {
					failures++
					fmt.Fprintf(out, "%-12s FAILED: %v\n", provider.Name(), err)
					continue
				}
				fmt.Fprintf(out, "%-12s ok\n", provider.Name())
			}

			if failures > 0 {
				return fmt.Errorf("%d provider(s) failed the health check", failures)
			}
			return nil
		},
	}
}
