package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/advisor"
	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/optimizer"
)

func adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Ask Claude for suggestions on the current chart",
		Long: `Runs the optimizer over the stored roster, then asks Claude to review the
chart and suggest improvements. Requires ANTHROPIC_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if cfg.Claude.APIKey == "" {
				return fmt.Errorf("advise: ANTHROPIC_API_KEY is not set")
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("advise: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			guests, err := st.ListGuests(ctx)
			if err != nil {
				return fmt.Errorf("advise: listing guests: %w", err)
			}
			tables, err := st.ListTables(ctx)
			if err != nil {
				return fmt.Errorf("advise: listing tables: %w", err)
			}
			constraints, err := st.ListConstraints(ctx)
			if err != nil {
				return fmt.Errorf("advise: listing constraints: %w", err)
			}

			result := optimizer.New(logger).Optimize(guests, tables, constraints)

			adv := advisor.NewClaudeAdvisor(cfg.Claude.APIKey, cfg.Claude.Model, logger)
			advice, err := adv.Suggest(ctx, guests, tables, result)
			if err != nil {
				return fmt.Errorf("advise: %w", err)
			}
			metrics.Inc(metrics.AdviseTotal)

			fmt.Printf("Score: %.0f/100\n\n%s\n", result.Score, advice)
			return nil
		},
	}
}
