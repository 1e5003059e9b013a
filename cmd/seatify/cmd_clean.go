package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/maintenance"
)

func cleanCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clear stale seating assignments",
		Long: `Clears the assignments of guests who declined and of guests seated at
tables that no longer exist. Use --dry-run to preview.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("clean: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			report, err := maintenance.NewManager(st, logger).Run(ctx, dryRun)
			if err != nil {
				return fmt.Errorf("clean: %w", err)
			}

			verb := "Cleared"
			if dryRun {
				verb = "Would clear"
			}
			fmt.Printf("%s %d declined and %d orphaned assignments\n", verb, report.DeclinedCleared, report.OrphanedCleared)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	return cmd
}
