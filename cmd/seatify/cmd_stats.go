package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show event statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("stats: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			stats, err := st.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats: fetching statistics: %w", err)
			}

			fmt.Printf("Guests:      %d (%d seated)\n", stats.TotalGuests, stats.SeatedGuests)
			fmt.Printf("Tables:      %d (%d seats total)\n", stats.TotalTables, stats.TotalCapacity)
			fmt.Printf("Constraints: %d\n\n", stats.TotalConstraints)

			fmt.Println("By RSVP:")
			for s, c := range stats.ByRSVP {
				fmt.Printf("  %-12s %d\n", s, c)
			}

			return nil
		},
	}
}
