package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/roster"
)

func importCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import guests from a CSV file",
		Long: `Import guests from a CSV file into the roster.

The header row is required. Recognized columns: name (required), group,
industry, interests (semicolon-separated), rsvp_status. Columns may appear
in any order.

Use - as the file path to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			var r io.Reader
			if filePath == "" || filePath == "-" {
				r = os.Stdin
			} else {
				f, openErr := os.Open(filePath)
				if openErr != nil {
					return fmt.Errorf("import: opening file: %w", openErr)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			guests, err := roster.ParseGuestsCSV(r)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("import: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			for i := range guests {
				if err := st.UpsertGuest(ctx, guests[i]); err != nil {
					return fmt.Errorf("import: storing guest %q: %w", guests[i].Name, err)
				}
			}
			metrics.Inc(metrics.ImportTotal)

			fmt.Printf("Imported %d guests\n", len(guests))
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "CSV file path (- or empty for stdin)")
	return cmd
}
