package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/export"
	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/optimizer"
)

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the seating chart as an Excel workbook",
		Long: `Runs the optimizer over the stored roster and writes the resulting chart
to an xlsx workbook with a seating sheet and a score/violation report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("export: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			guests, err := st.ListGuests(ctx)
			if err != nil {
				return fmt.Errorf("export: listing guests: %w", err)
			}
			tables, err := st.ListTables(ctx)
			if err != nil {
				return fmt.Errorf("export: listing tables: %w", err)
			}
			constraints, err := st.ListConstraints(ctx)
			if err != nil {
				return fmt.Errorf("export: listing constraints: %w", err)
			}

			result := optimizer.New(logger).Optimize(guests, tables, constraints)

			buf, filename, err := export.NewExporter(logger).Workbook(guests, tables, result)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			target := outPath
			if target == "" {
				target = filename
			}
			if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("export: writing %s: %w", target, err)
			}
			metrics.Inc(metrics.ExportTotal)

			abs, absErr := filepath.Abs(target)
			if absErr != nil {
				abs = target
			}
			fmt.Printf("Wrote %s (score %.0f/100)\n", abs, result.Score)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output file path (default seating_chart_<date>.xlsx)")
	return cmd
}
