package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/optimizer"
	"github.com/neonwatty/seatify-sub000/internal/roster"
	"github.com/neonwatty/seatify-sub000/pkg/seatmap"
)

func optimizeCmd() *cobra.Command {
	var (
		eventFile  string
		save       bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Assign guests to tables and score the chart",
		Long: `Runs the seating optimizer over the stored roster, or over a JSON event
file when --event is given. Use - as the file path to read from stdin.

With --save the resulting assignments are written back to the database
(ignored for --event runs).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if eventFile != "" {
				ev, err := loadEventFile(eventFile)
				if err != nil {
					return fmt.Errorf("optimize: %w", err)
				}
				result := optimizer.New(logger).Optimize(ev.Guests, ev.Tables, ev.Constraints)
				metrics.Inc(metrics.OptimizeTotal)
				return printResult(ev.Guests, ev.Tables, result, jsonOutput)
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("optimize: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			guests, err := st.ListGuests(ctx)
			if err != nil {
				return fmt.Errorf("optimize: listing guests: %w", err)
			}
			tables, err := st.ListTables(ctx)
			if err != nil {
				return fmt.Errorf("optimize: listing tables: %w", err)
			}
			constraints, err := st.ListConstraints(ctx)
			if err != nil {
				return fmt.Errorf("optimize: listing constraints: %w", err)
			}

			result := optimizer.New(logger).Optimize(guests, tables, constraints)
			metrics.Inc(metrics.OptimizeTotal)

			if save {
				if err := st.SaveAssignments(ctx, result.Assignments); err != nil {
					return fmt.Errorf("optimize: saving assignments: %w", err)
				}
				logger.Info("assignments saved", "seated", len(result.Assignments))
			}

			return printResult(guests, tables, result, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&eventFile, "event", "", "JSON event file for a stateless run (- for stdin)")
	cmd.Flags().BoolVar(&save, "save", false, "write assignments back to the database")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the raw result as JSON")
	return cmd
}

// loadEventFile reads and validates a JSON event document from a path or
// stdin.
func loadEventFile(path string) (*roster.Event, error) {
	if path == "-" {
		return roster.ParseEvent(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return roster.ParseEvent(f)
}

func printResult(guests []models.Guest, tables []models.Table, result models.OptimizationResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Print(seatmap.Render(guests, tables, result))
	return nil
}
