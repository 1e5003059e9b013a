package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage the floor plan",
	}
	cmd.AddCommand(tablesAddCmd(), tablesListCmd(), tablesRemoveCmd())
	return cmd
}

func tablesAddCmd() *cobra.Command {
	var (
		name     string
		capacity int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if capacity <= 0 {
				return fmt.Errorf("tables add: --capacity must be greater than 0")
			}

			t := models.Table{
				ID:       uuid.NewString(),
				Name:     name,
				Capacity: capacity,
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("tables add: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.UpsertTable(ctx, t); err != nil {
				return fmt.Errorf("tables add: storing table: %w", err)
			}

			fmt.Printf("Added table %s (%s, %d seats)\n", t.Name, t.ID, t.Capacity)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "table display name")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "number of seats (required)")
	return cmd
}

func tablesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("tables list: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			tables, err := st.ListTables(ctx)
			if err != nil {
				return fmt.Errorf("tables list: fetching tables: %w", err)
			}

			for i, t := range tables {
				name := t.Name
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Printf("[%d] %s — %d seats\n", i+1, name, t.Capacity)
				fmt.Printf("    ID: %s\n", t.ID)
			}

			if len(tables) == 0 {
				fmt.Println("No tables found.")
			}

			return nil
		},
	}
}

func tablesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a table by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("tables remove: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.DeleteTable(ctx, args[0]); err != nil {
				return fmt.Errorf("tables remove: %w", err)
			}

			fmt.Printf("Removed table %s\n", args[0])
			return nil
		},
	}
}
