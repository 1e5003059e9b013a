package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

func constraintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "constraints",
		Short: "Manage seating constraints",
	}
	cmd.AddCommand(constraintsAddCmd(), constraintsListCmd(), constraintsRemoveCmd())
	return cmd
}

func constraintsAddCmd() *cobra.Command {
	var (
		guestIDs []string
		ctype    string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a constraint",
		Long: `Add a seating constraint binding two or more guests.

Types: same_table, different_table, must_sit_together, must_not_sit_together,
near_front, accessibility. Priorities: required, preferred, optional.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if len(guestIDs) < 2 {
				return fmt.Errorf("constraints add: at least two --guest values are required")
			}

			t := models.ConstraintType(ctype)
			if !t.IsValid() {
				return fmt.Errorf("constraints add: invalid --type %q", ctype)
			}

			p := models.PriorityPreferred
			if priority != "" {
				p = models.ConstraintPriority(priority)
				if !p.IsValid() {
					return fmt.Errorf("constraints add: invalid --priority %q (use required, preferred, or optional)", priority)
				}
			}

			c := models.Constraint{
				ID:       uuid.NewString(),
				GuestIDs: guestIDs,
				Type:     t,
				Priority: p,
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("constraints add: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.UpsertConstraint(ctx, c); err != nil {
				return fmt.Errorf("constraints add: storing constraint: %w", err)
			}

			fmt.Printf("Added %s/%s constraint %s\n", c.Type, c.Priority, c.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&guestIDs, "guest", nil, "guest ID the constraint applies to (repeatable)")
	cmd.Flags().StringVar(&ctype, "type", "", "constraint type (required)")
	cmd.Flags().StringVar(&priority, "priority", "", "constraint priority (default preferred)")
	return cmd
}

func constraintsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("constraints list: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			constraints, err := st.ListConstraints(ctx)
			if err != nil {
				return fmt.Errorf("constraints list: fetching constraints: %w", err)
			}

			for i, c := range constraints {
				fmt.Printf("[%d] [%s/%s] %s\n", i+1, c.Type, c.Priority, strings.Join(c.GuestIDs, ", "))
				fmt.Printf("    ID: %s\n", c.ID)
			}

			if len(constraints) == 0 {
				fmt.Println("No constraints found.")
			}

			return nil
		},
	}
}

func constraintsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a constraint by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("constraints remove: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.DeleteConstraint(ctx, args[0]); err != nil {
				return fmt.Errorf("constraints remove: %w", err)
			}

			fmt.Printf("Removed constraint %s\n", args[0])
			return nil
		},
	}
}
