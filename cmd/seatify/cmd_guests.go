package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

func guestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Manage the guest list",
	}
	cmd.AddCommand(guestsAddCmd(), guestsListCmd(), guestsRemoveCmd())
	return cmd
}

func guestsAddCmd() *cobra.Command {
	var (
		name          string
		group         string
		industry      string
		interests     []string
		rsvp          string
		relationships []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a guest",
		Long: `Add a guest to the roster.

Relationships are given as guest-id:type[:strength], e.g.
--relationship 550e8400:partner:5 --relationship 6ba7b810:avoid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("guests add: --name is required")
			}

			status := models.RSVPPending
			if rsvp != "" {
				status = models.RSVPStatus(rsvp)
				if !status.IsValid() {
					return fmt.Errorf("guests add: invalid --rsvp %q (use pending, confirmed, or declined)", rsvp)
				}
			}

			var rels []models.Relationship
			for _, spec := range relationships {
				rel, err := parseRelationship(spec)
				if err != nil {
					return fmt.Errorf("guests add: %w", err)
				}
				rels = append(rels, rel)
			}

			g := models.Guest{
				ID:            uuid.NewString(),
				Name:          name,
				Group:         group,
				Industry:      industry,
				Interests:     interests,
				Relationships: rels,
				RSVPStatus:    status,
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("guests add: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.UpsertGuest(ctx, g); err != nil {
				return fmt.Errorf("guests add: storing guest: %w", err)
			}

			fmt.Printf("Added guest %s (%s)\n", g.Name, g.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "guest name (required)")
	cmd.Flags().StringVar(&group, "group", "", "affinity group, e.g. a family name")
	cmd.Flags().StringVar(&industry, "industry", "", "industry for networking placement")
	cmd.Flags().StringSliceVar(&interests, "interest", nil, "interest (repeatable)")
	cmd.Flags().StringVar(&rsvp, "rsvp", "", "RSVP status: pending, confirmed, or declined")
	cmd.Flags().StringArrayVar(&relationships, "relationship", nil, "relationship as guest-id:type[:strength] (repeatable)")
	return cmd
}

// parseRelationship parses a guest-id:type[:strength] flag value.
func parseRelationship(spec string) (models.Relationship, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return models.Relationship{}, fmt.Errorf("invalid relationship %q (use guest-id:type[:strength])", spec)
	}

	rel := models.Relationship{
		GuestID: strings.TrimSpace(parts[0]),
		Type:    models.RelationshipType(strings.TrimSpace(parts[1])),
	}
	if rel.GuestID == "" {
		return models.Relationship{}, fmt.Errorf("invalid relationship %q: empty guest id", spec)
	}
	if !rel.Type.IsValid() {
		return models.Relationship{}, fmt.Errorf("invalid relationship type %q (use partner, family, friend, colleague, or avoid)", parts[1])
	}
	if len(parts) == 3 {
		strength, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return models.Relationship{}, fmt.Errorf("invalid relationship strength %q: %w", parts[2], err)
		}
		rel.Strength = strength
	}
	return rel, nil
}

func guestsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all guests",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("guests list: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			guests, err := st.ListGuests(ctx)
			if err != nil {
				return fmt.Errorf("guests list: fetching guests: %w", err)
			}

			for i, g := range guests {
				seat := "unseated"
				if g.TableID != "" {
					seat = "table " + g.TableID
				}
				fmt.Printf("[%d] %s [%s, %s]\n", i+1, g.Name, g.RSVPStatus, seat)
				fmt.Printf("    ID: %s", g.ID)
				if g.Group != "" {
					fmt.Printf(" | Group: %s", g.Group)
				}
				if len(g.Interests) > 0 {
					fmt.Printf(" | Interests: %s", truncate(strings.Join(g.Interests, ", "), 60))
				}
				fmt.Println()
			}

			if len(guests) == 0 {
				fmt.Println("No guests found.")
			}

			return nil
		},
	}
}

func guestsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a guest by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("guests remove: opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.DeleteGuest(ctx, args[0]); err != nil {
				return fmt.Errorf("guests remove: %w", err)
			}

			fmt.Printf("Removed guest %s\n", args[0])
			return nil
		},
	}
}
