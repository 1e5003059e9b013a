package store

import (
	"context"
	"errors"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// ErrNotFound is returned by Get and Delete when the requested record does
// not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for event persistence: guests, tables, and
// constraints, plus the seating assignments written back after a run.
//
// List methods return records in insertion order. The optimizer's
// tie-breaks depend on that ordering, so implementations must keep it
// stable across calls.
type Store interface {
	// UpsertGuest inserts or updates a guest by ID.
	UpsertGuest(ctx context.Context, g models.Guest) error

	// GetGuest retrieves a single guest by ID.
	GetGuest(ctx context.Context, id string) (*models.Guest, error)

	// ListGuests returns all guests in insertion order.
	ListGuests(ctx context.Context) ([]models.Guest, error)

	// DeleteGuest removes a guest by ID.
	DeleteGuest(ctx context.Context, id string) error

	// UpsertTable inserts or updates a table by ID.
	UpsertTable(ctx context.Context, t models.Table) error

	// ListTables returns all tables in insertion order.
	ListTables(ctx context.Context) ([]models.Table, error)

	// DeleteTable removes a table by ID.
	DeleteTable(ctx context.Context, id string) error

	// UpsertConstraint inserts or updates a constraint by ID.
	UpsertConstraint(ctx context.Context, c models.Constraint) error

	// ListConstraints returns all constraints in insertion order.
	ListConstraints(ctx context.Context) ([]models.Constraint, error)

	// DeleteConstraint removes a constraint by ID.
	DeleteConstraint(ctx context.Context, id string) error

	// SaveAssignments writes each guest's table ID back to storage and
	// clears the assignment of every guest absent from the mapping.
	SaveAssignments(ctx context.Context, assignments map[string]string) error

	// Stats returns summary statistics for the stored event.
	Stats(ctx context.Context) (*models.EventStats, error)

	// Close cleans up resources.
	Close() error
}
