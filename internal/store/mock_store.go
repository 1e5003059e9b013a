package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// MockStore is an in-memory implementation of Store for testing. Records
// are kept in ordered slices so the insertion-order contract holds.
type MockStore struct {
	mu          sync.RWMutex
	guests      []models.Guest
	tables      []models.Table
	constraints []models.Constraint
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// UpsertGuest inserts or updates a guest, preserving its original position
// on update.
func (m *MockStore) UpsertGuest(_ context.Context, g models.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g = copyGuest(g)
	for i := range m.guests {
		if m.guests[i].ID == g.ID {
			m.guests[i] = g
			return nil
		}
	}
	m.guests = append(m.guests, g)
	return nil
}

// GetGuest retrieves a single guest by ID.
func (m *MockStore) GetGuest(_ context.Context, id string) (*models.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.guests {
		if m.guests[i].ID == id {
			g := copyGuest(m.guests[i])
			return &g, nil
		}
	}
	return nil, fmt.Errorf("%w: guest %s", ErrNotFound, id)
}

// ListGuests returns all guests in insertion order.
func (m *MockStore) ListGuests(_ context.Context) ([]models.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Guest, 0, len(m.guests))
	for i := range m.guests {
		out = append(out, copyGuest(m.guests[i]))
	}
	return out, nil
}

// DeleteGuest removes a guest by ID.
func (m *MockStore) DeleteGuest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.guests {
		if m.guests[i].ID == id {
			m.guests = append(m.guests[:i], m.guests[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: guest %s", ErrNotFound, id)
}

// UpsertTable inserts or updates a table.
func (m *MockStore) UpsertTable(_ context.Context, t models.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tables {
		if m.tables[i].ID == t.ID {
			m.tables[i] = t
			return nil
		}
	}
	m.tables = append(m.tables, t)
	return nil
}

// ListTables returns all tables in insertion order.
func (m *MockStore) ListTables(_ context.Context) ([]models.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Table, len(m.tables))
	copy(out, m.tables)
	return out, nil
}

// DeleteTable removes a table by ID.
func (m *MockStore) DeleteTable(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tables {
		if m.tables[i].ID == id {
			m.tables = append(m.tables[:i], m.tables[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: table %s", ErrNotFound, id)
}

// UpsertConstraint inserts or updates a constraint.
func (m *MockStore) UpsertConstraint(_ context.Context, c models.Constraint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c = copyConstraint(c)
	for i := range m.constraints {
		if m.constraints[i].ID == c.ID {
			m.constraints[i] = c
			return nil
		}
	}
	m.constraints = append(m.constraints, c)
	return nil
}

// ListConstraints returns all constraints in insertion order.
func (m *MockStore) ListConstraints(_ context.Context) ([]models.Constraint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Constraint, 0, len(m.constraints))
	for i := range m.constraints {
		out = append(out, copyConstraint(m.constraints[i]))
	}
	return out, nil
}

// DeleteConstraint removes a constraint by ID.
func (m *MockStore) DeleteConstraint(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.constraints {
		if m.constraints[i].ID == id {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: constraint %s", ErrNotFound, id)
}

// SaveAssignments writes table IDs back to guests. Guests absent from the
// mapping get their assignment cleared.
func (m *MockStore) SaveAssignments(_ context.Context, assignments map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.guests {
		m.guests[i].TableID = assignments[m.guests[i].ID]
	}
	return nil
}

// Stats returns summary statistics computed from the in-memory store.
func (m *MockStore) Stats(_ context.Context) (*models.EventStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.EventStats{
		TotalGuests:      int64(len(m.guests)),
		TotalTables:      int64(len(m.tables)),
		TotalConstraints: int64(len(m.constraints)),
		ByRSVP:           make(map[string]int64),
	}
	for i := range m.guests {
		stats.ByRSVP[string(m.guests[i].RSVPStatus)]++
		if m.guests[i].TableID != "" {
			stats.SeatedGuests++
		}
	}
	for i := range m.tables {
		stats.TotalCapacity += int64(m.tables[i].Capacity)
	}
	return stats, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// --- helpers ---

// copyGuest deep-copies mutable fields so callers cannot mutate stored data.
func copyGuest(g models.Guest) models.Guest {
	if len(g.Interests) > 0 {
		interests := make([]string, len(g.Interests))
		copy(interests, g.Interests)
		g.Interests = interests
	}
	if len(g.Relationships) > 0 {
		rels := make([]models.Relationship, len(g.Relationships))
		copy(rels, g.Relationships)
		g.Relationships = rels
	}
	return g
}

func copyConstraint(c models.Constraint) models.Constraint {
	if len(c.GuestIDs) > 0 {
		ids := make([]string, len(c.GuestIDs))
		copy(ids, c.GuestIDs)
		c.GuestIDs = ids
	}
	return c
}
