// Package maintenance cleans stale seating state out of the roster.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/store"
)

// Report summarizes the results of a maintenance run.
type Report struct {
	DeclinedCleared int `json:"declined_cleared"`
	OrphanedCleared int `json:"orphaned_cleared"`
}

// Manager handles roster maintenance operations.
type Manager struct {
	store  store.Store
	logger *slog.Logger
}

// NewManager creates a new maintenance manager.
func NewManager(st store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  st,
		logger: logger,
	}
}

// Run clears assignments that no longer make sense: seats held by guests
// who declined, and seats at tables that have been removed from the floor
// plan. With dryRun set it only counts what would change.
func (m *Manager) Run(ctx context.Context, dryRun bool) (*Report, error) {
	guests, err := m.store.ListGuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing guests: %w", err)
	}
	tables, err := m.store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.ID] = true
	}

	report := &Report{}
	for _, g := range guests {
		if g.TableID == "" {
			continue
		}

		clear := false
		switch {
		case g.RSVPStatus == models.RSVPDeclined:
			m.logger.Info("clearing seat of declined guest", "id", g.ID, "name", g.Name, "table", g.TableID)
			report.DeclinedCleared++
			clear = true
		case !known[g.TableID]:
			m.logger.Info("clearing seat at removed table", "id", g.ID, "name", g.Name, "table", g.TableID)
			report.OrphanedCleared++
			clear = true
		}

		if clear && !dryRun {
			g.TableID = ""
			if err := m.store.UpsertGuest(ctx, g); err != nil {
				return nil, fmt.Errorf("clearing assignment of guest %q: %w", g.ID, err)
			}
			metrics.Inc(metrics.CleanupCleared)
		}
	}

	return report, nil
}
