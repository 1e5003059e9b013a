package store_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// storeFactories lets every contract test run against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) store.Store {
	t.Helper()
	return map[string]func(t *testing.T) store.Store{
		"mock": func(t *testing.T) store.Store {
			t.Helper()
			return store.NewMockStore()
		},
		"sqlite": func(t *testing.T) store.Store {
			t.Helper()
			s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "event.db"), newTestLogger())
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreGuestRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer func() { _ = st.Close() }()
			ctx := context.Background()

			g := models.Guest{
				ID:        "g1",
				Name:      "Ada",
				Group:     "Lovelace",
				Industry:  "tech",
				Interests: []string{"chess", "math"},
				Relationships: []models.Relationship{
					{GuestID: "g2", Type: models.RelationshipFriend, Strength: 3},
				},
				RSVPStatus: models.RSVPConfirmed,
			}
			require.NoError(t, st.UpsertGuest(ctx, g))

			got, err := st.GetGuest(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, g, *got)

			_, err = st.GetGuest(ctx, "missing")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestStoreListOrderIsInsertionOrder(t *testing.T) {
	// The optimizer's tie-breaks rely on this ordering.
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer func() { _ = st.Close() }()
			ctx := context.Background()

			ids := []string{"z", "a", "m", "b"}
			for _, id := range ids {
				require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: id, Name: id, RSVPStatus: models.RSVPPending}))
				require.NoError(t, st.UpsertTable(ctx, models.Table{ID: id, Capacity: 4}))
			}
			// Updating a record must not move it.
			require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "z", Name: "zed", RSVPStatus: models.RSVPConfirmed}))

			guests, err := st.ListGuests(ctx)
			require.NoError(t, err)
			gotGuests := make([]string, 0, len(guests))
			for _, g := range guests {
				gotGuests = append(gotGuests, g.ID)
			}
			assert.Equal(t, ids, gotGuests)
			assert.Equal(t, "zed", guests[0].Name)

			tables, err := st.ListTables(ctx)
			require.NoError(t, err)
			gotTables := make([]string, 0, len(tables))
			for _, tb := range tables {
				gotTables = append(gotTables, tb.ID)
			}
			assert.Equal(t, ids, gotTables)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer func() { _ = st.Close() }()
			ctx := context.Background()

			require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g1", Name: "Ada", RSVPStatus: models.RSVPPending}))
			require.NoError(t, st.DeleteGuest(ctx, "g1"))
			assert.ErrorIs(t, st.DeleteGuest(ctx, "g1"), store.ErrNotFound)

			require.NoError(t, st.UpsertTable(ctx, models.Table{ID: "t1", Capacity: 2}))
			require.NoError(t, st.DeleteTable(ctx, "t1"))
			assert.ErrorIs(t, st.DeleteTable(ctx, "t1"), store.ErrNotFound)

			c := models.Constraint{ID: "c1", GuestIDs: []string{"a", "b"}, Type: models.ConstraintSameTable, Priority: models.PriorityRequired}
			require.NoError(t, st.UpsertConstraint(ctx, c))
			require.NoError(t, st.DeleteConstraint(ctx, "c1"))
			assert.ErrorIs(t, st.DeleteConstraint(ctx, "c1"), store.ErrNotFound)
		})
	}
}

func TestStoreConstraintRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer func() { _ = st.Close() }()
			ctx := context.Background()

			c := models.Constraint{
				ID:       "c1",
				GuestIDs: []string{"g1", "g2", "g3"},
				Type:     models.ConstraintDifferentTable,
				Priority: models.PriorityPreferred,
			}
			require.NoError(t, st.UpsertConstraint(ctx, c))

			list, err := st.ListConstraints(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, c, list[0])
		})
	}
}

func TestStoreSaveAssignments(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer func() { _ = st.Close() }()
			ctx := context.Background()

			for _, id := range []string{"g1", "g2", "g3"} {
				require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: id, Name: id, RSVPStatus: models.RSVPConfirmed}))
			}
			// g3 had a previous assignment that should be cleared.
			require.NoError(t, st.SaveAssignments(ctx, map[string]string{"g1": "t1", "g2": "t1", "g3": "t9"}))
			require.NoError(t, st.SaveAssignments(ctx, map[string]string{"g1": "t2", "g2": "t1"}))

			guests, err := st.ListGuests(ctx)
			require.NoError(t, err)
			byID := map[string]string{}
			for _, g := range guests {
				byID[g.ID] = g.TableID
			}
			assert.Equal(t, "t2", byID["g1"])
			assert.Equal(t, "t1", byID["g2"])
			assert.Empty(t, byID["g3"])
		})
	}
}

func TestStoreStats(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer func() { _ = st.Close() }()
			ctx := context.Background()

			require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g1", Name: "a", RSVPStatus: models.RSVPConfirmed, TableID: "t1"}))
			require.NoError(t, st.UpsertGuest(ctx, models.Guest{ID: "g2", Name: "b", RSVPStatus: models.RSVPDeclined}))
			require.NoError(t, st.UpsertTable(ctx, models.Table{ID: "t1", Capacity: 8}))
			require.NoError(t, st.UpsertTable(ctx, models.Table{ID: "t2", Capacity: 6}))
			require.NoError(t, st.UpsertConstraint(ctx, models.Constraint{
				ID: "c1", GuestIDs: []string{"g1", "g2"}, Type: models.ConstraintSameTable, Priority: models.PriorityOptional,
			}))

			stats, err := st.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), stats.TotalGuests)
			assert.Equal(t, int64(2), stats.TotalTables)
			assert.Equal(t, int64(1), stats.TotalConstraints)
			assert.Equal(t, int64(14), stats.TotalCapacity)
			assert.Equal(t, int64(1), stats.SeatedGuests)
			assert.Equal(t, int64(1), stats.ByRSVP[string(models.RSVPConfirmed)])
			assert.Equal(t, int64(1), stats.ByRSVP[string(models.RSVPDeclined)])
		})
	}
}

func TestMockStoreCopiesOnRead(t *testing.T) {
	st := store.NewMockStore()
	ctx := context.Background()

	require.NoError(t, st.UpsertGuest(ctx, models.Guest{
		ID: "g1", Name: "Ada", Interests: []string{"chess"}, RSVPStatus: models.RSVPPending,
	}))

	got, err := st.GetGuest(ctx, "g1")
	require.NoError(t, err)
	got.Interests[0] = "mutated"

	again, err := st.GetGuest(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "chess", again.Interests[0])
}
