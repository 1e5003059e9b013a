package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// SQLiteStore implements Store on a local SQLite database. Nested guest
// fields (interests, relationships, constraint member lists) are stored
// as JSON columns. Each entity table carries an autoincrement seq column
// so List* methods return insertion order, which the optimizer's
// tie-breaks depend on.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS guests (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	grp           TEXT NOT NULL DEFAULT '',
	industry      TEXT NOT NULL DEFAULT '',
	interests     TEXT NOT NULL DEFAULT '[]',
	relationships TEXT NOT NULL DEFAULT '[]',
	rsvp_status   TEXT NOT NULL DEFAULT 'pending',
	table_id      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS event_tables (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	id       TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL DEFAULT '',
	capacity INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS constraints (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT NOT NULL UNIQUE,
	guest_ids TEXT NOT NULL DEFAULT '[]',
	type      TEXT NOT NULL,
	priority  TEXT NOT NULL
);
`

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verifying database at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	logger.Debug("opened event database", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// UpsertGuest inserts or updates a guest by ID. Updates keep the guest's
// original seq, so insertion order is stable.
func (s *SQLiteStore) UpsertGuest(ctx context.Context, g models.Guest) error {
	interests, err := json.Marshal(g.Interests)
	if err != nil {
		return fmt.Errorf("encoding interests: %w", err)
	}
	relationships, err := json.Marshal(g.Relationships)
	if err != nil {
		return fmt.Errorf("encoding relationships: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO guests (id, name, grp, industry, interests, relationships, rsvp_status, table_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			grp = excluded.grp,
			industry = excluded.industry,
			interests = excluded.interests,
			relationships = excluded.relationships,
			rsvp_status = excluded.rsvp_status,
			table_id = excluded.table_id`,
		g.ID, g.Name, g.Group, g.Industry, string(interests), string(relationships), string(g.RSVPStatus), g.TableID)
	if err != nil {
		return fmt.Errorf("upserting guest %s: %w", g.ID, err)
	}
	return nil
}

// GetGuest retrieves a single guest by ID.
func (s *SQLiteStore) GetGuest(ctx context.Context, id string) (*models.Guest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, grp, industry, interests, relationships, rsvp_status, table_id
		FROM guests WHERE id = ?`, id)

	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: guest %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting guest %s: %w", id, err)
	}
	return g, nil
}

// ListGuests returns all guests in insertion order.
func (s *SQLiteStore) ListGuests(ctx context.Context) ([]models.Guest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, grp, industry, interests, relationships, rsvp_status, table_id
		FROM guests ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing guests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var guests []models.Guest
	for rows.Next() {
		g, scanErr := scanGuest(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning guest: %w", scanErr)
		}
		guests = append(guests, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing guests: %w", err)
	}
	return guests, nil
}

// DeleteGuest removes a guest by ID.
func (s *SQLiteStore) DeleteGuest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting guest %s: %w", id, err)
	}
	return requireAffected(res, fmt.Sprintf("guest %s", id))
}

// UpsertTable inserts or updates a table by ID.
func (s *SQLiteStore) UpsertTable(ctx context.Context, t models.Table) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_tables (id, name, capacity) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, capacity = excluded.capacity`,
		t.ID, t.Name, t.Capacity)
	if err != nil {
		return fmt.Errorf("upserting table %s: %w", t.ID, err)
	}
	return nil
}

// ListTables returns all tables in insertion order.
func (s *SQLiteStore) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, capacity FROM event_tables ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []models.Table
	for rows.Next() {
		var t models.Table
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.Capacity); scanErr != nil {
			return nil, fmt.Errorf("scanning table: %w", scanErr)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return tables, nil
}

// DeleteTable removes a table by ID.
func (s *SQLiteStore) DeleteTable(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM event_tables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting table %s: %w", id, err)
	}
	return requireAffected(res, fmt.Sprintf("table %s", id))
}

// UpsertConstraint inserts or updates a constraint by ID.
func (s *SQLiteStore) UpsertConstraint(ctx context.Context, c models.Constraint) error {
	ids, err := json.Marshal(c.GuestIDs)
	if err != nil {
		return fmt.Errorf("encoding guest ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO constraints (id, guest_ids, type, priority) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			guest_ids = excluded.guest_ids,
			type = excluded.type,
			priority = excluded.priority`,
		c.ID, string(ids), string(c.Type), string(c.Priority))
	if err != nil {
		return fmt.Errorf("upserting constraint %s: %w", c.ID, err)
	}
	return nil
}

// ListConstraints returns all constraints in insertion order.
func (s *SQLiteStore) ListConstraints(ctx context.Context) ([]models.Constraint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, guest_ids, type, priority FROM constraints ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing constraints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var constraints []models.Constraint
	for rows.Next() {
		var (
			c   models.Constraint
			ids string
		)
		if scanErr := rows.Scan(&c.ID, &ids, &c.Type, &c.Priority); scanErr != nil {
			return nil, fmt.Errorf("scanning constraint: %w", scanErr)
		}
		if scanErr := json.Unmarshal([]byte(ids), &c.GuestIDs); scanErr != nil {
			return nil, fmt.Errorf("decoding guest ids for constraint %s: %w", c.ID, scanErr)
		}
		constraints = append(constraints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing constraints: %w", err)
	}
	return constraints, nil
}

// DeleteConstraint removes a constraint by ID.
func (s *SQLiteStore) DeleteConstraint(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM constraints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting constraint %s: %w", id, err)
	}
	return requireAffected(res, fmt.Sprintf("constraint %s", id))
}

// SaveAssignments writes table IDs back to guests in one transaction.
// Guests absent from the mapping get their assignment cleared.
func (s *SQLiteStore) SaveAssignments(ctx context.Context, assignments map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = ''`); err != nil {
		return fmt.Errorf("clearing assignments: %w", err)
	}
	for guestID, tableID := range assignments {
		if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = ? WHERE id = ?`, tableID, guestID); err != nil {
			return fmt.Errorf("assigning guest %s: %w", guestID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignments: %w", err)
	}

	s.logger.Debug("saved assignments", "count", len(assignments))
	return nil
}

// Stats returns summary statistics for the stored event.
func (s *SQLiteStore) Stats(ctx context.Context) (*models.EventStats, error) {
	stats := &models.EventStats{ByRSVP: make(map[string]int64)}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(table_id != ''), 0) FROM guests`)
	if err := row.Scan(&stats.TotalGuests, &stats.SeatedGuests); err != nil {
		return nil, fmt.Errorf("counting guests: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(capacity), 0) FROM event_tables`)
	if err := row.Scan(&stats.TotalTables, &stats.TotalCapacity); err != nil {
		return nil, fmt.Errorf("counting tables: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM constraints`)
	if err := row.Scan(&stats.TotalConstraints); err != nil {
		return nil, fmt.Errorf("counting constraints: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT rsvp_status, COUNT(*) FROM guests GROUP BY rsvp_status`)
	if err != nil {
		return nil, fmt.Errorf("counting by rsvp: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if scanErr := rows.Scan(&status, &n); scanErr != nil {
			return nil, fmt.Errorf("scanning rsvp count: %w", scanErr)
		}
		stats.ByRSVP[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counting by rsvp: %w", err)
	}

	return stats, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- helpers ---

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(r rowScanner) (*models.Guest, error) {
	var (
		g             models.Guest
		interests     string
		relationships string
	)
	if err := r.Scan(&g.ID, &g.Name, &g.Group, &g.Industry, &interests, &relationships, &g.RSVPStatus, &g.TableID); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(interests), &g.Interests); err != nil {
		return nil, fmt.Errorf("decoding interests for guest %s: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(relationships), &g.Relationships); err != nil {
		return nil, fmt.Errorf("decoding relationships for guest %s: %w", g.ID, err)
	}
	return &g, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return nil
}
