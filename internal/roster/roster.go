// Package roster parses event rosters from CSV and JSON files.
package roster

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// Event is the on-disk JSON document describing a full event: the guest
// list, the floor plan, and any seating constraints. It is the input format
// for stateless optimization runs.
type Event struct {
	Guests      []models.Guest      `json:"guests"`
	Tables      []models.Table      `json:"tables"`
	Constraints []models.Constraint `json:"constraints"`
}

// ParseEvent decodes a JSON event document and validates it.
func ParseEvent(r io.Reader) (*Event, error) {
	var ev Event
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ev); err != nil {
		return nil, fmt.Errorf("decoding event JSON: %w", err)
	}

	for i := range ev.Guests {
		g := &ev.Guests[i]
		if g.Name == "" {
			return nil, fmt.Errorf("guest %d: name is required", i+1)
		}
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if g.RSVPStatus == "" {
			g.RSVPStatus = models.RSVPPending
		}
		if !g.RSVPStatus.IsValid() {
			return nil, fmt.Errorf("guest %q: invalid rsvp_status %q", g.Name, g.RSVPStatus)
		}
		for _, rel := range g.Relationships {
			if !rel.Type.IsValid() {
				return nil, fmt.Errorf("guest %q: invalid relationship type %q", g.Name, rel.Type)
			}
		}
	}
	for i := range ev.Tables {
		t := &ev.Tables[i]
		if t.Capacity <= 0 {
			return nil, fmt.Errorf("table %d: capacity must be greater than 0", i+1)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
	}
	for i := range ev.Constraints {
		c := &ev.Constraints[i]
		if len(c.GuestIDs) < 2 {
			return nil, fmt.Errorf("constraint %d: at least two guest ids are required", i+1)
		}
		if !c.Type.IsValid() {
			return nil, fmt.Errorf("constraint %d: invalid type %q", i+1, c.Type)
		}
		if c.Priority == "" {
			c.Priority = models.PriorityPreferred
		}
		if !c.Priority.IsValid() {
			return nil, fmt.Errorf("constraint %d: invalid priority %q", i+1, c.Priority)
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
	}

	return &ev, nil
}

// csv column layout for guest imports. The header row is required; columns
// may appear in any order and unknown columns are ignored.
const (
	colName      = "name"
	colGroup     = "group"
	colIndustry  = "industry"
	colInterests = "interests"
	colRSVP      = "rsvp_status"
)

// ParseGuestsCSV reads a guest list from CSV. Interests within a cell are
// separated by semicolons.
func ParseGuestsCSV(r io.Reader) ([]models.Guest, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("CSV header is missing the %q column", colName)
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var guests []models.Guest
	line := 1
	for {
		record, readErr := cr.Read()
		if readErr == io.EOF {
			break
		}
		line++
		if readErr != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, readErr)
		}

		name := field(record, colName)
		if name == "" {
			return nil, fmt.Errorf("CSV line %d: name is required", line)
		}

		rsvp := models.RSVPPending
		if v := field(record, colRSVP); v != "" {
			rsvp = models.RSVPStatus(strings.ToLower(v))
			if !rsvp.IsValid() {
				return nil, fmt.Errorf("CSV line %d: invalid rsvp_status %q", line, v)
			}
		}

		guests = append(guests, models.Guest{
			ID:         uuid.NewString(),
			Name:       name,
			Group:      field(record, colGroup),
			Industry:   field(record, colIndustry),
			Interests:  splitInterests(field(record, colInterests)),
			RSVPStatus: rsvp,
		})
	}

	return guests, nil
}

// splitInterests splits a semicolon-separated cell, trimming whitespace and
// dropping empty entries.
func splitInterests(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
