// Package optimizer assigns guests to tables using a greedy heuristic:
// affinity groups first, then required same-table constraints, then
// individual placement by interest/relationship score, followed by a
// post-hoc constraint audit. It never backtracks and always returns a
// best-effort result instead of an error.
package optimizer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// Scoring weights for the individual-placement pass.
const (
	// InterestMatchScore is added per case-insensitive interest pair shared
	// with a seated tablemate.
	InterestMatchScore = 2.0

	// NetworkingBonus is added when same-industry tablemates are present but
	// form a strict minority of the table.
	NetworkingBonus = 1.0

	// AvoidPenalty is applied once per avoid relationship toward a seated
	// tablemate. It dominates any realistic positive score.
	AvoidPenalty = -10.0
)

// Score penalties and bonuses for the final 0-100 result score.
const (
	unseatedGuestPenalty = 5.0
	violationPenalty     = 10.0
	intactGroupBonus     = 3.0
)

// Optimizer computes table assignments for an event.
type Optimizer struct {
	logger *slog.Logger
}

// New creates an Optimizer.
func New(logger *slog.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// plan is the per-invocation working state. A fresh plan is allocated on
// every Optimize call, so the Optimizer is safe for concurrent use.
type plan struct {
	tables []models.Table
	// occupancy counts seats filled per table ID; members lists seated
	// guests per table in seating order; assigned maps guest ID → table ID.
	occupancy map[string]int
	members   map[string][]*models.Guest
	assigned  map[string]string
	guestByID map[string]*models.Guest
}

// Optimize assigns guests to tables and returns the assignment mapping, a
// 0-100 score, and diagnostics. Inputs are never mutated; the caller
// applies the returned assignments. The result is deterministic for a
// fixed input ordering: all tie-breaks follow guest, table, and
// constraint slice order.
func (o *Optimizer) Optimize(guests []models.Guest, tables []models.Table, constraints []models.Constraint) models.OptimizationResult {
	if len(tables) == 0 {
		return models.OptimizationResult{
			Assignments: map[string]string{},
			Score:       0,
			Violations: []models.Violation{{
				Kind:    models.ViolationNoTables,
				Message: "No tables available",
			}},
		}
	}

	p := &plan{
		tables:    tables,
		occupancy: make(map[string]int, len(tables)),
		members:   make(map[string][]*models.Guest, len(tables)),
		assigned:  make(map[string]string, len(guests)),
		guestByID: make(map[string]*models.Guest, len(guests)),
	}
	for i := range guests {
		p.guestByID[guests[i].ID] = &guests[i]
	}

	var violations []models.Violation

	violations = append(violations, o.placeGroups(p, guests)...)
	o.applySameTableConstraints(p, constraints)
	o.placeIndividuals(p, guests)
	violations = append(violations, o.audit(p, guests, constraints)...)

	unseated := 0
	for i := range guests {
		if _, ok := p.assigned[guests[i].ID]; !ok {
			unseated++
		}
	}

	score := 100.0
	score -= unseatedGuestPenalty * float64(unseated)
	score -= violationPenalty * float64(len(violations))
	score += intactGroupBonus * float64(countIntactGroups(p, guests))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if o.logger != nil {
		o.logger.Debug("optimization complete",
			"guests", len(guests),
			"tables", len(tables),
			"seated", len(p.assigned),
			"violations", len(violations),
			"score", score)
	}

	return models.OptimizationResult{
		Assignments: p.assigned,
		Score:       score,
		Violations:  violations,
	}
}

// seat places a guest at a table and updates the occupancy tracking.
func (p *plan) seat(g *models.Guest, tableID string) {
	p.assigned[g.ID] = tableID
	p.occupancy[tableID]++
	p.members[tableID] = append(p.members[tableID], g)
}

// free returns the remaining capacity of a table.
func (p *plan) free(t models.Table) int {
	return t.Capacity - p.occupancy[t.ID]
}

// placeGroups partitions guests into affinity units by their non-empty
// group label and seats each whole unit at the first table that can hold
// it. Units that fit nowhere whole are split guest-by-guest across tables
// with free seats, recording one violation per split group. Placement is
// greedy: a unit seated early can block a later unit from fitting whole.
func (o *Optimizer) placeGroups(p *plan, guests []models.Guest) []models.Violation {
	var order []string
	units := make(map[string][]*models.Guest)
	for i := range guests {
		g := &guests[i]
		if g.Group == "" {
			continue
		}
		if _, seen := units[g.Group]; !seen {
			order = append(order, g.Group)
		}
		units[g.Group] = append(units[g.Group], g)
	}

	var violations []models.Violation
	for _, name := range order {
		unit := units[name]

		placed := false
		for _, t := range p.tables {
			if p.free(t) >= len(unit) {
				for _, g := range unit {
					p.seat(g, t.ID)
				}
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		// Split: first table with any free seat, per guest.
		ids := make([]string, 0, len(unit))
		for _, g := range unit {
			ids = append(ids, g.ID)
			for _, t := range p.tables {
				if p.free(t) >= 1 {
					p.seat(g, t.ID)
					break
				}
			}
		}
		violations = append(violations, models.Violation{
			Kind:      models.ViolationGroupSplit,
			Message:   fmt.Sprintf("Group %q could not be seated together and was split across tables", name),
			GroupName: name,
			GuestIDs:  ids,
		})
	}
	return violations
}

// applySameTableConstraints pulls the unseated members of each required
// same_table constraint onto the first table that already holds at least
// one member and has room for the rest. Constraints with no seated member
// or no fitting table are left unresolved here; the audit pass reports
// breaks after all placement is done.
func (o *Optimizer) applySameTableConstraints(p *plan, constraints []models.Constraint) {
	for _, c := range constraints {
		if c.Priority != models.PriorityRequired || c.Type != models.ConstraintSameTable {
			continue
		}

		var pending []*models.Guest
		for _, id := range c.GuestIDs {
			g, ok := p.guestByID[id]
			if !ok {
				continue // dangling reference
			}
			if _, seated := p.assigned[id]; !seated {
				pending = append(pending, g)
			}
		}
		if len(pending) == 0 {
			continue
		}

		for _, t := range p.tables {
			anchored := 0
			for _, id := range c.GuestIDs {
				if p.assigned[id] == t.ID {
					anchored++
				}
			}
			if anchored == 0 || p.free(t) < len(pending) {
				continue
			}
			for _, g := range pending {
				p.seat(g, t.ID)
			}
			break
		}
	}
}

// placeIndividuals seats every ungrouped guest that is still unseated at
// the table with the highest interest/relationship score. The first table
// with the strictly highest score wins; the first table with any free
// seat is provisionally selected, so a guest is always seated while
// capacity remains.
func (o *Optimizer) placeIndividuals(p *plan, guests []models.Guest) {
	for i := range guests {
		g := &guests[i]
		if g.Group != "" {
			continue
		}
		if _, seated := p.assigned[g.ID]; seated {
			continue
		}

		bestTable := ""
		bestScore := 0.0
		for _, t := range p.tables {
			if p.free(t) < 1 {
				continue
			}
			score := o.tableScore(p, g, t)
			if bestTable == "" || score > bestScore {
				bestTable = t.ID
				bestScore = score
			}
		}
		if bestTable != "" {
			p.seat(g, bestTable)
		}
	}
}

// tableScore rates how well a guest fits at a table given who is already
// seated there.
func (o *Optimizer) tableScore(p *plan, g *models.Guest, t models.Table) float64 {
	mates := p.members[t.ID]
	score := 0.0

	// Shared interests, weighted by how many tablemates share them.
	for _, mate := range mates {
		for _, gi := range g.Interests {
			for _, mi := range mate.Interests {
				if strings.EqualFold(gi, mi) {
					score += InterestMatchScore
				}
			}
		}
	}

	// Networking: reward a minority presence of the guest's industry.
	// A table already dominated by one industry gets no bonus.
	if g.Industry != "" && len(mates) > 0 {
		same := 0
		for _, mate := range mates {
			if mate.Industry == g.Industry {
				same++
			}
		}
		if same > 0 && same*2 < len(mates) {
			score += NetworkingBonus
		}
	}

	// Declared relationships toward already-seated tablemates. Only the
	// candidate's own list is consulted; relationships are directional.
	for _, rel := range g.Relationships {
		if p.assigned[rel.GuestID] != t.ID {
			continue
		}
		if rel.Type == models.RelationshipAvoid {
			score += AvoidPenalty
		} else {
			score += rel.Strength
		}
	}

	return score
}

// audit reports constraint breaks and unseated guests after all placement
// passes. It never changes assignments. same_table and different_table
// constraints are audited at every priority; the remaining constraint
// types are accepted as data but not checked.
func (o *Optimizer) audit(p *plan, guests []models.Guest, constraints []models.Constraint) []models.Violation {
	var violations []models.Violation

	for _, c := range constraints {
		if c.Type != models.ConstraintDifferentTable {
			continue
		}
		seated, distinct := seatedSpread(p, c.GuestIDs)
		if seated >= 2 && distinct < seated {
			violations = append(violations, models.Violation{
				Kind:         models.ViolationDifferentTableBroken,
				Message:      fmt.Sprintf("Constraint %s: guests required at different tables share a table", c.ID),
				ConstraintID: c.ID,
				GuestIDs:     c.GuestIDs,
			})
		}
	}

	for _, c := range constraints {
		if c.Type != models.ConstraintSameTable {
			continue
		}
		seated, distinct := seatedSpread(p, c.GuestIDs)
		if seated >= 2 && distinct > 1 {
			violations = append(violations, models.Violation{
				Kind:         models.ViolationSameTableBroken,
				Message:      fmt.Sprintf("Constraint %s: guests required at the same table are split up", c.ID),
				ConstraintID: c.ID,
				GuestIDs:     c.GuestIDs,
			})
		}
	}

	unseated := 0
	for i := range guests {
		if _, ok := p.assigned[guests[i].ID]; !ok {
			unseated++
		}
	}
	if unseated > 0 {
		violations = append(violations, models.Violation{
			Kind:    models.ViolationUnseated,
			Message: fmt.Sprintf("%d guest(s) could not be seated", unseated),
			Count:   unseated,
		})
	}

	return violations
}

// seatedSpread returns how many of the referenced guests are seated and
// how many distinct tables they occupy. Dangling references are skipped.
func seatedSpread(p *plan, guestIDs []string) (seated, distinct int) {
	tables := make(map[string]struct{})
	for _, id := range guestIDs {
		tid, ok := p.assigned[id]
		if !ok {
			continue
		}
		seated++
		tables[tid] = struct{}{}
	}
	return seated, len(tables)
}

// countIntactGroups counts affinity groups whose every member ended up
// seated at one table.
func countIntactGroups(p *plan, guests []models.Guest) int {
	type spread struct {
		table string
		whole bool
	}
	var order []string
	groups := make(map[string]*spread)
	for i := range guests {
		g := &guests[i]
		if g.Group == "" {
			continue
		}
		s, seen := groups[g.Group]
		if !seen {
			order = append(order, g.Group)
			s = &spread{whole: true}
			groups[g.Group] = s
		}
		tid, seated := p.assigned[g.ID]
		if !seated {
			s.whole = false
			continue
		}
		if s.table == "" {
			s.table = tid
		} else if s.table != tid {
			s.whole = false
		}
	}

	intact := 0
	for _, name := range order {
		if s := groups[name]; s.whole && s.table != "" {
			intact++
		}
	}
	return intact
}
