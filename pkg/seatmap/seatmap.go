// Package seatmap renders seating assignments as plain text for terminal
// output.
package seatmap

import (
	"fmt"
	"strings"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// Render formats the result as one block per table, each listing its seated
// guests, followed by an unseated section and the score. Tables appear in
// input order; guests within a table appear in guest-list order.
func Render(guests []models.Guest, tables []models.Table, result models.OptimizationResult) string {
	byTable := make(map[string][]models.Guest)
	var unseated []models.Guest
	for _, g := range guests {
		if tid, ok := result.Assignments[g.ID]; ok {
			byTable[tid] = append(byTable[tid], g)
		} else {
			unseated = append(unseated, g)
		}
	}

	var b strings.Builder
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		seated := byTable[t.ID]
		fmt.Fprintf(&b, "%s (%d/%d)\n", name, len(seated), t.Capacity)
		for _, g := range seated {
			b.WriteString("  " + guestLine(g) + "\n")
		}
		b.WriteString("\n")
	}

	if len(unseated) > 0 {
		b.WriteString("Unseated\n")
		for _, g := range unseated {
			b.WriteString("  " + guestLine(g) + "\n")
		}
		b.WriteString("\n")
	}

	if len(result.Violations) > 0 {
		b.WriteString("Violations\n")
		for _, v := range result.Violations {
			b.WriteString("  - " + v.Message + "\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Score: %.0f/100\n", result.Score)
	return b.String()
}

// guestLine formats a single guest entry, appending the group when set.
func guestLine(g models.Guest) string {
	if g.Group != "" {
		return fmt.Sprintf("%s (%s)", g.Name, g.Group)
	}
	return g.Name
}
