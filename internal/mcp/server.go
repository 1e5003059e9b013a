// Package mcp implements the Model Context Protocol server for seatify.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/optimizer"
	"github.com/neonwatty/seatify-sub000/internal/store"
)

// Server wraps an MCPServer with seatify dependencies.
type Server struct {
	mcp    *mcpserver.MCPServer
	st     store.Store
	opt    *optimizer.Optimizer
	logger *slog.Logger
}

// NewServer creates a new MCP server. If st is nil, the tool calls will
// return an error response instead of panicking.
func NewServer(st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		st:     st,
		opt:    optimizer.New(logger),
		logger: logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"seatify",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildOptimizeTool(), s.handleOptimize)
	mcpSrv.AddTool(buildAddGuestTool(), s.handleAddGuest)
	mcpSrv.AddTool(buildAddTableTool(), s.handleAddTable)
	mcpSrv.AddTool(buildAddConstraintTool(), s.handleAddConstraint)
	mcpSrv.AddTool(buildListGuestsTool(), s.handleListGuests)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleOptimize is the exported handler for the "optimize_seating" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleOptimize(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleOptimize(ctx, req)
}

// HandleAddGuest is the exported handler for the "add_guest" tool.
func (s *Server) HandleAddGuest(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAddGuest(ctx, req)
}

// HandleAddTable is the exported handler for the "add_table" tool.
func (s *Server) HandleAddTable(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAddTable(ctx, req)
}

// HandleAddConstraint is the exported handler for the "add_constraint" tool.
func (s *Server) HandleAddConstraint(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAddConstraint(ctx, req)
}

// HandleListGuests is the exported handler for the "list_guests" tool.
func (s *Server) HandleListGuests(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListGuests(ctx, req)
}

// HandleStats is the exported handler for the "stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildOptimizeTool() mcpgo.Tool {
	return mcpgo.NewTool("optimize_seating",
		mcpgo.WithDescription("Run the seating optimizer over the stored roster. Returns table assignments, a 0-100 score, and any violations."),
		mcpgo.WithBoolean("persist",
			mcpgo.Description("Write the resulting assignments back to storage (default: false)"),
		),
	)
}

func buildAddGuestTool() mcpgo.Tool {
	return mcpgo.NewTool("add_guest",
		mcpgo.WithDescription("Add a guest to the event roster."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("The guest's display name"),
		),
		mcpgo.WithString("group",
			mcpgo.Description("Affinity group the guest belongs to, e.g. a family name"),
		),
		mcpgo.WithString("industry",
			mcpgo.Description("The guest's industry, used for networking placement"),
		),
		mcpgo.WithString("interests",
			mcpgo.Description("Comma-separated list of interests"),
		),
		mcpgo.WithString("rsvp_status",
			mcpgo.Description("RSVP status: pending, confirmed, or declined (default: pending)"),
		),
	)
}

func buildAddTableTool() mcpgo.Tool {
	return mcpgo.NewTool("add_table",
		mcpgo.WithDescription("Add a table to the event floor plan."),
		mcpgo.WithNumber("capacity",
			mcpgo.Required(),
			mcpgo.Description("Number of seats at the table"),
		),
		mcpgo.WithString("name",
			mcpgo.Description("Table display name"),
		),
	)
}

func buildAddConstraintTool() mcpgo.Tool {
	return mcpgo.NewTool("add_constraint",
		mcpgo.WithDescription("Add a seating constraint binding two or more guests."),
		mcpgo.WithString("guest_ids",
			mcpgo.Required(),
			mcpgo.Description("Comma-separated guest IDs the constraint applies to"),
		),
		mcpgo.WithString("type",
			mcpgo.Required(),
			mcpgo.Description("Constraint type: same_table, different_table, must_sit_together, must_not_sit_together, near_front, or accessibility"),
		),
		mcpgo.WithString("priority",
			mcpgo.Description("Constraint priority: required, preferred, or optional (default: preferred)"),
		),
	)
}

func buildListGuestsTool() mcpgo.Tool {
	return mcpgo.NewTool("list_guests",
		mcpgo.WithDescription("List all guests in the roster with their current table assignments."),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("stats",
		mcpgo.WithDescription("Get event statistics: guest, table, and constraint counts plus RSVP breakdown."),
	)
}

// --- tool handlers ---

// handleOptimize loads the roster, runs the optimizer, and optionally
// persists the resulting assignments.
func (s *Server) handleOptimize(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	guests, err := s.st.ListGuests(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("listing guests failed: %s", err.Error()), nil
	}
	tables, err := s.st.ListTables(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("listing tables failed: %s", err.Error()), nil
	}
	constraints, err := s.st.ListConstraints(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("listing constraints failed: %s", err.Error()), nil
	}

	result := s.opt.Optimize(guests, tables, constraints)
	metrics.Inc(metrics.OptimizeTotal)
	metrics.ViolationsTotal.Add(int64(len(result.Violations)))

	persisted := false
	if req.GetBool("persist", false) {
		if err := s.st.SaveAssignments(ctx, result.Assignments); err != nil {
			return mcpgo.NewToolResultErrorf("saving assignments failed: %s", err.Error()), nil
		}
		persisted = true
	}

	s.logger.Info("mcp: optimize completed", "score", result.Score, "violations", len(result.Violations), "persisted", persisted)

	return toolResultJSON(map[string]any{
		"assignments": result.Assignments,
		"score":       result.Score,
		"violations":  result.Violations,
		"persisted":   persisted,
	})
}

// handleAddGuest validates input and upserts a new guest.
func (s *Server) handleAddGuest(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcpgo.NewToolResultError("name is required and must not be empty"), nil
	}

	rsvp := models.RSVPPending
	if v := req.GetString("rsvp_status", ""); v != "" {
		candidate := models.RSVPStatus(v)
		if !candidate.IsValid() {
			return mcpgo.NewToolResultErrorf("invalid rsvp_status %q: must be one of pending, confirmed, declined", v), nil
		}
		rsvp = candidate
	}

	g := models.Guest{
		ID:         uuid.New().String(),
		Name:       name,
		Group:      req.GetString("group", ""),
		Industry:   req.GetString("industry", ""),
		Interests:  splitCSV(req.GetString("interests", "")),
		RSVPStatus: rsvp,
	}

	if err := s.st.UpsertGuest(ctx, g); err != nil {
		return mcpgo.NewToolResultErrorf("store upsert failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: add_guest stored guest", "id", g.ID, "name", g.Name)

	return toolResultJSON(map[string]any{
		"id":     g.ID,
		"stored": true,
	})
}

// handleAddTable validates input and upserts a new table.
func (s *Server) handleAddTable(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	capacity := req.GetInt("capacity", 0)
	if capacity <= 0 {
		return mcpgo.NewToolResultError("capacity must be greater than 0"), nil
	}

	t := models.Table{
		ID:       uuid.New().String(),
		Name:     req.GetString("name", ""),
		Capacity: capacity,
	}

	if err := s.st.UpsertTable(ctx, t); err != nil {
		return mcpgo.NewToolResultErrorf("store upsert failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: add_table stored table", "id", t.ID, "capacity", t.Capacity)

	return toolResultJSON(map[string]any{
		"id":     t.ID,
		"stored": true,
	})
}

// handleAddConstraint validates input and upserts a new constraint.
func (s *Server) handleAddConstraint(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	guestIDs := splitCSV(req.GetString("guest_ids", ""))
	if len(guestIDs) < 2 {
		return mcpgo.NewToolResultError("guest_ids must name at least two guests"), nil
	}

	ctype := models.ConstraintType(req.GetString("type", ""))
	if !ctype.IsValid() {
		return mcpgo.NewToolResultErrorf("invalid type %q: must be one of same_table, different_table, must_sit_together, must_not_sit_together, near_front, accessibility", string(ctype)), nil
	}

	priority := models.PriorityPreferred
	if v := req.GetString("priority", ""); v != "" {
		candidate := models.ConstraintPriority(v)
		if !candidate.IsValid() {
			return mcpgo.NewToolResultErrorf("invalid priority %q: must be one of required, preferred, optional", v), nil
		}
		priority = candidate
	}

	c := models.Constraint{
		ID:       uuid.New().String(),
		GuestIDs: guestIDs,
		Type:     ctype,
		Priority: priority,
	}

	if err := s.st.UpsertConstraint(ctx, c); err != nil {
		return mcpgo.NewToolResultErrorf("store upsert failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: add_constraint stored constraint", "id", c.ID, "type", c.Type, "priority", c.Priority)

	return toolResultJSON(map[string]any{
		"id":     c.ID,
		"stored": true,
	})
}

// handleListGuests returns the full roster in insertion order.
func (s *Server) handleListGuests(ctx context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	guests, err := s.st.ListGuests(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("listing guests failed: %s", err.Error()), nil
	}

	return toolResultJSON(map[string]any{
		"guests": guests,
		"count":  len(guests),
	})
}

// handleStats returns event statistics.
func (s *Server) handleStats(ctx context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	stats, err := s.st.Stats(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("stats failed: %s", err.Error()), nil
	}
	return toolResultJSON(stats)
}

// splitCSV splits a comma-separated string, trimming whitespace and
// dropping empty entries.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
