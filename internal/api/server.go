package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neonwatty/seatify-sub000/internal/export"
	"github.com/neonwatty/seatify-sub000/internal/metrics"
	"github.com/neonwatty/seatify-sub000/internal/models"
	"github.com/neonwatty/seatify-sub000/internal/optimizer"
	"github.com/neonwatty/seatify-sub000/internal/store"
)

// Server is an HTTP API server that exposes the event roster and the
// seating optimizer.
type Server struct {
	store     store.Store
	opt       *optimizer.Optimizer
	exporter  *export.Exporter
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(st store.Store, opt *optimizer.Optimizer, logger *slog.Logger, authToken string) *Server {
	return &Server{
		store:     st,
		opt:       opt,
		exporter:  export.NewExporter(logger),
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Roster CRUD and optimizer endpoints — wrapped with auth middleware.
	mux.HandleFunc("POST /v1/optimize", s.auth(s.handleOptimize))
	mux.HandleFunc("POST /v1/guests", s.auth(s.handleUpsertGuest))
	mux.HandleFunc("GET /v1/guests", s.auth(s.handleListGuests))
	mux.HandleFunc("GET /v1/guests/{id}", s.auth(s.handleGetGuest))
	mux.HandleFunc("DELETE /v1/guests/{id}", s.auth(s.handleDeleteGuest))
	mux.HandleFunc("POST /v1/tables", s.auth(s.handleUpsertTable))
	mux.HandleFunc("GET /v1/tables", s.auth(s.handleListTables))
	mux.HandleFunc("DELETE /v1/tables/{id}", s.auth(s.handleDeleteTable))
	mux.HandleFunc("POST /v1/constraints", s.auth(s.handleUpsertConstraint))
	mux.HandleFunc("GET /v1/constraints", s.auth(s.handleListConstraints))
	mux.HandleFunc("DELETE /v1/constraints/{id}", s.auth(s.handleDeleteConstraint))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))
	mux.HandleFunc("POST /v1/export", s.auth(s.handleExport))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// optimizeRequest is the body accepted by POST /v1/optimize. Guests, tables,
// and constraints may be supplied inline for a stateless run; fields left nil
// are loaded from the store instead. Persist writes assignments back.
type optimizeRequest struct {
	Guests      []models.Guest      `json:"guests"`
	Tables      []models.Table      `json:"tables"`
	Constraints []models.Constraint `json:"constraints"`
	Persist     bool                `json:"persist"`
}

// optimizeResponse is returned by POST /v1/optimize.
type optimizeResponse struct {
	Assignments map[string]string  `json:"assignments"`
	Score       float64            `json:"score"`
	Violations  []models.Violation `json:"violations"`
	Persisted   bool               `json:"persisted"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20) // 4 MB limit
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if req.Guests == nil {
		if req.Guests, err = s.store.ListGuests(r.Context()); err != nil {
			s.logger.Error("failed to list guests", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to load guests")
			return
		}
	}
	if req.Tables == nil {
		if req.Tables, err = s.store.ListTables(r.Context()); err != nil {
			s.logger.Error("failed to list tables", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to load tables")
			return
		}
	}
	if req.Constraints == nil {
		if req.Constraints, err = s.store.ListConstraints(r.Context()); err != nil {
			s.logger.Error("failed to list constraints", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to load constraints")
			return
		}
	}

	result := s.opt.Optimize(req.Guests, req.Tables, req.Constraints)
	metrics.Inc(metrics.OptimizeTotal)
	metrics.ViolationsTotal.Add(int64(len(result.Violations)))

	persisted := false
	if req.Persist {
		if err := s.store.SaveAssignments(r.Context(), result.Assignments); err != nil {
			s.logger.Error("failed to save assignments", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to save assignments")
			return
		}
		persisted = true
	}

	s.writeJSON(w, http.StatusOK, optimizeResponse{
		Assignments: result.Assignments,
		Score:       result.Score,
		Violations:  result.Violations,
		Persisted:   persisted,
	})
}

func (s *Server) handleUpsertGuest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var g models.Guest
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if g.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.RSVPStatus == "" {
		g.RSVPStatus = models.RSVPPending
	}
	if !g.RSVPStatus.IsValid() {
		s.writeError(w, http.StatusBadRequest, "invalid rsvp status")
		return
	}
	for _, rel := range g.Relationships {
		if !rel.Type.IsValid() {
			s.writeError(w, http.StatusBadRequest, "invalid relationship type")
			return
		}
	}

	if err := s.store.UpsertGuest(r.Context(), g); err != nil {
		s.logger.Error("failed to store guest", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store guest")
		return
	}

	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := s.store.ListGuests(r.Context())
	if err != nil {
		s.logger.Error("failed to list guests", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list guests")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"guests": guests})
}

func (s *Server) handleGetGuest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	g, err := s.store.GetGuest(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "guest not found")
			return
		}
		s.logger.Error("failed to get guest", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get guest")
		return
	}

	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGuest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteGuest(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "guest not found")
			return
		}
		s.logger.Error("failed to delete guest", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete guest")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleUpsertTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var t models.Table
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if t.Capacity <= 0 {
		s.writeError(w, http.StatusBadRequest, "capacity must be greater than 0")
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	if err := s.store.UpsertTable(r.Context(), t); err != nil {
		s.logger.Error("failed to store table", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store table")
		return
	}

	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.ListTables(r.Context())
	if err != nil {
		s.logger.Error("failed to list tables", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list tables")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteTable(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "table not found")
			return
		}
		s.logger.Error("failed to delete table", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete table")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleUpsertConstraint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var c models.Constraint
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(c.GuestIDs) < 2 {
		s.writeError(w, http.StatusBadRequest, "at least two guest ids are required")
		return
	}
	if c.Priority == "" {
		c.Priority = models.PriorityPreferred
	}
	if !c.Type.IsValid() {
		s.writeError(w, http.StatusBadRequest, "invalid constraint type")
		return
	}
	if !c.Priority.IsValid() {
		s.writeError(w, http.StatusBadRequest, "invalid constraint priority")
		return
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if err := s.store.UpsertConstraint(r.Context(), c); err != nil {
		s.logger.Error("failed to store constraint", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store constraint")
		return
	}

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListConstraints(w http.ResponseWriter, r *http.Request) {
	constraints, err := s.store.ListConstraints(r.Context())
	if err != nil {
		s.logger.Error("failed to list constraints", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list constraints")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"constraints": constraints})
}

func (s *Server) handleDeleteConstraint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteConstraint(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "constraint not found")
			return
		}
		s.logger.Error("failed to delete constraint", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete constraint")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleExport runs the optimizer over the stored roster and streams the
// resulting chart as an xlsx workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	guests, err := s.store.ListGuests(r.Context())
	if err != nil {
		s.logger.Error("failed to list guests", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load guests")
		return
	}
	tables, err := s.store.ListTables(r.Context())
	if err != nil {
		s.logger.Error("failed to list tables", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load tables")
		return
	}
	constraints, err := s.store.ListConstraints(r.Context())
	if err != nil {
		s.logger.Error("failed to list constraints", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load constraints")
		return
	}

	result := s.opt.Optimize(guests, tables, constraints)

	buf, filename, err := s.exporter.Workbook(guests, tables, result)
	if err != nil {
		s.logger.Error("failed to build workbook", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	metrics.Inc(metrics.ExportTotal)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write workbook response", "error", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
