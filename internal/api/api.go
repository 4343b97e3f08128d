// Package api implements the reference HTTP surface from spec.md §6:
// POST /simulations, GET /simulations/{id}, GET /simulations/{id}/events
// (SSE), GET /health. Grounded in the corpus's internal/mcp.Server
// (session table, JSON request/response plumbing) and cmd/server's CORS
// middleware, adapted from the MCP JSON-RPC envelope to a plain REST
// surface since the engine has no tool-calling protocol of its own.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/obslog"
	"github.com/fiscalsim/engine/internal/progress"
	"github.com/fiscalsim/engine/internal/runner"
	"github.com/fiscalsim/engine/internal/simerr"
	"github.com/fiscalsim/engine/internal/store"
)

// Server wires a PatternStore, ResultSink, and live Broadcaster set into
// the HTTP handlers below. The zero value is not usable; use NewServer.
type Server struct {
	patterns store.PatternStore
	results  store.ResultSink

	mu           sync.Mutex
	broadcasters map[string]*progress.Broadcaster
}

// NewServer builds a Server backed by patterns and results.
func NewServer(patterns store.PatternStore, results store.ResultSink) *Server {
	return &Server{
		patterns:     patterns,
		results:      results,
		broadcasters: make(map[string]*progress.Broadcaster),
	}
}

type simulationRequest struct {
	Company  domain.Company      `json:"company"`
	Fiscal   domain.FiscalConfig `json:"fiscal"`
	Patterns []domain.Pattern    `json:"patterns"`
}

type simulationAccepted struct {
	SimulationID string `json:"simulationId"`
}

// HandleCreate handles POST /simulations: validates the request body,
// starts the run in a background goroutine, and immediately returns the
// simulation ID the caller should poll or subscribe to.
func (s *Server) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &simerr.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	in := runner.Input{Company: req.Company, Fiscal: req.Fiscal, Patterns: req.Patterns}
	if err := runner.Validate(in); err != nil {
		writeError(w, err)
		return
	}

	simulationID := uuid.New().String()
	b := progress.New(simulationID)
	s.mu.Lock()
	s.broadcasters[simulationID] = b
	s.mu.Unlock()

	go s.run(simulationID, b, in)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(simulationAccepted{SimulationID: simulationID})
}

func (s *Server) run(simulationID string, b *progress.Broadcaster, in runner.Input) {
	run := runner.New(b)
	results, err := run.Run(context.Background(), simulationID, in)
	status := domain.StatusCompleted
	if err != nil {
		status = domain.StatusFailed
		obslog.Warnf("simulation %s failed: %v", simulationID, err)
	}
	s.results.Put(store.RunStatus{ID: simulationID, Status: status, Results: results, Err: err})

	s.mu.Lock()
	delete(s.broadcasters, simulationID)
	s.mu.Unlock()
}

// HandleGet handles GET /simulations/{id}: the final result once the run
// has completed, or the latest progress snapshot while it is still in
// flight, so clients that cannot hold an SSE connection can poll instead.
func (s *Server) HandleGet(w http.ResponseWriter, r *http.Request, simulationID string) {
	rs, err := s.results.Get(simulationID)
	if err != nil {
		s.mu.Lock()
		b, running := s.broadcasters[simulationID]
		s.mu.Unlock()
		if running {
			if snap, ok := b.Latest(); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(snap)
				return
			}
		}
		writeError(w, err)
		return
	}
	if rs.Err != nil {
		writeError(w, rs.Err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rs.Results)
}

// HandleEvents handles GET /simulations/{id}/events: the SSE progress
// stream for a still-running simulation.
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request, simulationID string) {
	s.mu.Lock()
	b, ok := s.broadcasters[simulationID]
	s.mu.Unlock()
	if !ok {
		writeError(w, &simerr.NotFound{Kind: "simulation", ID: simulationID})
		return
	}
	if err := progress.ServeHTTP(w, r, b); err != nil {
		obslog.Debugf("events stream for %s ended: %v", simulationID, err)
	}
}

// HandleSavePattern handles PUT /companies/{companyId}/patterns: upserts one
// Pattern into the configured PatternStore.
func (s *Server) HandleSavePattern(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p domain.Pattern
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, &simerr.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if p.ID == "" {
		writeError(w, &simerr.ValidationError{Field: "pattern.id", Reason: "required"})
		return
	}
	if err := s.patterns.Save(companyID, p); err != nil {
		writeError(w, &simerr.Internal{Cause: err})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPatterns handles GET /companies/{companyId}/patterns.
func (s *Server) HandleListPatterns(w http.ResponseWriter, r *http.Request, companyID string) {
	patterns, err := s.patterns.List(companyID)
	if err != nil {
		writeError(w, &simerr.Internal{Cause: err})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(patterns)
}

// HandleHealth handles GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.mu.Lock()
	running := len(s.broadcasters)
	s.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"running": running,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case *simerr.ValidationError:
		status = http.StatusBadRequest
	case *simerr.NotFound:
		status = http.StatusNotFound
	case *simerr.InvariantViolation:
		status = http.StatusInternalServerError
	case *simerr.Cancelled:
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
