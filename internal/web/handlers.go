package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// runRequest triggers one resolution-and-generation cycle. Input carries
// the same inline JSON a CLI caller would pass.
type runRequest struct {
	Workflow string          `json:"workflow"`
	Input    json.RawMessage `json:"input"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable,
			errorResponse{Error: "runner not configured"})
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{Error: "invalid request body", Code: core.CodeInvalidJSON})
		return
	}
	if req.Workflow == "" {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{Error: "workflow path required", Code: core.CodeUsageError})
		return
	}

	input := "{}"
	if len(req.Input) > 0 {
		input = string(req.Input)
	}

	record, err := s.runner.Run(r.Context(), req.Workflow, input)
	if record == nil {
		// Input never parsed; no execution identity was minted.
		s.writeError(w, err)
		return
	}
	// The record carries the outcome either way; failed executions are
	// still 200-level resources that were durably recorded.
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var code string

	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		code = domErr.Code
		switch domErr.Category {
		case core.ErrCatNotFound:
			status = http.StatusNotFound
		case core.ErrCatParse, core.ErrCatSchema, core.ErrCatUsage:
			status = http.StatusBadRequest
		case core.ErrCatBackend:
			status = http.StatusBadGateway
		}
	}

	s.logger.Error("request failed", "error", err)
	writeJSON(w, status, errorResponse{Error: core.ErrorMessage(err), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
