package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// maxBodyBytes caps the size of a /chat request body.
const maxBodyBytes = 64 << 10

// statusResponse is returned by the liveness endpoints.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// dataResponse wraps a payload with a status marker.
type dataResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query          string `json:"query"`
	MaxContextDocs *int   `json:"max_context_docs,omitempty"`
}

// validate checks bounds and returns the answer options to use.
func (r ChatRequest) validate() (driving.AnswerOptions, error) {
	var opts driving.AnswerOptions
	if err := domain.ValidateQuery(r.Query); err != nil {
		return opts, err
	}
	if r.MaxContextDocs != nil {
		n := *r.MaxContextDocs
		if n < domain.MinContextDocs || n > domain.MaxContextDocs {
			return opts, fmt.Errorf("max_context_docs must be between %d and %d",
				domain.MinContextDocs, domain.MaxContextDocs)
		}
		opts.MaxContextDocs = n
	}
	return opts, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "ok",
		Message: "NISR AI API - Ubuzima Hub is running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if _, err := s.ports.Index.Stats(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Health check failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "healthy",
		Message: "API is operational and chatbot initialized",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "Request body is required")
		default:
			writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		}
		return
	}

	opts, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	result := s.ports.Chat.Answer(ctx, req.Query, opts)
	logger.Debug("chat id=%s outcome=%s sources=%d", RequestID(r.Context()), result.Outcome, len(result.Sources))

	// Retrieval failures are 503; every other outcome is a 200 answer.
	status := http.StatusOK
	if result.Outcome == domain.OutcomeRetrievalFailed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stats error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Status: "ok", Data: stats})
}

func (s *Server) handleDatasetSummary(w http.ResponseWriter, r *http.Request) {
	if s.ports.Dataset == nil {
		writeError(w, http.StatusNotFound, "Dataset summary not available")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	summary, err := s.ports.Dataset.Summary(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Summary error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Status: "ok", Data: summary})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
