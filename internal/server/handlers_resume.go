package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

const maxRequestBytes = 1 << 20

// SummaryResponse is returned by a successful POST /resume/summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// handleGetResume returns the current résumé
func (s *Server) handleGetResume(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

// handleUpdateResume applies a partial update
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	if err := schemas.Validate(schemas.Resume, body); err != nil {
		var docErr *schemas.DocumentError
		if errors.As(err, &docErr) {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+docErr.Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var update types.ResumeUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := update.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, s.store.Update(update))
}

// handleGenerateSummary drafts a summary from the current résumé and stores it.
// On failure the résumé is left untouched.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Summary generation is not available")
		return
	}

	release, err := s.store.BeginGeneration()
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), errorBodyFor(err))
		return
	}
	defer release()

	in := types.SummaryInputFrom(s.store.Snapshot())
	text, err := s.generator.Generate(r.Context(), in)
	if err != nil {
		body := errorBodyFor(err)
		s.logger.Warn("summary generation failed",
			"kind", body.Error,
			"message", body.Message,
			"upstream_status", body.UpstreamStatus,
		)
		s.jsonResponse(w, HTTPStatus(err), body)
		return
	}

	s.store.SetSummary(text)
	s.jsonResponse(w, http.StatusOK, SummaryResponse{Summary: text})
}
