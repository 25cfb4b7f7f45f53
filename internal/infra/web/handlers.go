package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paper-assistant/internal/domain"
)

// userHeader carries the caller identity. Authentication sits in front
// of this service; here the header is trusted as-is.
const userHeader = "X-User-ID"

type typoSubmitRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

type extractionSubmitRequest struct {
	DocumentID string `json:"document_id"`
	Priority   int    `json:"priority,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTypoSubmit(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		http.Error(w, "missing "+userHeader+" header", http.StatusBadRequest)
		return
	}
	var req typoSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	out, err := s.typoUC.Submit(r.Context(), userID, req.Text, req.Provider)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out.Cached != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"cached": true,
			"result": out.Cached,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, out.Job.PollView())
}

func (s *Server) handleTypoStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	view, err := s.typoUC.Status(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTypoCancel(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if err := s.typoUC.Cancel(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleTypoResult(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	res, err := s.typoUC.Result(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExtractionSubmit(w http.ResponseWriter, r *http.Request) {
	var req extractionSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	job, err := s.extractionUC.Enqueue(r.Context(), req.DocumentID, req.Priority)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job.PollView())
}

func (s *Server) handleExtractionStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.extractionUC.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePageCount(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	n, err := s.extractionUC.PageCount(r.Context(), documentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": documentID, "page_count": n})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": s.providers.Providers()})
}

// writeError maps domain errors onto HTTP statuses: validation 400,
// missing 404, terminal conflicts 409, cap 429, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTooManyPendingJobs):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrJobAlreadyTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDocumentNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case domain.Classify(err) == domain.KindValidation:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
