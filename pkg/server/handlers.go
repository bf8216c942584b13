package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/cogmap/pkg/memory"
	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
)

// defaultSteps matches the original demo's default slider position.
const defaultSteps = 5

// defaultTopK matches the original memory search depth.
const defaultTopK = 3

type reasonRequest struct {
	Query string `json:"query"`
	Steps int    `json:"steps"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession()
	if err != nil {
		logging.From(r.Context()).Error("failed to create session", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	id := model.NewSessionID()
	s.addSession(id, sess)
	logging.From(r.Context()).Info("session created", "session_id", id)

	s.respondJSON(w, http.StatusCreated, map[string]model.SessionID{"id": id})
}

func (s *Server) handleReason(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}

	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Steps == 0 {
		req.Steps = defaultSteps
	}
	if req.Steps < 1 {
		s.respondError(w, http.StatusBadRequest, "steps must be at least 1")
		return
	}

	result, err := sess.Reason(r.Context(), req.Query, req.Steps)
	if err != nil {
		logging.From(r.Context()).Error("reasoning failed", "error", err, "query", req.Query)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.K == 0 {
		req.K = defaultTopK
	}

	results, err := sess.Search(r.Context(), req.Query, req.K)
	if err != nil {
		if errors.Is(err, memory.ErrInvalidArgument) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.From(r.Context()).Error("search failed", "error", err, "query", req.Query)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]*model.SearchResult{"results": results})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, sess.Graph())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, sess.Stats())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFrom(w, r)
	if !ok {
		return
	}

	sess.Clear()
	logging.From(r.Context()).Info("session cleared", "session_id", chi.URLParam(r, "id"))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionFrom resolves the {id} URL parameter; on failure it has
// already written the error response.
func (s *Server) sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := model.SessionID(chi.URLParam(r, "id"))
	sess, ok := s.getSession(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
