// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/know-you/cliparse"
	"github.com/danielhkuo/know-you/middleware"
	"github.com/danielhkuo/know-you/service"
)

type ResultsHandler struct {
	sessions *service.SessionService
	cfg      cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{sessions: service.NewSessionService(db), cfg: cfg}
}

// GetResults handles GET /api/results/{sessionId}
// Returns {questionId: {userId: {answer, userHandle}}}
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	results, err := h.sessions.Results(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, h.cfg, "get results", err, "session_id", sessionID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetSummary handles GET /api/results/{sessionId}/summary
func (h *ResultsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	summary, err := h.sessions.Summary(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, h.cfg, "get summary", err, "session_id", sessionID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}
