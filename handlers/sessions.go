// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/know-you/cliparse"
	"github.com/danielhkuo/know-you/middleware"
	"github.com/danielhkuo/know-you/models"
	"github.com/danielhkuo/know-you/service"
)

type SessionHandler struct {
	sessions *service.SessionService
	cfg      cliparse.Config
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{sessions: service.NewSessionService(db), cfg: cfg}
}

// JoinSession handles POST /api/sessions
// 201 when this call created the session, 200 when it joined an existing one
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req models.JoinSessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, created, err := h.sessions.JoinOrCreate(r.Context(), req.SessionID, req.UserID)
	if err != nil {
		writeError(w, r, h.cfg, "join session", err, "session_id", req.SessionID, "user_id", req.UserID)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("session created", "session_id", session.ID, "user_id", req.UserID)
	}

	middleware.JSONResponse(w, status, session)
}

// NewSession handles POST /api/sessions/new
func (h *SessionHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	var req models.NewSessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, err := h.sessions.Create(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, h.cfg, "create session", err, "user_id", req.UserID)
		return
	}

	slog.Info("session created", "session_id", session.ID, "user_id", req.UserID)

	middleware.JSONResponse(w, http.StatusCreated, session)
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, h.cfg, "get session", err, "session_id", sessionID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, session)
}

// GetProgress handles GET /api/sessions/{id}/progress?userId=
func (h *SessionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	userID := r.URL.Query().Get("userId")

	progress, err := h.sessions.Progress(r.Context(), sessionID, userID)
	if err != nil {
		writeError(w, r, h.cfg, "get progress", err, "session_id", sessionID, "user_id", userID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, progress)
}
