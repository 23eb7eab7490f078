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

type AnswerHandler struct {
	sessions *service.SessionService
	cfg      cliparse.Config
}

func NewAnswerHandler(db *sql.DB, cfg cliparse.Config) *AnswerHandler {
	return &AnswerHandler{sessions: service.NewSessionService(db), cfg: cfg}
}

// SubmitAnswer handles POST /api/answers
// Resubmitting for the same (session, user, question) overwrites the value
func (h *AnswerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, created, err := h.sessions.SubmitAnswer(r.Context(), service.SubmitAnswerInput{
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		QuestionID: req.QuestionID,
		Value:      *req.Answer,
		Handle:     req.Handle,
	})
	if err != nil {
		writeError(w, r, h.cfg, "submit answer", err,
			"session_id", req.SessionID, "user_id", req.UserID, "question_id", req.QuestionID)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	slog.Debug("answer recorded",
		"session_id", rec.SessionID,
		"user_id", rec.UserID,
		"question_id", rec.QuestionID,
		"created", created,
	)

	middleware.JSONResponse(w, status, rec)
}
