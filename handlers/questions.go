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

type QuestionHandler struct {
	catalog *service.CatalogService
	cfg     cliparse.Config
}

func NewQuestionHandler(db *sql.DB, cfg cliparse.Config) *QuestionHandler {
	return &QuestionHandler{
		catalog: service.NewCatalogService(db, cfg.LikertMin, cfg.LikertMax),
		cfg:     cfg,
	}
}

// ListQuestions handles GET /api/questions
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.ListQuestions(r.Context())
	if err != nil {
		writeError(w, r, h.cfg, "list questions", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, questions)
}

// CreateQuestion handles POST /api/questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.QuestionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	q, err := h.catalog.CreateQuestion(r.Context(), questionInput(req))
	if err != nil {
		writeError(w, r, h.cfg, "create question", err)
		return
	}

	slog.Info("question created", "question_id", q.ID, "categories", len(q.Categories))

	middleware.JSONResponse(w, http.StatusCreated, q)
}

// UpdateQuestion handles PUT /api/questions/{id}
// The category set in the body replaces the stored one
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.QuestionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	q, err := h.catalog.UpdateQuestion(r.Context(), id, questionInput(req))
	if err != nil {
		writeError(w, r, h.cfg, "update question", err, "question_id", id)
		return
	}

	slog.Info("question updated", "question_id", q.ID)

	middleware.JSONResponse(w, http.StatusOK, q)
}

// DeleteQuestion handles DELETE /api/questions/{id}
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, r, h.cfg, "delete question", err, "question_id", id)
		return
	}

	slog.Info("question deleted", "question_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func questionInput(req models.QuestionRequest) service.QuestionInput {
	return service.QuestionInput{
		Text:        req.Text,
		CategoryIDs: req.AllCategoryIDs(),
		ScaleMin:    req.ScaleMin,
		ScaleMax:    req.ScaleMax,
	}
}
