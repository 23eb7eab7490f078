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

type CategoryHandler struct {
	catalog *service.CatalogService
	cfg     cliparse.Config
}

func NewCategoryHandler(db *sql.DB, cfg cliparse.Config) *CategoryHandler {
	return &CategoryHandler{
		catalog: service.NewCatalogService(db, cfg.LikertMin, cfg.LikertMax),
		cfg:     cfg,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.cfg, "list categories", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.CategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.cfg, "create category", err, "name", req.Name)
		return
	}

	slog.Info("category created", "category_id", c.ID, "name", c.Name)

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	c, err := h.catalog.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, h.cfg, "update category", err, "category_id", id, "name", req.Name)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/categories/{id}
// Questions tagged with the category lose the tag
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, h.cfg, "delete category", err, "category_id", id)
		return
	}

	slog.Info("category deleted", "category_id", id)

	w.WriteHeader(http.StatusNoContent)
}
