// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/know-you/apperr"
	"github.com/danielhkuo/know-you/auth"
	"github.com/danielhkuo/know-you/cliparse"
	"github.com/danielhkuo/know-you/middleware"
	"github.com/danielhkuo/know-you/validation"
)

// AdminKeyHeader authorizes catalog writes when an admin key is configured
const AdminKeyHeader = "X-Admin-Key"

var validate = validation.New()

// writeError maps a service error onto a response and logs it with the
// operation name and identifying keys.
func writeError(w http.ResponseWriter, r *http.Request, cfg cliparse.Config, op string, err error, keys ...any) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	attrs := append([]any{"op", op, "request_id", middleware.RequestID(r.Context()), "error", err}, keys...)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		middleware.ErrorResponse(w, status, "Internal server error")
		return
	}

	message := appErr.Message
	if kind == apperr.KindStore && !cfg.IsProduction() {
		message = appErr.Error()
	}
	middleware.ErrorDetails(w, status, message, appErr.Details)
}

// decodeRequest parses and validates a JSON body, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := middleware.ParseJSONBody(r, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}

	if err := validate.Validate(v); err != nil {
		var appErr *apperr.Error
		errors.As(err, &appErr)
		middleware.ErrorDetails(w, http.StatusBadRequest, appErr.Message, appErr.Details)
		return false
	}
	return true
}

// requireAdmin checks the X-Admin-Key header, writing a 401 on mismatch.
func requireAdmin(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) bool {
	if err := auth.ValidateAdminKey(r.Header.Get(AdminKeyHeader), cfg.AdminKey); err != nil {
		slog.Warn("admin key rejected",
			"path", r.URL.Path,
			"remote", middleware.GetClientIP(r),
			"request_id", middleware.RequestID(r.Context()),
		)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// pathID reads a positive integer path value, writing a 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
