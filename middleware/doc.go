// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

# Logging

WithLogging assigns each request an id (X-Request-ID, generated with
google/uuid unless the caller sent one) and logs method, path, status and
duration once the handler returns:

	mux.HandleFunc("POST /api/answers", middleware.WithLogging(handler.SubmitAnswer))

Handlers read the id with RequestID(r.Context()).

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "sessionId is required")
	middleware.ErrorDetails(w, http.StatusBadRequest, msg, details)
	err := middleware.ParseJSONBody(r, &req)

Error responses use models.ErrorResponse:

	{"error": "Bad Request", "message": "sessionId is required"}

# Wrapping Middleware

  - CORS(origins): go-chi/cors with the configured origin list
  - SecureHeaders: nosniff, frame denial, referrer and permissions policy
  - RealIP(trusted): resolves the client address for the rest of the chain
  - RateLimit(limiter): per-client token bucket, 429 when exhausted

# Client IP

GetClientIP returns the connection's peer address unless the peer is one of
the trusted proxies passed to RealIP. Behind a trusted proxy, the right-most
X-Forwarded-For hop that is not a trusted proxy is used, then X-Real-IP.
*/
package middleware
