// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/know-you/cliparse"
	"github.com/danielhkuo/know-you/handlers"
	"github.com/danielhkuo/know-you/middleware"
	"github.com/danielhkuo/know-you/ratelimit"
)

// NewRouter wires every endpoint and wraps the mux in the shared middleware.
// A nil limiter disables rate limiting.
func NewRouter(db *sql.DB, cfg cliparse.Config, limiter *ratelimit.KeyedLimiter) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	answerHandler := handlers.NewAnswerHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	questionHandler := handlers.NewQuestionHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	// Health check reports whether the store answers
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("UNAVAILABLE"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /api/sessions", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("POST /api/sessions/new", middleware.WithLogging(sessionHandler.NewSession))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("GET /api/sessions/{id}/progress", middleware.WithLogging(sessionHandler.GetProgress))

	// Answers and results
	mux.HandleFunc("POST /api/answers", middleware.WithLogging(answerHandler.SubmitAnswer))
	mux.HandleFunc("GET /api/results/{sessionId}", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /api/results/{sessionId}/summary", middleware.WithLogging(resultsHandler.GetSummary))

	// Catalog (writes require X-Admin-Key when ADMIN_KEY is set)
	mux.HandleFunc("GET /api/questions", middleware.WithLogging(questionHandler.ListQuestions))
	mux.HandleFunc("POST /api/questions", middleware.WithLogging(questionHandler.CreateQuestion))
	mux.HandleFunc("PUT /api/questions/{id}", middleware.WithLogging(questionHandler.UpdateQuestion))
	mux.HandleFunc("DELETE /api/questions/{id}", middleware.WithLogging(questionHandler.DeleteQuestion))

	mux.HandleFunc("GET /api/categories", middleware.WithLogging(categoryHandler.ListCategories))
	mux.HandleFunc("POST /api/categories", middleware.WithLogging(categoryHandler.CreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", middleware.WithLogging(categoryHandler.UpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", middleware.WithLogging(categoryHandler.DeleteCategory))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("know-you API v1"))
	})

	var h http.Handler = mux
	h = middleware.RateLimit(limiter)(h)
	h = middleware.RealIP(cfg.TrustedProxies)(h)
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	h = middleware.SecureHeaders(h)
	return h
}
