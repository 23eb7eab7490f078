// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the know-you API.

# Route Registration

NewRouter returns the http.ServeMux wrapped in the shared middleware:

	handler := router.NewRouter(db, cfg, limiter)

A nil limiter disables rate limiting.

# Endpoints

Health:

	GET /health - 200 "OK" when the store answers a ping, 503 otherwise

Sessions:

	POST /api/sessions                 - Join or create a session
	POST /api/sessions/new             - Create a session with a generated id
	GET  /api/sessions/{id}            - Membership in join order
	GET  /api/sessions/{id}/progress   - Per-user questionnaire state

Answers and results:

	POST /api/answers                     - Submit or overwrite an answer
	GET  /api/results/{sessionId}         - Answers by question, then user
	GET  /api/results/{sessionId}/summary - Per-question statistics

Catalog (writes require X-Admin-Key when ADMIN_KEY is set):

	GET/POST       /api/questions
	PUT/DELETE     /api/questions/{id}
	GET/POST       /api/categories
	PUT/DELETE     /api/categories/{id}

# Middleware

Every API route is wrapped in middleware.WithLogging. The whole mux sits
behind, from outermost in:

	SecureHeaders -> CORS -> RateLimit -> mux
*/
package router
