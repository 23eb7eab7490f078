// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the know-you API server.

know-you is a "get to know you" questionnaire: participants create or join
a shared session, answer Likert-scale questions from a catalog, and view
everyone's answers grouped by question.

# Starting the Server

With no configuration the server uses a local SQLite file:

	go run .

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run .

See package cliparse for every flag and environment variable.

# Startup

  1. Parse config and install the slog handler (JSON in production)
  2. Open the store; failure to connect is fatal
  3. Create the schema and, when the catalog is empty, seed the sample questions
  4. Start the retention sweeper and the rate limiter's idle sweep
  5. Serve until SIGINT or SIGTERM, then shut down gracefully

# Architecture

  - handlers: HTTP request handlers (sessions, answers, results, catalog)
  - service: session, answer and catalog operations over database/sql
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, CORS, security headers, rate limiting, JSON helpers
  - models: Request/response types
  - apperr, validation: error kinds and request validation
  - auth: session ids and the admin key check
  - db: connection, schema, seed catalog
  - retention, ratelimit: background sweeps
  - cliparse, logger: configuration and logging

The knowyou-admin command under cmd/ runs seed, purge and results against
the same store.
*/
package main
