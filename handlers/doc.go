// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the know-you API.

# Handler Types

Each handler is a struct holding a service and the config:

  - SessionHandler: join-or-create, new session, membership, progress
  - AnswerHandler: answer submission (upsert per session, user and question)
  - ResultsHandler: grouped results and per-question summary
  - QuestionHandler: question CRUD with category associations
  - CategoryHandler: category CRUD

Handlers are created via constructor functions that accept *sql.DB and Config:

	sessionHandler := handlers.NewSessionHandler(db, cfg)

# Status Codes

Request bodies are decoded with middleware.ParseJSONBody and checked by the
validation package before any store access. Service errors carry an apperr
kind that picks the status:

	validation   400   (with per-field "details")
	unauthorized 401   (catalog writes with a wrong X-Admin-Key)
	not found    404
	conflict     409   (duplicate category name)
	store        500   (cause hidden when APP_ENV=production)

Joining a session and submitting an answer return 201 when a row was created
and 200 when an existing one was reused or overwritten. Deletes return 204.

# Results Shape

	GET /api/results/{sessionId}

	{"1": {"alice": {"answer": 4, "userHandle": "Ally"}, "bob": {"answer": 2}}}

An existing session without answers yields {}; an unknown session is 404.
*/
package handlers
