// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, checked with validate tags:

  - JoinSessionRequest: sessionId, userId
  - NewSessionRequest: userId
  - SubmitAnswerRequest: sessionId, userId, questionId, answer, handle
  - QuestionRequest: text, categoryIds or categories, scaleMin, scaleMax
  - CategoryRequest: name

QuestionRequest.categories accepts bare ids or {id, name} objects, so a
client can send back the categories it received from GET /api/questions.

# Domain Types

  - Question: id, text, Likert scale bounds, categories
  - Category: id, name
  - Session: id and members in join order
  - AnswerRecord: one stored answer
  - Results: questionId -> userId -> {answer, userHandle}
  - Progress: per-user state within a session
  - QuestionSummary: count, mean, median, P10, P90, min, max, low share
  - ErrorResponse: error, message, details

# Constants

Progress states:

	StateNotJoined = "not_joined"
	StateJoined    = "joined"
	StateAnswering = "answering"
	StateCompleted = "completed"

Default Likert scale:

	DefaultScaleMin = 1
	DefaultScaleMax = 5
*/
package models
