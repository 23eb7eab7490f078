// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Progress states, derived per (session, user)
const (
	StateNotJoined = "not_joined"
	StateJoined    = "joined"
	StateAnswering = "answering"
	StateCompleted = "completed"
)

// Default Likert bounds when neither the question nor config says otherwise
const (
	DefaultScaleMin = 1
	DefaultScaleMax = 5
)

// Request types

type JoinSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,max=255"`
	UserID    string `json:"userId" validate:"required,max=255"`
}

type NewSessionRequest struct {
	UserID string `json:"userId" validate:"required,max=255"`
}

// Answer is a pointer so that a missing field is distinguishable from 0.
type SubmitAnswerRequest struct {
	SessionID  string  `json:"sessionId" validate:"required,max=255"`
	UserID     string  `json:"userId" validate:"required,max=255"`
	QuestionID int     `json:"questionId" validate:"required,gt=0"`
	Answer     *int    `json:"answer" validate:"required"`
	Handle     *string `json:"handle" validate:"omitempty,max=100"`
}

// QuestionRequest accepts the category set either as "categoryIds" or as
// "categories"; the latter may hold bare ids or {id, name} objects.
type QuestionRequest struct {
	Text        string         `json:"text" validate:"required,max=500"`
	CategoryIDs CategoryIDList `json:"categoryIds" validate:"omitempty,dive,gt=0"`
	Categories  CategoryIDList `json:"categories" validate:"omitempty,dive,gt=0"`
	ScaleMin    *int           `json:"scaleMin"`
	ScaleMax    *int           `json:"scaleMax"`
}

// AllCategoryIDs merges both spellings of the category set.
func (r QuestionRequest) AllCategoryIDs() []int {
	ids := make([]int, 0, len(r.CategoryIDs)+len(r.Categories))
	ids = append(ids, r.CategoryIDs...)
	ids = append(ids, r.Categories...)
	return ids
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryIDList decodes [1, 2] as well as [{"id": 1, "name": "..."}].
type CategoryIDList []int

func (l *CategoryIDList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("categories must be an array: %w", err)
	}

	ids := make([]int, 0, len(raw))
	for _, item := range raw {
		var id int
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var ref struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return fmt.Errorf("invalid category reference %s", item)
		}
		ids = append(ids, ref.ID)
	}

	*l = ids
	return nil
}

// Domain types

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Question struct {
	ID         int        `json:"id"`
	Text       string     `json:"text"`
	ScaleMin   int        `json:"scaleMin"`
	ScaleMax   int        `json:"scaleMax"`
	Categories []Category `json:"categories"`
}

type Session struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

type AnswerRecord struct {
	ID         int64   `json:"id"`
	SessionID  string  `json:"sessionId"`
	UserID     string  `json:"userId"`
	QuestionID int     `json:"questionId"`
	Answer     int     `json:"answer"`
	UserHandle *string `json:"userHandle,omitempty"`
}

type ResultEntry struct {
	Answer     int     `json:"answer"`
	UserHandle *string `json:"userHandle,omitempty"`
}

// Results maps questionId -> userId -> entry. encoding/json sorts map keys,
// so the wire form is deterministic.
type Results map[int]map[string]ResultEntry

type Progress struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	State     string `json:"state"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
}

// QuestionSummary aggregates one question's answers within a session.
type QuestionSummary struct {
	QuestionID int     `json:"questionId"`
	Text       string  `json:"text"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	P10        float64 `json:"p10"`
	P90        float64 `json:"p90"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	LowShare   float64 `json:"lowShare"` // fraction of answers below the scale midpoint
}

// Error response

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
