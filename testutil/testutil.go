// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/know-you/cliparse"
	"github.com/danielhkuo/know-you/db"
)

// SetupTestDB opens a fresh SQLite database in a temp dir with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DialectSQLite, filepath.Join(t.TempDir(), "know-you-test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   "sqlite",
		DatabaseURL:    "know-you-test.db",
		Environment:    cliparse.EnvDevelopment,
		LogLevel:       "error",
		LikertMin:      1,
		LikertMax:      5,
		SessionTTL:     30 * 24 * time.Hour,
		SweepInterval:  time.Hour,
		AllowedOrigins: []string{"*"},
	}
}

// CreateTestCategory inserts a category and returns its ID
func CreateTestCategory(t *testing.T, conn *sql.DB, name string) int {
	t.Helper()

	var id int
	err := conn.QueryRow(`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return id
}

// CreateTestQuestion inserts a 1..5 question tagged with categoryIDs and returns its ID
func CreateTestQuestion(t *testing.T, conn *sql.DB, text string, categoryIDs ...int) int {
	t.Helper()

	var id int
	err := conn.QueryRow(`
		INSERT INTO questions (text, scale_min, scale_max) VALUES ($1, 1, 5) RETURNING id
	`, text).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	for _, categoryID := range categoryIDs {
		_, err := conn.Exec(`
			INSERT INTO question_categories (question_id, category_id) VALUES ($1, $2)
		`, id, categoryID)
		if err != nil {
			t.Fatalf("Failed to tag test question: %v", err)
		}
	}
	return id
}

// CreateTestSession inserts a session whose members joined in the given order
func CreateTestSession(t *testing.T, conn *sql.DB, sessionID string, users ...string) {
	t.Helper()

	now := time.Now().Unix()
	_, err := conn.Exec(`
		INSERT INTO sessions (id, created_unix, last_active_unix) VALUES ($1, $2, $3)
	`, sessionID, now, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	for _, u := range users {
		_, err := conn.Exec(`
			INSERT INTO session_members (session_id, user_id, joined_unix) VALUES ($1, $2, $3)
		`, sessionID, u, now)
		if err != nil {
			t.Fatalf("Failed to add test session member: %v", err)
		}
	}
}

// SubmitTestAnswer stores an answer directly; handle may be empty
func SubmitTestAnswer(t *testing.T, conn *sql.DB, sessionID, userID string, questionID, value int, handle string) {
	t.Helper()

	var h sql.NullString
	if handle != "" {
		h = sql.NullString{String: handle, Valid: true}
	}
	_, err := conn.Exec(`
		INSERT INTO answers (session_id, user_id, question_id, answer, user_handle, updated_unix)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sessionID, userID, questionID, value, h, time.Now().Unix())
	if err != nil {
		t.Fatalf("Failed to create test answer: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
