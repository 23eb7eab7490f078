// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/know-you/models"
	"github.com/danielhkuo/know-you/ratelimit"
	"github.com/danielhkuo/know-you/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on every response")
	}
}

func TestHealthEndpoint_StoreDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)
	db.Close()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if expected := "know-you API v1"; w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/no-such-page", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)

	// 400 and 404 are valid handler answers; 405 means the route is missing
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/api/sessions"},
		{"POST", "/api/sessions/new"},
		{"GET", "/api/sessions/abc"},
		{"GET", "/api/sessions/abc/progress"},
		{"POST", "/api/answers"},
		{"GET", "/api/results/abc"},
		{"GET", "/api/results/abc/summary"},
		{"GET", "/api/questions"},
		{"POST", "/api/questions"},
		{"PUT", "/api/questions/1"},
		{"DELETE", "/api/questions/1"},
		{"GET", "/api/categories"},
		{"POST", "/api/categories"},
		{"PUT", "/api/categories/1"},
		{"DELETE", "/api/categories/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/api/sessions/abc"},
		{"PUT", "/api/answers"},
		{"PATCH", "/api/questions/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestRateLimitedRouter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), ratelimit.New(1, 1, time.Minute))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/questions", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 429], got %v", codes)
	}
}

func TestRateLimitedRouter_SpoofedForwardedFor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), ratelimit.New(1, 1, time.Minute))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("GET", "/api/questions", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}

	if allowed != 1 {
		t.Errorf("Expected 1 of 20 requests allowed, got %d", allowed)
	}
}

func TestRateLimitedRouter_TrustedProxy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	mux := NewRouter(db, cfg, ratelimit.New(1, 1, time.Minute))

	send := func(client string) int {
		req := httptest.NewRequest("GET", "/api/questions", nil)
		req.RemoteAddr = "10.0.0.2:4000"
		req.Header.Set("X-Forwarded-For", "1.1.1.1, "+client)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w.Code
	}

	// Clients behind the proxy get separate buckets, keyed on the hop the
	// proxy appended rather than the spoofable left-most entry
	if code := send("203.0.113.1"); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Fatalf("Expected 200 for a second client, got %d", code)
	}
	if code := send("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for a repeat client, got %d", code)
	}
}

// TestQuestionnaireFlow walks the catalog, session, answer and results
// endpoints the way the client does.
func TestQuestionnaireFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		t.Helper()
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, nil))
		return w
	}

	// Step 1: catalog
	w := do("POST", "/api/categories", models.CategoryRequest{Name: "Lifestyle"})
	testutil.AssertStatus(t, w, http.StatusCreated)
	var cat models.Category
	testutil.AssertJSON(t, w, &cat)

	w = do("POST", "/api/questions", models.QuestionRequest{
		Text:        "Do you enjoy outdoor activities?",
		CategoryIDs: models.CategoryIDList{cat.ID},
	})
	testutil.AssertStatus(t, w, http.StatusCreated)
	var q models.Question
	testutil.AssertJSON(t, w, &q)

	w = do("GET", "/api/questions", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var questions []models.Question
	testutil.AssertJSON(t, w, &questions)
	if len(questions) != 1 || len(questions[0].Categories) != 1 || questions[0].Categories[0].Name != "Lifestyle" {
		t.Fatalf("Expected one Lifestyle question, got %+v", questions)
	}

	// Step 2: two participants join
	w = do("POST", "/api/sessions", models.JoinSessionRequest{SessionID: "abc", UserID: "alice"})
	testutil.AssertStatus(t, w, http.StatusCreated)
	w = do("POST", "/api/sessions", models.JoinSessionRequest{SessionID: "abc", UserID: "bob"})
	testutil.AssertStatus(t, w, http.StatusOK)
	var session models.Session
	testutil.AssertJSON(t, w, &session)
	if strings.Join(session.Users, ",") != "alice,bob" {
		t.Errorf("Expected users [alice bob], got %v", session.Users)
	}

	// Step 3: answers, one resubmitted
	four, two, five := 4, 2, 5
	handle := "Ally"
	for _, a := range []models.SubmitAnswerRequest{
		{SessionID: "abc", UserID: "alice", QuestionID: q.ID, Answer: &four, Handle: &handle},
		{SessionID: "abc", UserID: "bob", QuestionID: q.ID, Answer: &two},
		{SessionID: "abc", UserID: "bob", QuestionID: q.ID, Answer: &five},
	} {
		w = do("POST", "/api/answers", a)
		if w.Code != http.StatusCreated && w.Code != http.StatusOK {
			t.Fatalf("Answer rejected: %d %s", w.Code, w.Body.String())
		}
	}

	// Step 4: results
	w = do("GET", "/api/results/abc", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var results map[string]map[string]models.ResultEntry
	testutil.AssertJSON(t, w, &results)

	byUser := results[strconv.Itoa(q.ID)]
	if byUser["alice"].Answer != 4 || byUser["bob"].Answer != 5 {
		t.Errorf("Unexpected results: %+v", results)
	}
	if byUser["alice"].UserHandle == nil || *byUser["alice"].UserHandle != "Ally" {
		t.Errorf("Expected alice's handle, got %+v", byUser["alice"])
	}

	w = do("GET", "/api/sessions/abc/progress?userId=bob", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var progress models.Progress
	testutil.AssertJSON(t, w, &progress)
	if progress.State != models.StateCompleted {
		t.Errorf("Expected bob to be completed, got %s", progress.State)
	}

	// Step 5: deleting the question removes its answers from results
	w = do("DELETE", "/api/questions/"+strconv.Itoa(q.ID), nil)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = do("GET", "/api/results/abc", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	if body := strings.TrimSpace(w.Body.String()); body != "{}" {
		t.Errorf("Expected empty results after delete, got %s", body)
	}
}

func TestConcurrentJoins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig(), nil)

	const participants = 8
	var wg sync.WaitGroup
	for i := 0; i < participants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := models.JoinSessionRequest{SessionID: "party", UserID: "guest-" + strconv.Itoa(i)}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/sessions", body, nil))
			if w.Code != http.StatusCreated && w.Code != http.StatusOK {
				t.Errorf("Join %d failed: %d %s", i, w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/sessions/party", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var session models.Session
	testutil.AssertJSON(t, w, &session)
	if len(session.Users) != participants {
		t.Errorf("Expected %d members, got %d: %v", participants, len(session.Users), session.Users)
	}
}
