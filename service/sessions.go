// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/know-you/apperr"
	"github.com/danielhkuo/know-you/auth"
	"github.com/danielhkuo/know-you/db"
	"github.com/danielhkuo/know-you/models"
)

type SessionService struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionService(conn *sql.DB) *SessionService {
	return &SessionService{db: conn, now: time.Now}
}

// SubmitAnswerInput is one participant's answer to one question.
type SubmitAnswerInput struct {
	SessionID  string
	UserID     string
	QuestionID int
	Value      int
	Handle     *string
}

// JoinOrCreate creates the session if needed and adds userID to its members.
// Joining twice is a no-op. created reports whether this call made the session.
func (s *SessionService) JoinOrCreate(ctx context.Context, sessionID, userID string) (models.Session, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	userID = strings.TrimSpace(userID)
	if sessionID == "" {
		return models.Session{}, false, apperr.Validation("sessionId is required")
	}
	if userID == "" {
		return models.Session{}, false, apperr.Validation("userId is required")
	}

	now := s.now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Session{}, false, apperr.Store("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// The primary key folds concurrent creates of the same id into one row
	res, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_unix, last_active_unix)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, sessionID, now, now)
	if err != nil {
		return models.Session{}, false, apperr.Store("failed to create session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Session{}, false, apperr.Store("failed to create session", err)
	}
	created := n == 1

	if !created {
		if err := touchSession(ctx, tx, sessionID, now); err != nil {
			return models.Session{}, false, err
		}
	}

	// One row per member, so concurrent joins of different users never
	// overwrite each other
	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_members (session_id, user_id, joined_unix)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`, sessionID, userID, now)
	if err != nil {
		return models.Session{}, false, apperr.Store("failed to add session member", err)
	}

	users, err := loadMembers(ctx, tx, sessionID)
	if err != nil {
		return models.Session{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return models.Session{}, false, apperr.Store("failed to commit session join", err)
	}

	return models.Session{ID: sessionID, Users: users}, created, nil
}

// Create mints a fresh session id and joins userID to it.
func (s *SessionService) Create(ctx context.Context, userID string) (models.Session, error) {
	// A collision is astronomically unlikely; retry rather than join a stranger's session
	for attempt := 0; attempt < 3; attempt++ {
		id, err := auth.GenerateSessionID()
		if err != nil {
			return models.Session{}, apperr.Store("failed to generate session id", err)
		}
		session, created, err := s.JoinOrCreate(ctx, id, userID)
		if err != nil {
			return models.Session{}, err
		}
		if created {
			return session, nil
		}
	}
	return models.Session{}, apperr.Store("failed to create session", errors.New("session id collisions"))
}

// Get returns the session's membership in join order.
func (s *SessionService) Get(ctx context.Context, sessionID string) (models.Session, error) {
	if err := sessionExists(ctx, s.db, sessionID); err != nil {
		return models.Session{}, err
	}
	users, err := loadMembers(ctx, s.db, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{ID: sessionID, Users: users}, nil
}

// SubmitAnswer upserts the answer for (session, user, question). A resubmission
// overwrites the value, and the handle too when one is given. created reports
// whether a new row was inserted.
func (s *SessionService) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (models.AnswerRecord, bool, error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.UserID = strings.TrimSpace(in.UserID)
	switch {
	case in.SessionID == "":
		return models.AnswerRecord{}, false, apperr.Validation("sessionId is required")
	case in.UserID == "":
		return models.AnswerRecord{}, false, apperr.Validation("userId is required")
	case in.QuestionID <= 0:
		return models.AnswerRecord{}, false, apperr.Validation("questionId is required")
	}

	now := s.now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.AnswerRecord{}, false, apperr.Store("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := sessionExists(ctx, tx, in.SessionID); err != nil {
		return models.AnswerRecord{}, false, err
	}

	// The question's declared scale bounds the answer
	var scaleMin, scaleMax int
	err = tx.QueryRowContext(ctx, `
		SELECT scale_min, scale_max FROM questions WHERE id = $1
	`, in.QuestionID).Scan(&scaleMin, &scaleMax)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AnswerRecord{}, false, apperr.NotFound("question not found")
	}
	if err != nil {
		return models.AnswerRecord{}, false, apperr.Store("failed to query question", err)
	}
	if in.Value < scaleMin || in.Value > scaleMax {
		return models.AnswerRecord{}, false, apperr.Validation(
			fmt.Sprintf("answer must be between %d and %d", scaleMin, scaleMax))
	}

	rec := models.AnswerRecord{
		SessionID:  in.SessionID,
		UserID:     in.UserID,
		QuestionID: in.QuestionID,
	}
	// Revision 1 means this statement inserted the row. A concurrent first
	// submission that loses the insert race takes the update path instead.
	var (
		handle   sql.NullString
		revision int
	)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO answers (session_id, user_id, question_id, answer, user_handle, revision, updated_unix)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (session_id, user_id, question_id) DO UPDATE SET
			answer = EXCLUDED.answer,
			user_handle = COALESCE(EXCLUDED.user_handle, answers.user_handle),
			revision = answers.revision + 1,
			updated_unix = EXCLUDED.updated_unix
		RETURNING id, answer, user_handle, revision
	`, in.SessionID, in.UserID, in.QuestionID, in.Value, nullString(in.Handle), now).Scan(&rec.ID, &rec.Answer, &handle, &revision)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			// Session or question deleted concurrently
			return models.AnswerRecord{}, false, apperr.NotFound("session or question not found")
		}
		return models.AnswerRecord{}, false, apperr.Store("failed to save answer", err)
	}
	rec.UserHandle = stringPtr(handle)
	created := revision == 1

	if err := touchSession(ctx, tx, in.SessionID, now); err != nil {
		return models.AnswerRecord{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return models.AnswerRecord{}, false, apperr.Store("failed to commit answer", err)
	}

	return rec, created, nil
}

// Results groups the session's answers by question, then by user. A session
// without answers yields an empty map; an unknown session is NotFound.
func (s *SessionService) Results(ctx context.Context, sessionID string) (models.Results, error) {
	if err := sessionExists(ctx, s.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, user_id, answer, user_handle
		FROM answers
		WHERE session_id = $1
		ORDER BY question_id, user_id
	`, sessionID)
	if err != nil {
		return nil, apperr.Store("failed to query answers", err)
	}
	defer rows.Close()

	results := models.Results{}
	for rows.Next() {
		var (
			questionID int
			userID     string
			entry      models.ResultEntry
			handle     sql.NullString
		)
		if err := rows.Scan(&questionID, &userID, &entry.Answer, &handle); err != nil {
			return nil, apperr.Store("failed to scan answer", err)
		}
		entry.UserHandle = stringPtr(handle)

		byUser, ok := results[questionID]
		if !ok {
			byUser = map[string]models.ResultEntry{}
			results[questionID] = byUser
		}
		byUser[userID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to read answers", err)
	}

	return results, nil
}

// Progress derives where userID stands in the questionnaire by comparing the
// questions they answered with the catalog size.
func (s *SessionService) Progress(ctx context.Context, sessionID, userID string) (models.Progress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Progress{}, apperr.Validation("userId is required")
	}
	if err := sessionExists(ctx, s.db, sessionID); err != nil {
		return models.Progress{}, err
	}

	p := models.Progress{SessionID: sessionID, UserID: userID}

	var members int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM session_members WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(&members)
	if err != nil {
		return models.Progress{}, apperr.Store("failed to query membership", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&p.Total); err != nil {
		return models.Progress{}, apperr.Store("failed to count questions", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT question_id) FROM answers WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(&p.Answered)
	if err != nil {
		return models.Progress{}, apperr.Store("failed to count answers", err)
	}

	switch {
	case members == 0 && p.Answered == 0:
		p.State = models.StateNotJoined
	case p.Answered == 0:
		p.State = models.StateJoined
	case p.Answered >= p.Total:
		p.State = models.StateCompleted
	default:
		p.State = models.StateAnswering
	}

	return p, nil
}

// Summary computes per-question statistics over the session's answers,
// ordered by question id.
func (s *SessionService) Summary(ctx context.Context, sessionID string) ([]models.QuestionSummary, error) {
	if err := sessionExists(ctx, s.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.question_id, q.text, q.scale_min, q.scale_max, a.answer
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE a.session_id = $1
		ORDER BY a.question_id
	`, sessionID)
	if err != nil {
		return nil, apperr.Store("failed to query answers", err)
	}
	defer rows.Close()

	var (
		summaries []models.QuestionSummary
		values    []int
		current   *scaledQuestion
	)
	flush := func() {
		if current != nil {
			summaries = append(summaries, summarize(*current, values))
		}
	}
	for rows.Next() {
		var q scaledQuestion
		var v int
		if err := rows.Scan(&q.id, &q.text, &q.scaleMin, &q.scaleMax, &v); err != nil {
			return nil, apperr.Store("failed to scan answer", err)
		}
		if current == nil || current.id != q.id {
			flush()
			current = &q
			values = nil
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to read answers", err)
	}
	flush()

	if summaries == nil {
		summaries = []models.QuestionSummary{}
	}
	return summaries, nil
}

// PurgeInactive deletes sessions idle since before cutoff. Members and
// answers go with them through ON DELETE CASCADE.
func (s *SessionService) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE last_active_unix < $1
	`, cutoff.Unix())
	if err != nil {
		return 0, apperr.Store("failed to purge sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store("failed to purge sessions", err)
	}
	return n, nil
}

func touchSession(ctx context.Context, q querier, sessionID string, now int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE sessions SET last_active_unix = $1 WHERE id = $2
	`, now, sessionID)
	if err != nil {
		return apperr.Store("failed to update session activity", err)
	}
	return nil
}

func loadMembers(ctx context.Context, q querier, sessionID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id FROM session_members
		WHERE session_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, apperr.Store("failed to query session members", err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, apperr.Store("failed to scan session member", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to read session members", err)
	}
	return users, nil
}
