// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package service holds the session, answer and catalog operations. Services
// keep no state of their own; every call is a short read or a transaction
// against the store, and the store's unique constraints arbitrate races.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/know-you/apperr"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// normalize trims and NFC-normalises user-supplied text so that visually
// identical names compare equal in unique indexes.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	v := normalize(*s)
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// sessionExists returns NotFound when the session row is absent.
func sessionExists(ctx context.Context, q querier, sessionID string) error {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM sessions WHERE id = $1`, sessionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("session not found")
	}
	if err != nil {
		return apperr.Store("failed to query session", err)
	}
	return nil
}
