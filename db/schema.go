// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var ddl string
	switch dialect {
	case DialectPostgres:
		ddl = postgresSchema
	case DialectSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dialect)
	}

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are unix seconds so both engines compare them numerically.
const postgresSchema = `
-- Catalog
CREATE TABLE IF NOT EXISTS categories (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
    id SERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    scale_min INTEGER NOT NULL DEFAULT 1,
    scale_max INTEGER NOT NULL DEFAULT 5,
    CHECK (scale_min < scale_max)
);

CREATE TABLE IF NOT EXISTS question_categories (
    question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    PRIMARY KEY (question_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_question_categories_category ON question_categories(category_id);

-- Sessions
CREATE TABLE IF NOT EXISTS sessions (
    id VARCHAR(255) PRIMARY KEY,
    created_unix BIGINT NOT NULL,
    last_active_unix BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active_unix);

CREATE TABLE IF NOT EXISTS session_members (
    position BIGSERIAL PRIMARY KEY,
    session_id VARCHAR(255) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    user_id VARCHAR(255) NOT NULL,
    joined_unix BIGINT NOT NULL,
    UNIQUE (session_id, user_id)
);

-- Answers
CREATE TABLE IF NOT EXISTS answers (
    id BIGSERIAL PRIMARY KEY,
    session_id VARCHAR(255) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    user_id VARCHAR(255) NOT NULL,
    question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    answer INTEGER NOT NULL,
    user_handle TEXT,
    revision INTEGER NOT NULL DEFAULT 1,
    updated_unix BIGINT NOT NULL,
    UNIQUE (session_id, user_id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);
`

const sqliteSchema = `
-- Catalog
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    scale_min INTEGER NOT NULL DEFAULT 1,
    scale_max INTEGER NOT NULL DEFAULT 5,
    CHECK (scale_min < scale_max)
);

CREATE TABLE IF NOT EXISTS question_categories (
    question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    PRIMARY KEY (question_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_question_categories_category ON question_categories(category_id);

-- Sessions
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    created_unix INTEGER NOT NULL,
    last_active_unix INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active_unix);

CREATE TABLE IF NOT EXISTS session_members (
    position INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    joined_unix INTEGER NOT NULL,
    UNIQUE (session_id, user_id)
);

-- Answers
CREATE TABLE IF NOT EXISTS answers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    answer INTEGER NOT NULL,
    user_handle TEXT,
    revision INTEGER NOT NULL DEFAULT 1,
    updated_unix INTEGER NOT NULL,
    UNIQUE (session_id, user_id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);
`
