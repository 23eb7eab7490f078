// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := Open(ctx, DialectSQLite, filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, CreateSchema(ctx, conn, DialectSQLite))
	return conn
}

func TestCreateSchema_Idempotent(t *testing.T) {
	c := openTestSQLite(t)

	// Second call must not fail.
	require.NoError(t, CreateSchema(context.Background(), c, DialectSQLite))

	for _, table := range []string{"categories", "questions", "question_categories", "sessions", "session_members", "answers"} {
		var name string
		err := c.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestCreateSchema_UnknownDialect(t *testing.T) {
	c := openTestSQLite(t)
	err := CreateSchema(context.Background(), c, Dialect("oracle"))
	assert.Error(t, err)
}

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"postgres":   DialectPostgres,
		"PostgreSQL": DialectPostgres,
		"sqlite":     DialectSQLite,
		"":           DialectSQLite,
	}
	for in, want := range cases {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"data.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		sqliteDSN("data.db"))
	assert.Contains(t, sqliteDSN("sqlite://data.db?mode=rwc"), "data.db?mode=rwc&_pragma=foreign_keys(1)")
}

func TestConstraintClassification_SQLite(t *testing.T) {
	c := openTestSQLite(t)

	_, err := c.Exec(`INSERT INTO categories (name) VALUES ($1)`, "Lifestyle")
	require.NoError(t, err)

	_, err = c.Exec(`INSERT INTO categories (name) VALUES ($1)`, "Lifestyle")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))

	_, err = c.Exec(`INSERT INTO question_categories (question_id, category_id) VALUES ($1, $2)`, 999, 999)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestConstraintClassification_Postgres(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(os.ErrNotExist))
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	assert.Equal(t, []string{"Lifestyle", "Interests", "Hobbies"}, seed.Categories)
	require.Len(t, seed.Questions, 5)
	assert.Equal(t, "Do you enjoy outdoor activities?", seed.Questions[0].Text)
	assert.Equal(t, []string{"Lifestyle"}, seed.Questions[0].Categories)
}

func TestLoadSeedFile_UndeclaredCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := "categories: [Food]\nquestions:\n  - text: Tea or coffee?\n    categories: [Drinks]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	_, err := LoadSeedFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Drinks")
}
