// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/know-you/db"
	"github.com/danielhkuo/know-you/models"
	"github.com/danielhkuo/know-you/testutil"
)

// run executes the root command against a SQLite file and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db-type", "sqlite", "--db", dbPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"seed", "purge", "results"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "admin.db"), "--format", "xml", "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSeedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.db")

	out, err := run(t, path, "seed")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 5 questions in 3 categories\n", out)

	out, err = run(t, path, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")
}

func TestSeedCommand_FromFile(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	yaml := "categories: [Food]\nquestions:\n  - text: Tea or coffee?\n    categories: [Food]\n    scale_min: 0\n    scale_max: 10\n"
	require.NoError(t, writeFile(catalog, yaml))

	out, err := run(t, filepath.Join(dir, "admin.db"), "--format", "json", "seed", "--file", catalog)
	require.NoError(t, err)

	var resp map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp["seeded"])
}

func TestPurgeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.db")

	conn, err := db.Open(context.Background(), db.DialectSQLite, path)
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema(context.Background(), conn, db.DialectSQLite))
	testutil.CreateTestSession(t, conn, "old", "u1")
	testutil.CreateTestSession(t, conn, "new", "u2")
	_, err = conn.Exec(`UPDATE sessions SET last_active_unix = $1 WHERE id = $2`,
		time.Now().Add(-48*time.Hour).Unix(), "old")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	out, err := run(t, path, "purge", "--older-than", "24h")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 1 sessions")

	_, err = run(t, path, "purge", "--older-than", "0s")
	assert.Error(t, err)
}

func TestResultsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.db")

	conn, err := db.Open(context.Background(), db.DialectSQLite, path)
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema(context.Background(), conn, db.DialectSQLite))
	qID := testutil.CreateTestQuestion(t, conn, "Are you a morning person?")
	testutil.CreateTestSession(t, conn, "abc", "alice", "bob")
	testutil.SubmitTestAnswer(t, conn, "abc", "bob", qID, 2, "")
	testutil.SubmitTestAnswer(t, conn, "abc", "alice", qID, 4, "Ally")
	require.NoError(t, conn.Close())

	out, err := run(t, path, "results", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Question 1\n  alice (Ally): 4\n  bob: 2\n", out)

	out, err = run(t, path, "--format", "json", "results", "abc")
	require.NoError(t, err)
	var results models.Results
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, 2, results[qID]["bob"].Answer)

	_, err = run(t, path, "results", "missing")
	assert.Error(t, err)

	_, err = run(t, path, "results")
	assert.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
