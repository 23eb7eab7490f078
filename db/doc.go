// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the store, creates the schema and ships the sample catalog.

# Dialects

PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite) are supported:

	dialect, _ := db.ParseDialect(cfg.DatabaseType)
	conn, err := db.Open(ctx, dialect, cfg.DatabaseURL)

SQLite connections enable foreign keys, WAL and a busy timeout through the
DSN and are limited to one open connection.

Queries elsewhere use $N placeholders, ON CONFLICT and RETURNING, which
both engines accept; only the DDL differs.

# Schema Creation

	if err := db.CreateSchema(ctx, conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - categories: unique names
  - questions: text and Likert scale bounds
  - question_categories: composite key (question_id, category_id)
  - sessions: id, created and last active unix seconds
  - session_members: one row per member, position keeps join order
  - answers: unique per (session_id, user_id, question_id)

# Relationships

	questions  *──* categories (via question_categories)
	sessions   1──* session_members
	sessions   1──* answers
	questions  1──* answers

All foreign keys use ON DELETE CASCADE.

# Constraint Errors

IsUniqueViolation and IsForeignKeyViolation classify driver errors from
either engine so services can map them to conflict and not-found responses.

# Seed Catalog

DefaultSeed returns the embedded seed.yaml; LoadSeedFile reads another
catalog in the same format.
*/
package db
