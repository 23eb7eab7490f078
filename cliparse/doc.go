// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Precedence is CLI flag, then environment variable, then the .env file
(loaded with joho/godotenv, never overriding the environment), then default.

# Settings

	Flag            Env               Default
	-p              PORT              3000
	-d              DATABASE_URL      know-you.db (required for postgres)
	-t              DATABASE_TYPE     sqlite
	-env            APP_ENV           development
	-log-level      LOG_LEVEL         info
	-likert-min     LIKERT_MIN        1
	-likert-max     LIKERT_MAX        5
	-session-ttl    SESSION_TTL       720h (0 disables purging)
	-sweep-interval SWEEP_INTERVAL    1h
	-rate-limit     RATE_LIMIT_RPS    10 (0 disables)
	-rate-burst     RATE_LIMIT_BURST  20
	-origins        ALLOWED_ORIGINS   *
	-trusted-proxies TRUSTED_PROXIES  (empty: forwarding headers ignored)
	-seed           SEED_CATALOG      true
	-admin-key      ADMIN_KEY         (empty: catalog writes open)
	-env-file                         .env

# Usage Example

	$ DATABASE_TYPE=postgres DATABASE_URL=postgres://... ./know-you
	$ ./know-you -p 8080 -d data/know-you.db -env production

A flag given explicitly wins even when its value is zero, so -rate-limit 0
disables limiting regardless of RATE_LIMIT_RPS. The sweep interval must be
positive while retention is enabled.

In production, store error details are not sent to clients.
*/
package cliparse
