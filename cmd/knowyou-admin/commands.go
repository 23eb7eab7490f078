// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/know-you/db"
	"github.com/danielhkuo/know-you/models"
	"github.com/danielhkuo/know-you/service"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	DatabaseType string
	DatabaseURL  string
	Format       string // "json" | "text"
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "knowyou-admin",
		Short: "Maintenance tasks for the know-you store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseType, "db-type", envOr("DATABASE_TYPE", "sqlite"), "database type (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "db", envOr("DATABASE_URL", "know-you.db"), "database URL or SQLite path")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newPurgeCommand(opts))
	cmd.AddCommand(newResultsCommand(opts))

	return cmd
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var (
		file     string
		scaleMin int
		scaleMax int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a question catalog into an empty store",
		Long: `Load a YAML question catalog into a store that has no questions yet.

Without --file the built-in sample catalog is used. A store that already
has questions is left untouched.

Examples:
  knowyou-admin seed
  knowyou-admin seed --file catalog.yaml --db-type postgres --db postgres://...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := db.DefaultSeed()
			if file != "" {
				catalog, err = db.LoadSeedFile(file)
			}
			if err != nil {
				return err
			}

			conn, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := service.NewCatalogService(conn, scaleMin, scaleMax).Seed(cmd.Context(), catalog)
			if err != nil {
				return err
			}

			return write(cmd.OutOrStdout(), opts, map[string]int{"seeded": n}, func(w io.Writer) {
				if n == 0 {
					fmt.Fprintln(w, "Catalog already has questions; nothing seeded")
					return
				}
				fmt.Fprintf(w, "Seeded %d questions in %d categories\n", n, len(catalog.Categories))
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load (default: built-in sample)")
	cmd.Flags().IntVar(&scaleMin, "likert-min", models.DefaultScaleMin, "scale minimum for questions without one")
	cmd.Flags().IntVar(&scaleMax, "likert-max", models.DefaultScaleMax, "scale maximum for questions without one")

	return cmd
}

func newPurgeCommand(opts *rootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions idle longer than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			conn, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			cutoff := time.Now().Add(-olderThan)
			n, err := service.NewSessionService(conn).PurgeInactive(cmd.Context(), cutoff)
			if err != nil {
				return err
			}

			return write(cmd.OutOrStdout(), opts, map[string]int64{"purged": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Purged %s sessions idle since %s\n", humanize.Comma(n), humanize.Time(cutoff))
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "idle time after which a session is purged")

	return cmd
}

func newResultsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "results <sessionId>",
		Short: "Print a session's answers grouped by question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			results, err := service.NewSessionService(conn).Results(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return write(cmd.OutOrStdout(), opts, results, func(w io.Writer) {
				printResults(w, results)
			})
		},
	}
}

func printResults(w io.Writer, results models.Results) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No answers yet")
		return
	}

	questionIDs := make([]int, 0, len(results))
	for id := range results {
		questionIDs = append(questionIDs, id)
	}
	sort.Ints(questionIDs)

	for _, qID := range questionIDs {
		fmt.Fprintf(w, "Question %d\n", qID)

		byUser := results[qID]
		users := make([]string, 0, len(byUser))
		for u := range byUser {
			users = append(users, u)
		}
		sort.Strings(users)

		for _, u := range users {
			entry := byUser[u]
			if entry.UserHandle != nil {
				fmt.Fprintf(w, "  %s (%s): %d\n", u, *entry.UserHandle, entry.Answer)
			} else {
				fmt.Fprintf(w, "  %s: %d\n", u, entry.Answer)
			}
		}
	}
}

// openStore connects and makes sure the schema exists.
func openStore(ctx context.Context, opts *rootOptions) (*sql.DB, error) {
	dialect, err := db.ParseDialect(opts.DatabaseType)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(ctx, dialect, opts.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.CreateSchema(ctx, conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// write emits v as JSON or runs text for the text format.
func write(w io.Writer, opts *rootOptions, v any, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
