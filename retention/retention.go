// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package retention purges sessions that have been idle longer than a TTL.
// Answers and members go with their session.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Purger deletes sessions last active before cutoff.
type Purger interface {
	PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error)
}

// DefaultInterval replaces a non-positive sweep interval.
const DefaultInterval = time.Hour

type Sweeper struct {
	purger   Purger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// New returns a sweeper; a ttl of zero or less makes Run a no-op.
func New(p Purger, ttl, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{purger: p, ttl: ttl, interval: interval, now: time.Now}
}

// SweepOnce purges sessions idle for longer than the TTL.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl)

	n, err := s.purger.PurgeInactive(ctx, cutoff)
	if err != nil {
		slog.Error("session purge failed", "error", err, "cutoff", cutoff)
		return 0, err
	}

	if n > 0 {
		slog.Info("purged idle sessions",
			"count", humanize.Comma(n),
			"idle_since", humanize.Time(cutoff),
		)
	}
	return n, nil
}

// Run sweeps once immediately, then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.ttl <= 0 {
		slog.Info("session retention disabled")
		return
	}

	slog.Info("session retention enabled",
		"ttl", s.ttl.String(),
		"interval", s.interval.String(),
	)

	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}
