// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	Environment  string
	LogLevel     string

	// Default Likert range for questions that do not declare their own
	LikertMin int
	LikertMax int

	// Sessions idle longer than SessionTTL are purged; 0 disables the sweeper
	SessionTTL    time.Duration
	SweepInterval time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string

	// Peers whose X-Forwarded-For and X-Real-IP headers are believed; empty
	// keys clients on the connection address alone
	TrustedProxies []netip.Prefix

	// Empty leaves catalog writes open
	AdminKey    string
	SeedCatalog bool
}

// IsProduction reports whether error details should be hidden from clients
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ParseFlags validates flags and fills the rest from the environment.
// Precedence: CLI flag, environment variable, .env file, default.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, origins, proxies, seed string

	fs := flag.NewFlagSet("know-you", flag.ContinueOnError)

	// Network and store (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&envFile, "env-file", ".env", "Path to .env file")

	fs.StringVar(&cfg.Environment, "env", "", "Environment (development or production)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&cfg.LikertMin, "likert-min", 0, "Default lowest answer value")
	fs.IntVar(&cfg.LikertMax, "likert-max", 0, "Default highest answer value")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Purge sessions idle longer than this (0 disables)")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", 0, "How often to look for idle sessions")
	fs.Float64Var(&cfg.RateLimitRPS, "rate-limit", 0, "Requests per second per client (0 disables)")
	fs.IntVar(&cfg.RateLimitBurst, "rate-burst", 0, "Burst size per client")
	fs.StringVar(&origins, "origins", "", "Comma-separated allowed CORS origins")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set X-Forwarded-For")
	fs.StringVar(&seed, "seed", "", "Seed the sample catalog into an empty store (true/false)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin key for catalog writes (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Zero is a meaningful value for several flags, so track which were given
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Missing .env is fine; existing env vars are never overwritten
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var err error

	// Fall back to environment variables
	if !set["p"] {
		if cfg.Port, err = envInt("PORT", 3000); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "know-you.db"
	}

	if cfg.Environment == "" {
		cfg.Environment = envString("APP_ENV", EnvDevelopment)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = envString("LOG_LEVEL", "info")
	}

	if !set["likert-min"] {
		if cfg.LikertMin, err = envInt("LIKERT_MIN", 1); err != nil {
			return Config{}, err
		}
	}
	if !set["likert-max"] {
		if cfg.LikertMax, err = envInt("LIKERT_MAX", 5); err != nil {
			return Config{}, err
		}
	}
	if cfg.LikertMin >= cfg.LikertMax {
		return Config{}, fmt.Errorf("likert range %d..%d is empty", cfg.LikertMin, cfg.LikertMax)
	}

	if !set["session-ttl"] {
		if cfg.SessionTTL, err = envDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
			return Config{}, err
		}
	}
	if !set["sweep-interval"] {
		if cfg.SweepInterval, err = envDuration("SWEEP_INTERVAL", time.Hour); err != nil {
			return Config{}, err
		}
	}

	if cfg.SessionTTL < 0 {
		return Config{}, errors.New("session TTL must not be negative")
	}
	if cfg.SessionTTL > 0 && cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("sweep interval must be positive, got %v", cfg.SweepInterval)
	}

	if !set["rate-limit"] {
		if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 10); err != nil {
			return Config{}, err
		}
	}
	if !set["rate-burst"] {
		if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 20); err != nil {
			return Config{}, err
		}
	}

	if cfg.RateLimitRPS < 0 {
		return Config{}, errors.New("rate limit must not be negative")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("rate burst must be at least 1, got %d", cfg.RateLimitBurst)
	}

	if origins == "" {
		origins = envString("ALLOWED_ORIGINS", "*")
	}
	cfg.AllowedOrigins = splitList(origins)

	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	if cfg.TrustedProxies, err = parsePrefixes(splitList(proxies)); err != nil {
		return Config{}, err
	}

	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}

	if seed == "" {
		seed = envString("SEED_CATALOG", "true")
	}
	if cfg.SeedCatalog, err = strconv.ParseBool(seed); err != nil {
		return Config{}, errors.New("invalid SEED_CATALOG value")
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePrefixes accepts CIDRs and bare addresses; a bare address matches
// only itself.
func parsePrefixes(items []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range items {
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", item)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
