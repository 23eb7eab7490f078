// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedCatalog is the YAML shape of a starter question set.
type SeedCatalog struct {
	Categories []string       `yaml:"categories"`
	Questions  []SeedQuestion `yaml:"questions"`
}

// SeedQuestion references categories by name. Zero scale bounds mean
// "use the configured default".
type SeedQuestion struct {
	Text       string   `yaml:"text"`
	Categories []string `yaml:"categories"`
	ScaleMin   int      `yaml:"scale_min"`
	ScaleMax   int      `yaml:"scale_max"`
}

// DefaultSeed returns the embedded sample catalog.
func DefaultSeed() (SeedCatalog, error) {
	return parseSeed(defaultSeed)
}

// LoadSeedFile reads a catalog from a YAML file on disk.
func LoadSeedFile(path string) (SeedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedCatalog{}, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (SeedCatalog, error) {
	var c SeedCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return SeedCatalog{}, fmt.Errorf("parse seed catalog: %w", err)
	}

	known := make(map[string]bool, len(c.Categories))
	for _, name := range c.Categories {
		known[name] = true
	}
	for i, q := range c.Questions {
		if q.Text == "" {
			return SeedCatalog{}, fmt.Errorf("seed question %d has no text", i)
		}
		for _, name := range q.Categories {
			if !known[name] {
				return SeedCatalog{}, fmt.Errorf("seed question %q references undeclared category %q", q.Text, name)
			}
		}
	}

	return c, nil
}
