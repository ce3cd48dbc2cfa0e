package rewards

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultTable []byte

// Table is a versioned reward schedule, sorted ascending by threshold.
type Table struct {
	Version string `yaml:"version" json:"version"`
	Tiers   []Tier `yaml:"tiers" json:"tiers"`
}

// Evaluate applies the table to count.
func (t Table) Evaluate(count int64) Result {
	return Evaluate(count, t.Tiers)
}

func (t Table) Validate() error {
	for i, tier := range t.Tiers {
		if tier.Threshold < 0 {
			return fmt.Errorf("tier %d: negative threshold %d", i, tier.Threshold)
		}
		if strings.TrimSpace(tier.Reward) == "" {
			return fmt.Errorf("tier %d: reward is empty", i)
		}
		if i > 0 && tier.Threshold < t.Tiers[i-1].Threshold {
			return fmt.Errorf("tier %d: threshold %d is below previous %d", i, tier.Threshold, t.Tiers[i-1].Threshold)
		}
	}
	return nil
}

// Parse decodes a YAML tier table and validates it.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("decode reward table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, fmt.Errorf("invalid reward table: %w", err)
	}
	return t, nil
}

// Default returns the built-in reward table.
func Default() Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads the table at path, or returns Default when path is empty.
func Load(path string) (Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Table{}, fmt.Errorf("reward table %s not found", path)
		}
		return Table{}, fmt.Errorf("read reward table: %w", err)
	}
	return Parse(data)
}
