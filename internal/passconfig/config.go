// Package passconfig loads the tunables for the FIRV hardening pass from a
// TOML document, the way vovakirdan-surge loads its build configuration.
package passconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config carries the pass's tunables. The zero value is not valid; use
// Default or Load.
type Config struct {
	// MaxCompareDepth bounds the recursion the structural equality
	// comparator (C5) is allowed to perform through nested structs/arrays.
	// The original source declared this as an unused constant
	// (`static const int MaxDepth = 10;`); here it is load-bearing: the C1
	// gate enforces it before any mutation happens, so exceeding it is a
	// decline, never a panic mid-synthesis.
	MaxCompareDepth int `toml:"max_compare_depth"`

	// BranchWeightTrue and BranchWeightFalse are attached to every guard
	// branch the pass inserts (§4.6 of spec.md), biased toward the
	// equal-values branch so layout keeps the fail path cold.
	BranchWeightTrue  int64 `toml:"branch_weight_true"`
	BranchWeightFalse int64 `toml:"branch_weight_false"`
}

// Default returns the pass's out-of-the-box tunables.
func Default() Config {
	return Config{
		MaxCompareDepth:   10,
		BranchWeightTrue:  1,
		BranchWeightFalse: 99999,
	}
}

// Load reads a TOML config file, overlaying it on Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("passconfig: decode %s: %w", path, err)
	}
	return cfg, nil
}
