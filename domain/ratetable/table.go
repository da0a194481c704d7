// Package ratetable holds the historical mean-goal lookup tables shared by
// training and inference.
package ratetable

import (
	"fmt"
	"math"
	"sort"

	"kickpredict/domain/core"
)

const (
	// DefaultRate is returned for keys absent from a table, so the derived
	// ratio degenerates to the raw goal.
	DefaultRate = 1.0

	NameByCategory = "mean_goal_by_cat"
	NameByCountry  = "mean_goal_by_country"
)

// Table maps a category key to the mean historical usd_goal_real.
// It is immutable after construction and safe for concurrent readers.
type Table struct {
	name  string
	means map[string]float64
}

// New copies means into a new Table
func New(name string, means map[string]float64) *Table {
	copied := make(map[string]float64, len(means))
	for k, v := range means {
		copied[k] = v
	}
	return &Table{name: name, means: copied}
}

// Name returns the persisted name of the table
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Lookup returns the mean for key and whether it was present
func (t *Table) Lookup(key string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.means[key]
	return v, ok
}

// Rate returns the mean for key, or DefaultRate with defaulted=true
func (t *Table) Rate(key string) (rate float64, defaulted bool) {
	if v, ok := t.Lookup(key); ok {
		return v, false
	}
	return DefaultRate, true
}

// Len returns the number of keys
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.means)
}

// Keys returns the keys in sorted order
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.means))
	for k := range t.means {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the underlying mapping
func (t *Table) Entries() map[string]float64 {
	if t == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(t.means))
	for k, v := range t.means {
		out[k] = v
	}
	return out
}

// Hash fingerprints the table contents
func (t *Table) Hash() core.Hash {
	if t == nil {
		return core.ComputeMappingHash("", nil)
	}
	return core.ComputeMappingHash(t.name, t.means)
}

// Validate rejects tables a ratio could not be computed against
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("rate table is nil")
	}
	for k, v := range t.means {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("rate table %s: key %q has non-positive or non-finite mean %v", t.name, k, v)
		}
	}
	return nil
}

// Set is the pair of tables the feature deriver reads
type Set struct {
	ByCategory *Table
	ByCountry  *Table
}

// Validate checks both tables are present, correctly named and well-formed
func (s Set) Validate() error {
	if s.ByCategory == nil || s.ByCountry == nil {
		return fmt.Errorf("rate table set is incomplete")
	}
	if s.ByCategory.Name() != NameByCategory {
		return fmt.Errorf("category table named %q, want %q", s.ByCategory.Name(), NameByCategory)
	}
	if s.ByCountry.Name() != NameByCountry {
		return fmt.Errorf("country table named %q, want %q", s.ByCountry.Name(), NameByCountry)
	}
	if err := s.ByCategory.Validate(); err != nil {
		return err
	}
	return s.ByCountry.Validate()
}

// Fingerprint identifies the exact table pair a model was trained against
func (s Set) Fingerprint() core.Hash {
	return core.CombineHashes(s.ByCategory.Hash(), s.ByCountry.Hash())
}

// Tables returns both tables in persisted-name order
func (s Set) Tables() []*Table {
	return []*Table{s.ByCategory, s.ByCountry}
}
