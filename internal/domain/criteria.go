package domain

import (
	"fmt"
	"math"
)

// Criterion is a named evaluation dimension with a scoring weight.
// The active set is fixed, process-wide configuration, immutable after load.
type Criterion struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// weightSumTolerance bounds floating-point drift when validating that the
// active criterion weights sum to 1.0.
const weightSumTolerance = 1e-9

// DefaultCriteria returns the built-in criterion set. Weights sum to 1.0.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{Name: "Relevance to Job Description", Weight: 0.25},
		{Name: "Skills Match", Weight: 0.20},
		{Name: "Experience Match", Weight: 0.20},
		{Name: "Education Match", Weight: 0.10},
		{Name: "Overall Format and Structure", Weight: 0.10},
		{Name: "Action Verbs and Impact", Weight: 0.10},
		{Name: "Keyword Optimization", Weight: 0.05},
	}
}

// ValidateCriteria checks that the set is non-empty, names are unique and
// non-blank, weights are within [0,1], and the weights sum to 1.0.
func ValidateCriteria(criteria []Criterion) error {
	if len(criteria) == 0 {
		return fmt.Errorf("%w: empty criterion set", ErrConfiguration)
	}
	seen := make(map[string]struct{}, len(criteria))
	sum := 0.0
	for _, c := range criteria {
		if c.Name == "" {
			return fmt.Errorf("%w: criterion with empty name", ErrConfiguration)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate criterion %q", ErrConfiguration, c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Weight < 0 || c.Weight > 1 {
			return fmt.Errorf("%w: criterion %q weight %v out of [0,1]", ErrConfiguration, c.Name, c.Weight)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: criterion weights sum to %v, want 1.0", ErrConfiguration, sum)
	}
	return nil
}

// CriterionWeight returns the configured weight for name, or 0 when the
// criterion is not part of the set.
func CriterionWeight(criteria []Criterion, name string) float64 {
	for _, c := range criteria {
		if c.Name == name {
			return c.Weight
		}
	}
	return 0
}
