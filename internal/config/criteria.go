package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/resume-evaluator/internal/domain"
)

// criteriaFile is the YAML document shape for CRITERIA_FILE:
//
//	criteria:
//	  - name: Skills Match
//	    weight: 0.2
type criteriaFile struct {
	Criteria []domain.Criterion `yaml:"criteria"`
}

// LoadCriteria returns the active criterion set: the YAML override when
// CriteriaFile is set, the built-in defaults otherwise. The returned set is
// always validated (non-empty, unique names, weights summing to 1.0).
func LoadCriteria(c Config) ([]domain.Criterion, error) {
	criteria := domain.DefaultCriteria()
	if c.CriteriaFile != "" {
		raw, err := os.ReadFile(c.CriteriaFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read criteria file: %v", domain.ErrConfiguration, err)
		}
		var f criteriaFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: parse criteria file: %v", domain.ErrConfiguration, err)
		}
		criteria = f.Criteria
	}
	if err := domain.ValidateCriteria(criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}
