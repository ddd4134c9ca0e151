package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCriteriaValid(t *testing.T) {
	t.Parallel()
	criteria := DefaultCriteria()
	require.Len(t, criteria, 7)
	assert.NoError(t, ValidateCriteria(criteria))
}

func TestValidateCriteria(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		criteria []Criterion
		wantErr  bool
	}{
		{"valid pair", []Criterion{{Name: "A", Weight: 0.5}, {Name: "B", Weight: 0.5}}, false},
		{"empty set", nil, true},
		{"blank name", []Criterion{{Name: "", Weight: 1}}, true},
		{"duplicate name", []Criterion{{Name: "A", Weight: 0.5}, {Name: "A", Weight: 0.5}}, true},
		{"negative weight", []Criterion{{Name: "A", Weight: -0.5}, {Name: "B", Weight: 1.5}}, true},
		{"sum below one", []Criterion{{Name: "A", Weight: 0.4}, {Name: "B", Weight: 0.4}}, true},
		{"float drift tolerated", []Criterion{{Name: "A", Weight: 0.1}, {Name: "B", Weight: 0.2}, {Name: "C", Weight: 0.7}}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCriteria(tt.criteria)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCriterionWeight(t *testing.T) {
	t.Parallel()
	criteria := DefaultCriteria()
	assert.InDelta(t, 0.25, CriterionWeight(criteria, "Relevance to Job Description"), 1e-12)
	assert.Zero(t, CriterionWeight(criteria, "Unknown"))
}

func TestEmptyKeywordSet(t *testing.T) {
	t.Parallel()
	ks := EmptyKeywordSet()
	require.Len(t, ks, len(KeywordCategories))
	for _, c := range KeywordCategories {
		list, ok := ks[c]
		require.True(t, ok, c)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
}
