package ml

import (
	"testing"

	"medml-backend/internal/domain"

	"github.com/stretchr/testify/require"
)

type fixedThresholds struct {
	medium, high float64
}

func (f fixedThresholds) RiskThresholds() (float64, float64) { return f.medium, f.high }

func TestCategorizeBoundaries(t *testing.T) {
	c := NewCategorizer(fixedThresholds{medium: 0.35, high: 0.70})

	cases := []struct {
		score float64
		want  string
	}{
		{0.0, domain.RiskLow},
		{0.349, domain.RiskLow},
		{0.35, domain.RiskMedium}, // inclusive lower bound
		{0.5, domain.RiskMedium},
		{0.699, domain.RiskMedium},
		{0.70, domain.RiskHigh}, // inclusive lower bound
		{1.0, domain.RiskHigh},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.Categorize(tc.score), "score=%v", tc.score)
	}
}

func TestCategorizeWithCustomThresholds(t *testing.T) {
	require.Equal(t, domain.RiskMedium, CategorizeWith(0.34, 0.33, 0.66))
	require.Equal(t, domain.RiskHigh, CategorizeWith(0.66, 0.33, 0.66))
	require.Equal(t, domain.RiskLow, CategorizeWith(0.32, 0.33, 0.66))
}

func TestCategorizerReadsSourceEveryCall(t *testing.T) {
	src := &mutableThresholds{medium: 0.35, high: 0.70}
	c := NewCategorizer(src)
	require.Equal(t, domain.RiskMedium, c.Categorize(0.5))

	src.high = 0.45
	require.Equal(t, domain.RiskHigh, c.Categorize(0.5))
}

type mutableThresholds struct {
	medium, high float64
}

func (m *mutableThresholds) RiskThresholds() (float64, float64) { return m.medium, m.high }
