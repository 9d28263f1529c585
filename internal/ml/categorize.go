package ml

import "medml-backend/internal/domain"

// ThresholdSource supplies the two categorization thresholds. It is read
// on every call so operators can retune without redeploying scoring code.
type ThresholdSource interface {
	RiskThresholds() (medium, high float64)
}

// Categorizer maps a probability in [0,1] to Low/Medium/High.
type Categorizer struct {
	src ThresholdSource
}

func NewCategorizer(src ThresholdSource) *Categorizer {
	return &Categorizer{src: src}
}

func (c *Categorizer) Categorize(score float64) string {
	medium, high := c.src.RiskThresholds()
	return CategorizeWith(score, medium, high)
}

// CategorizeWith applies inclusive lower bounds: score >= high is High,
// score >= medium is Medium, everything below is Low.
func CategorizeWith(score, medium, high float64) string {
	switch {
	case score >= high:
		return domain.RiskHigh
	case score >= medium:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
