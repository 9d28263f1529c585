package domain

// Risk levels shared by the categorizer and the recommendation lookup.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// LifestyleRecommendation is a static template keyed by disease + level.
type LifestyleRecommendation struct {
	RecommendationID string `json:"recommendation_id"`
	DiseaseType      string `json:"disease_type"` // disease key or "general"
	RiskLevel        string `json:"risk_level"`
	Category         string `json:"category"` // "Diet" / "Exercise" / "Sleep" / "Lifestyle"
	Text             string `json:"recommendation_text"`
}
