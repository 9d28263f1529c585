package domain

import "time"

// Disease keys used across the prediction pipeline and the risk_predictions
// table columns.
const (
	DiseaseDiabetes     = "diabetes"
	DiseaseLiver        = "liver"
	DiseaseHeart        = "heart"
	DiseaseMentalHealth = "mental_health"
)

// Diseases lists every supported disease key in evaluation order.
var Diseases = []string{DiseaseDiabetes, DiseaseLiver, DiseaseHeart, DiseaseMentalHealth}

// ValidDisease reports whether key names a supported disease.
func ValidDisease(key string) bool {
	for _, d := range Diseases {
		if d == key {
			return true
		}
	}
	return false
}

// DiseaseResult is one disease's slot inside a snapshot. Both fields are
// nil when the disease could not be predicted (missing assessment or
// unavailable model).
type DiseaseResult struct {
	Score *float64 `json:"score"`
	Level *string  `json:"level"`
}

// RiskPrediction is one immutable snapshot row: the four diseases' results
// for a patient at a point in time. Rows are only ever inserted; "latest"
// is the row with the maximum predicted_at.
type RiskPrediction struct {
	PredictionID string        `json:"prediction_id"`
	PatientID    string        `json:"patient_id"`
	Diabetes     DiseaseResult `json:"diabetes"`
	Liver        DiseaseResult `json:"liver"`
	Heart        DiseaseResult `json:"heart"`
	MentalHealth DiseaseResult `json:"mental_health"`
	ModelVersion string        `json:"model_version"`
	PredictedAt  time.Time     `json:"predicted_at"`
}

// Result returns the slot for a disease key (zero value for unknown keys).
func (p *RiskPrediction) Result(disease string) DiseaseResult {
	switch disease {
	case DiseaseDiabetes:
		return p.Diabetes
	case DiseaseLiver:
		return p.Liver
	case DiseaseHeart:
		return p.Heart
	case DiseaseMentalHealth:
		return p.MentalHealth
	}
	return DiseaseResult{}
}

// SetResult fills a disease slot before the snapshot is persisted.
func (p *RiskPrediction) SetResult(disease string, score float64, level string) {
	r := DiseaseResult{Score: &score, Level: &level}
	switch disease {
	case DiseaseDiabetes:
		p.Diabetes = r
	case DiseaseLiver:
		p.Liver = r
	case DiseaseHeart:
		p.Heart = r
	case DiseaseMentalHealth:
		p.MentalHealth = r
	}
}

func (p *RiskPrediction) ToJSON() map[string]any {
	return map[string]any{
		"prediction_id":       p.PredictionID,
		"patient_id":          p.PatientID,
		"diabetes_score":      p.Diabetes.Score,
		"diabetes_level":      p.Diabetes.Level,
		"liver_score":         p.Liver.Score,
		"liver_level":         p.Liver.Level,
		"heart_score":         p.Heart.Score,
		"heart_level":         p.Heart.Level,
		"mental_health_score": p.MentalHealth.Score,
		"mental_health_level": p.MentalHealth.Level,
		"model_version":       p.ModelVersion,
		"predicted_at":        p.PredictedAt.Format(time.RFC3339),
	}
}
