package domain

import (
	"math"
	"time"
)

// Assessments are append-only: every submission creates a new row and the
// latest one (by assessed_at) is what predictions run against.

// DiabetesAssessment PIMA-style clinical inputs
type DiabetesAssessment struct {
	AssessmentID     string    `json:"assessment_id"`
	PatientID        string    `json:"patient_id"`
	Pregnancies      int       `json:"pregnancies"`
	Glucose          float64   `json:"glucose"`
	BloodPressure    float64   `json:"blood_pressure"`
	SkinThickness    float64   `json:"skin_thickness"`
	Insulin          float64   `json:"insulin"`
	DiabetesHistory  bool      `json:"diabetes_history"` // family history of diabetes
	AssessedByUserID string    `json:"assessed_by_user_id,omitempty"`
	AssessedAt       time.Time `json:"assessed_at"`
}

// LiverAssessment Indian Liver Patient Dataset panel
type LiverAssessment struct {
	AssessmentID              string    `json:"assessment_id"`
	PatientID                 string    `json:"patient_id"`
	TotalBilirubin            float64   `json:"total_bilirubin"`
	DirectBilirubin           float64   `json:"direct_bilirubin"`
	AlkalinePhosphotase       float64   `json:"alkaline_phosphotase"`
	AlamineAminotransferase   float64   `json:"alamine_aminotransferase"`
	AspartateAminotransferase float64   `json:"aspartate_aminotransferase"`
	TotalProteins             float64   `json:"total_proteins"`
	Albumin                   float64   `json:"albumin"`
	AssessedByUserID          string    `json:"assessed_by_user_id,omitempty"`
	AssessedAt                time.Time `json:"assessed_at"`
}

// agRatioFallback is used when globulin (total protein - albumin) is not
// positive, which would otherwise make the ratio undefined.
const agRatioFallback = 0.9

// AGRatio derives the albumin/globulin ratio from the protein panel.
// Globulin is total protein minus albumin; a zero or negative globulin
// falls back to the documented placeholder instead of dividing.
func (a *LiverAssessment) AGRatio() float64 {
	globulin := a.TotalProteins - a.Albumin
	if globulin <= 0 {
		return agRatioFallback
	}
	return math.Round(a.Albumin/globulin*100) / 100
}

// HeartAssessment lifestyle risk factors + lipid panel + blood pressure pair
type HeartAssessment struct {
	AssessmentID     string    `json:"assessment_id"`
	PatientID        string    `json:"patient_id"`
	SystolicBP       float64   `json:"systolic_bp"`
	DiastolicBP      float64   `json:"diastolic_bp"`
	Cholesterol      float64   `json:"cholesterol"`
	HDL              float64   `json:"hdl"`
	LDL              float64   `json:"ldl"`
	Triglycerides    float64   `json:"triglycerides"`
	HasDiabetes      bool      `json:"has_diabetes"`
	HasHypertension  bool      `json:"has_hypertension"`
	Smoker           bool      `json:"smoker"`
	FamilyHistory    bool      `json:"family_history"`
	StressLevel      int       `json:"stress_level"` // 0-10
	DietQuality      int       `json:"diet_quality"` // 0-10, higher is better
	AssessedByUserID string    `json:"assessed_by_user_id,omitempty"`
	AssessedAt       time.Time `json:"assessed_at"`
}

// MentalHealthAssessment PHQ-9 / GAD-7 questionnaire scores
type MentalHealthAssessment struct {
	AssessmentID     string    `json:"assessment_id"`
	PatientID        string    `json:"patient_id"`
	PHQScore         int       `json:"phq_score"`     // 0-27
	GADScore         int       `json:"gad_score"`     // 0-21
	SleepQuality     int       `json:"sleep_quality"` // 1-10, higher is better
	PriorDiagnosis   bool      `json:"prior_diagnosis"`
	OnMedication     bool      `json:"on_medication"`
	MoodFactors      string    `json:"mood_factors,omitempty"`
	AssessedByUserID string    `json:"assessed_by_user_id,omitempty"`
	AssessedAt       time.Time `json:"assessed_at"`
}
