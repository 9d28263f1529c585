package domain

import (
	"math"
	"time"
)

// Patient 患者记录（demographics + login）
type Patient struct {
	PatientID       string    `json:"patient_id"`
	FullName        string    `json:"full_name"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"` // "Male" / "Female" / "Other"
	HeightCM        float64   `json:"height_cm"`
	WeightKG        float64   `json:"weight_kg"`
	AbhaID          string    `json:"abha_id"`
	PasswordHash    string    `json:"-"`
	StateName       string    `json:"state_name,omitempty"`
	CreatedByUserID string    `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// BMI is always recomputed from height/weight, never stored.
// Returns nil when height is not positive.
func (p *Patient) BMI() *float64 {
	if p.HeightCM <= 0 || p.WeightKG <= 0 {
		return nil
	}
	heightM := p.HeightCM / 100.0
	bmi := math.Round(p.WeightKG/(heightM*heightM)*100) / 100
	return &bmi
}

// BMIValue returns the BMI or 0 when it cannot be computed.
func (p *Patient) BMIValue() float64 {
	if v := p.BMI(); v != nil {
		return *v
	}
	return 0
}

// GenderBinary encodes gender the way every model was trained: male=1.
func (p *Patient) GenderBinary() float64 {
	if p.Gender == "Male" || p.Gender == "male" {
		return 1
	}
	return 0
}

func (p *Patient) ToJSON() map[string]any {
	m := map[string]any{
		"patient_id":         p.PatientID,
		"full_name":          p.FullName,
		"age":                p.Age,
		"gender":             p.Gender,
		"height_cm":          p.HeightCM,
		"weight_kg":          p.WeightKG,
		"abha_id":            p.AbhaID,
		"state_name":         p.StateName,
		"created_by_user_id": p.CreatedByUserID,
		"created_at":         p.CreatedAt.Format(time.RFC3339),
	}
	if bmi := p.BMI(); bmi != nil {
		m["bmi"] = *bmi
	} else {
		m["bmi"] = nil
	}
	return m
}
