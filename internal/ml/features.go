package ml

import (
	"medml-backend/internal/domain"
)

// FeatureVector is one disease's model input, produced by the per-disease
// builders below. Names() and Vector() are index-aligned and must match
// the order the classifier was trained on: the numeric layer matches
// positionally, so a reordering corrupts predictions without any error.
// The registry validates Names() against each model's descriptor.
type FeatureVector interface {
	Disease() string
	Names() []string
	Vector() []float64
	// HeuristicScore is the deterministic rule-based fallback used when
	// the classifier call fails. Always in [0,1].
	HeuristicScore() float64
}

const obeseBMI = 30.0

// FeatureNames returns the canonical feature order for a disease key, used
// by the registry to validate model descriptors at load time.
func FeatureNames(disease string) []string {
	switch disease {
	case domain.DiseaseDiabetes:
		return diabetesFeatureNames
	case domain.DiseaseLiver:
		return liverFeatureNames
	case domain.DiseaseHeart:
		return heartFeatureNames
	case domain.DiseaseMentalHealth:
		return mentalHealthFeatureNames
	}
	return nil
}

// ---- Diabetes ----

var diabetesFeatureNames = []string{
	"pregnancies", "glucose", "blood_pressure", "skin_thickness", "insulin",
	"pedigree_score", "age", "bmi",
	"age_group", "bmi_category", "glucose_category",
	"glucose_x_bmi", "age_x_glucose",
}

type DiabetesFeatures struct {
	Pregnancies     float64
	Glucose         float64
	BloodPressure   float64
	SkinThickness   float64
	Insulin         float64
	PedigreeScore   float64
	Age             float64
	BMI             float64
	AgeGroup        float64
	BMICategory     float64
	GlucoseCategory float64
	GlucoseXBMI     float64
	AgeXGlucose     float64

	history bool
}

func DiabetesFeaturesFrom(a *domain.DiabetesAssessment, p *domain.Patient) *DiabetesFeatures {
	bmi := p.BMIValue()
	return &DiabetesFeatures{
		Pregnancies:     float64(a.Pregnancies),
		Glucose:         a.Glucose,
		BloodPressure:   a.BloodPressure,
		SkinThickness:   a.SkinThickness,
		Insulin:         a.Insulin,
		PedigreeScore:   pedigreeScore(a.DiabetesHistory, a.Pregnancies),
		Age:             float64(p.Age),
		BMI:             bmi,
		AgeGroup:        ageGroup(p.Age),
		BMICategory:     bmiCategory(bmi),
		GlucoseCategory: glucoseCategory(a.Glucose),
		GlucoseXBMI:     a.Glucose * bmi,
		AgeXGlucose:     float64(p.Age) * a.Glucose,
		history:         a.DiabetesHistory,
	}
}

// pedigreeScore is a simplified stand-in for the PIMA pedigree function:
// family history dominates, repeated pregnancies add a small weight.
func pedigreeScore(history bool, pregnancies int) float64 {
	score := 0.2
	if history {
		score += 0.4
	}
	if pregnancies > 2 {
		score += 0.1
	}
	return score
}

func ageGroup(age int) float64 {
	switch {
	case age < 30:
		return 0
	case age < 45:
		return 1
	case age < 60:
		return 2
	default:
		return 3
	}
}

func bmiCategory(bmi float64) float64 {
	switch {
	case bmi < 18.5:
		return 0
	case bmi < 25:
		return 1
	case bmi < obeseBMI:
		return 2
	default:
		return 3
	}
}

// glucoseCategory buckets a 2-hour plasma glucose reading: normal,
// prediabetic, diabetic.
func glucoseCategory(glucose float64) float64 {
	switch {
	case glucose < 140:
		return 0
	case glucose < 200:
		return 1
	default:
		return 2
	}
}

func (f *DiabetesFeatures) Disease() string { return domain.DiseaseDiabetes }
func (f *DiabetesFeatures) Names() []string { return diabetesFeatureNames }

func (f *DiabetesFeatures) Vector() []float64 {
	return []float64{
		f.Pregnancies, f.Glucose, f.BloodPressure, f.SkinThickness, f.Insulin,
		f.PedigreeScore, f.Age, f.BMI,
		f.AgeGroup, f.BMICategory, f.GlucoseCategory,
		f.GlucoseXBMI, f.AgeXGlucose,
	}
}

func (f *DiabetesFeatures) HeuristicScore() float64 {
	score := 0.0
	if f.Glucose >= 140 {
		score += 0.3
	}
	if f.BMI >= obeseBMI {
		score += 0.2
	}
	if f.history {
		score += 0.2
	}
	if f.Age > 45 {
		score += 0.15
	}
	if f.BloodPressure >= 90 {
		score += 0.1
	}
	if f.Pregnancies > 0 {
		score += 0.05
	}
	return clamp01(score)
}

// ---- Liver ----

var liverFeatureNames = []string{
	"age", "gender", "total_bilirubin", "direct_bilirubin",
	"alkaline_phosphotase", "alamine_aminotransferase",
	"aspartate_aminotransferase", "total_proteins", "albumin", "ag_ratio",
}

type LiverFeatures struct {
	Age                       float64
	Gender                    float64
	TotalBilirubin            float64
	DirectBilirubin           float64
	AlkalinePhosphotase       float64
	AlamineAminotransferase   float64
	AspartateAminotransferase float64
	TotalProteins             float64
	Albumin                   float64
	AGRatio                   float64
}

func LiverFeaturesFrom(a *domain.LiverAssessment, p *domain.Patient) *LiverFeatures {
	return &LiverFeatures{
		Age:                       float64(p.Age),
		Gender:                    p.GenderBinary(),
		TotalBilirubin:            a.TotalBilirubin,
		DirectBilirubin:           a.DirectBilirubin,
		AlkalinePhosphotase:       a.AlkalinePhosphotase,
		AlamineAminotransferase:   a.AlamineAminotransferase,
		AspartateAminotransferase: a.AspartateAminotransferase,
		TotalProteins:             a.TotalProteins,
		Albumin:                   a.Albumin,
		AGRatio:                   a.AGRatio(),
	}
}

func (f *LiverFeatures) Disease() string { return domain.DiseaseLiver }
func (f *LiverFeatures) Names() []string { return liverFeatureNames }

func (f *LiverFeatures) Vector() []float64 {
	return []float64{
		f.Age, f.Gender, f.TotalBilirubin, f.DirectBilirubin,
		f.AlkalinePhosphotase, f.AlamineAminotransferase,
		f.AspartateAminotransferase, f.TotalProteins, f.Albumin, f.AGRatio,
	}
}

func (f *LiverFeatures) HeuristicScore() float64 {
	score := 0.0
	if f.TotalBilirubin > 1.2 {
		score += 0.25
	}
	if f.AlamineAminotransferase > 40 {
		score += 0.2
	}
	if f.AspartateAminotransferase > 40 {
		score += 0.2
	}
	if f.AlkalinePhosphotase > 120 {
		score += 0.15
	}
	if f.AGRatio < 1.0 {
		score += 0.2
	}
	return clamp01(score)
}

// ---- Heart ----

var heartFeatureNames = []string{
	"age", "gender", "bmi",
	"systolic_bp", "diastolic_bp", "pulse_pressure",
	"cholesterol", "hdl", "ldl", "triglycerides",
	"chol_hdl_ratio", "ldl_hdl_ratio", "trig_hdl_ratio",
	"has_diabetes", "has_hypertension", "smoker", "family_history",
	"stress_level", "diet_quality",
	"age_x_bmi", "stress_x_diet", "age_x_gender",
}

type HeartFeatures struct {
	Age             float64
	Gender          float64
	BMI             float64
	SystolicBP      float64
	DiastolicBP     float64
	PulsePressure   float64
	Cholesterol     float64
	HDL             float64
	LDL             float64
	Triglycerides   float64
	CholHDLRatio    float64
	LDLHDLRatio     float64
	TrigHDLRatio    float64
	HasDiabetes     float64
	HasHypertension float64
	Smoker          float64
	FamilyHistory   float64
	StressLevel     float64
	DietQuality     float64
	AgeXBMI         float64
	StressXDiet     float64
	AgeXGender      float64
}

func HeartFeaturesFrom(a *domain.HeartAssessment, p *domain.Patient) *HeartFeatures {
	bmi := p.BMIValue()
	gender := p.GenderBinary()
	f := &HeartFeatures{
		Age:             float64(p.Age),
		Gender:          gender,
		BMI:             bmi,
		SystolicBP:      a.SystolicBP,
		DiastolicBP:     a.DiastolicBP,
		PulsePressure:   a.SystolicBP - a.DiastolicBP,
		Cholesterol:     a.Cholesterol,
		HDL:             a.HDL,
		LDL:             a.LDL,
		Triglycerides:   a.Triglycerides,
		HasDiabetes:     boolFeature(a.HasDiabetes),
		HasHypertension: boolFeature(a.HasHypertension),
		Smoker:          boolFeature(a.Smoker),
		FamilyHistory:   boolFeature(a.FamilyHistory),
		StressLevel:     float64(a.StressLevel),
		DietQuality:     float64(a.DietQuality),
		AgeXBMI:         float64(p.Age) * bmi,
		StressXDiet:     float64(a.StressLevel) * float64(a.DietQuality),
		AgeXGender:      float64(p.Age) * gender,
	}
	f.CholHDLRatio = safeRatio(a.Cholesterol, a.HDL)
	f.LDLHDLRatio = safeRatio(a.LDL, a.HDL)
	f.TrigHDLRatio = safeRatio(a.Triglycerides, a.HDL)
	return f
}

func (f *HeartFeatures) Disease() string { return domain.DiseaseHeart }
func (f *HeartFeatures) Names() []string { return heartFeatureNames }

func (f *HeartFeatures) Vector() []float64 {
	return []float64{
		f.Age, f.Gender, f.BMI,
		f.SystolicBP, f.DiastolicBP, f.PulsePressure,
		f.Cholesterol, f.HDL, f.LDL, f.Triglycerides,
		f.CholHDLRatio, f.LDLHDLRatio, f.TrigHDLRatio,
		f.HasDiabetes, f.HasHypertension, f.Smoker, f.FamilyHistory,
		f.StressLevel, f.DietQuality,
		f.AgeXBMI, f.StressXDiet, f.AgeXGender,
	}
}

func (f *HeartFeatures) HeuristicScore() float64 {
	score := 0.0
	if f.HasDiabetes == 1 || f.HasHypertension == 1 || f.Smoker == 1 {
		score += 0.3
	}
	if f.BMI >= obeseBMI {
		score += 0.2
	}
	if f.FamilyHistory == 1 {
		score += 0.2
	}
	if f.Age > 50 {
		score += 0.2
	}
	if f.StressLevel > 5 {
		score += 0.1
	}
	return clamp01(score)
}

// ---- Mental health ----

var mentalHealthFeatureNames = []string{
	"age", "phq_score", "gad_score", "sleep_quality",
	"prior_diagnosis", "on_medication",
}

type MentalHealthFeatures struct {
	Age            float64
	PHQScore       float64
	GADScore       float64
	SleepQuality   float64
	PriorDiagnosis float64
	OnMedication   float64
}

func MentalHealthFeaturesFrom(a *domain.MentalHealthAssessment, p *domain.Patient) *MentalHealthFeatures {
	return &MentalHealthFeatures{
		Age:            float64(p.Age),
		PHQScore:       float64(a.PHQScore),
		GADScore:       float64(a.GADScore),
		SleepQuality:   float64(a.SleepQuality),
		PriorDiagnosis: boolFeature(a.PriorDiagnosis),
		OnMedication:   boolFeature(a.OnMedication),
	}
}

func (f *MentalHealthFeatures) Disease() string { return domain.DiseaseMentalHealth }
func (f *MentalHealthFeatures) Names() []string { return mentalHealthFeatureNames }

func (f *MentalHealthFeatures) Vector() []float64 {
	return []float64{
		f.Age, f.PHQScore, f.GADScore, f.SleepQuality,
		f.PriorDiagnosis, f.OnMedication,
	}
}

func (f *MentalHealthFeatures) HeuristicScore() float64 {
	score := 0.0
	switch {
	case f.PHQScore >= 15:
		score += 0.35
	case f.PHQScore >= 10:
		score += 0.2
	}
	switch {
	case f.GADScore >= 15:
		score += 0.3
	case f.GADScore >= 10:
		score += 0.15
	}
	if f.SleepQuality <= 3 {
		score += 0.15
	}
	if f.PriorDiagnosis == 1 {
		score += 0.1
	}
	if f.OnMedication == 1 {
		score += 0.05
	}
	return clamp01(score)
}

// ---- helpers ----

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
