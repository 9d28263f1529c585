package ml

import (
	"testing"
	"time"

	"medml-backend/internal/domain"

	"github.com/stretchr/testify/require"
)

func testPatient() *domain.Patient {
	return &domain.Patient{
		PatientID: "p-1",
		FullName:  "Test Patient",
		Age:       52,
		Gender:    "Male",
		HeightCM:  175,
		WeightKG:  80,
		CreatedAt: time.Now(),
	}
}

func TestPatientBMI(t *testing.T) {
	p := testPatient()
	bmi := p.BMI()
	require.NotNil(t, bmi)
	require.InDelta(t, 26.12, *bmi, 0.001) // 80 / 1.75^2, rounded to 2dp

	p.HeightCM = 0
	require.Nil(t, p.BMI())
	require.Zero(t, p.BMIValue())
}

func TestGenderEncoding(t *testing.T) {
	p := testPatient()
	require.Equal(t, 1.0, p.GenderBinary())

	p.Gender = "Female"
	require.Equal(t, 0.0, p.GenderBinary())

	p.Gender = "Other"
	require.Equal(t, 0.0, p.GenderBinary())
}

func TestAGRatio(t *testing.T) {
	a := &domain.LiverAssessment{TotalProteins: 7.0, Albumin: 4.0}
	require.InDelta(t, 1.33, a.AGRatio(), 0.001) // 4 / (7-4)

	// Globulin not positive: fall back instead of dividing
	a = &domain.LiverAssessment{TotalProteins: 4.0, Albumin: 4.0}
	require.Equal(t, 0.9, a.AGRatio())

	a = &domain.LiverAssessment{TotalProteins: 3.0, Albumin: 4.0}
	require.Equal(t, 0.9, a.AGRatio())
}

func TestFeatureNamesAndVectorsAlign(t *testing.T) {
	p := testPatient()

	vectors := []FeatureVector{
		DiabetesFeaturesFrom(&domain.DiabetesAssessment{Glucose: 120}, p),
		LiverFeaturesFrom(&domain.LiverAssessment{TotalProteins: 7, Albumin: 4}, p),
		HeartFeaturesFrom(&domain.HeartAssessment{SystolicBP: 120, DiastolicBP: 80, HDL: 50}, p),
		MentalHealthFeaturesFrom(&domain.MentalHealthAssessment{SleepQuality: 7}, p),
	}
	for _, fv := range vectors {
		require.Equal(t, FeatureNames(fv.Disease()), fv.Names(), fv.Disease())
		require.Len(t, fv.Vector(), len(fv.Names()), fv.Disease())
	}
	require.Nil(t, FeatureNames("unknown"))
}

func TestDiabetesDerivedFeatures(t *testing.T) {
	p := testPatient()
	a := &domain.DiabetesAssessment{
		Pregnancies:     3,
		Glucose:         150,
		BloodPressure:   85,
		DiabetesHistory: true,
	}
	f := DiabetesFeaturesFrom(a, p)

	require.Equal(t, 0.7, f.PedigreeScore) // 0.2 base + 0.4 history + 0.1 pregnancies>2
	require.Equal(t, 2.0, f.AgeGroup)      // 52 -> [45,60)
	require.Equal(t, 2.0, f.BMICategory)   // 26.12 -> [25,30)
	require.Equal(t, 1.0, f.GlucoseCategory)
	require.InDelta(t, 150*26.12, f.GlucoseXBMI, 0.01)
	require.InDelta(t, 52*150, f.AgeXGlucose, 0.001)
}

func TestHeartDerivedFeatures(t *testing.T) {
	p := testPatient()
	a := &domain.HeartAssessment{
		SystolicBP:    130,
		DiastolicBP:   85,
		Cholesterol:   200,
		HDL:           50,
		LDL:           120,
		Triglycerides: 150,
		StressLevel:   6,
		DietQuality:   4,
	}
	f := HeartFeaturesFrom(a, p)

	require.Equal(t, 45.0, f.PulsePressure)
	require.Equal(t, 4.0, f.CholHDLRatio)
	require.Equal(t, 2.4, f.LDLHDLRatio)
	require.Equal(t, 3.0, f.TrigHDLRatio)
	require.Equal(t, 24.0, f.StressXDiet)
	require.Equal(t, 52.0, f.AgeXGender) // male=1

	// Zero HDL must not divide
	a.HDL = 0
	f = HeartFeaturesFrom(a, p)
	require.Equal(t, 0.0, f.CholHDLRatio)
}

func TestHeartHeuristicScore(t *testing.T) {
	p := testPatient() // age 52, BMI 26.12

	// smoker (0.3) + family history (0.2) + age>50 (0.2) = 0.7
	f := HeartFeaturesFrom(&domain.HeartAssessment{
		SystolicBP: 120, DiastolicBP: 80, HDL: 50,
		Smoker: true, FamilyHistory: true,
	}, p)
	require.InDelta(t, 0.7, f.HeuristicScore(), 1e-9)

	// diabetes and hypertension together still contribute 0.3 once
	f = HeartFeaturesFrom(&domain.HeartAssessment{
		SystolicBP: 120, DiastolicBP: 80, HDL: 50,
		HasDiabetes: true, HasHypertension: true,
	}, p)
	require.InDelta(t, 0.5, f.HeuristicScore(), 1e-9) // 0.3 + age>50

	// everything on: capped at 1.0
	p.WeightKG = 120 // BMI >= 30
	f = HeartFeaturesFrom(&domain.HeartAssessment{
		SystolicBP: 120, DiastolicBP: 80, HDL: 50,
		HasDiabetes: true, Smoker: true, FamilyHistory: true, StressLevel: 8,
	}, p)
	require.InDelta(t, 1.0, f.HeuristicScore(), 1e-9)
}

func TestMentalHealthHeuristicScore(t *testing.T) {
	p := testPatient()
	f := MentalHealthFeaturesFrom(&domain.MentalHealthAssessment{
		PHQScore: 16, GADScore: 16, SleepQuality: 2,
		PriorDiagnosis: true, OnMedication: true,
	}, p)
	// 0.35 + 0.3 + 0.15 + 0.1 + 0.05
	require.InDelta(t, 0.95, f.HeuristicScore(), 1e-9)

	f = MentalHealthFeaturesFrom(&domain.MentalHealthAssessment{
		PHQScore: 4, GADScore: 3, SleepQuality: 8,
	}, p)
	require.Zero(t, f.HeuristicScore())
}

func TestLiverHeuristicScore(t *testing.T) {
	p := testPatient()
	f := LiverFeaturesFrom(&domain.LiverAssessment{
		TotalBilirubin:            2.1,
		AlamineAminotransferase:   80,
		AspartateAminotransferase: 70,
		AlkalinePhosphotase:       200,
		TotalProteins:             6.0,
		Albumin:                   2.5, // A/G = 2.5/3.5 < 1.0
	}, p)
	// 0.25 + 0.2 + 0.2 + 0.15 + 0.2
	require.InDelta(t, 1.0, f.HeuristicScore(), 1e-9)
}
