package ml

import (
	"testing"

	"medml-backend/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPredictWithoutLoadedModel(t *testing.T) {
	registry := LoadRegistry(t.TempDir(), zap.NewNop())
	inv := NewInvoker(registry, zap.NewNop())

	p := testPatient()
	fv := HeartFeaturesFrom(&domain.HeartAssessment{SystolicBP: 120, DiastolicBP: 80, HDL: 50}, p)

	_, err := inv.Predict(fv)
	require.ErrorIs(t, err, ErrModelUnavailable)
}

func TestPredictDegradesToHeuristicOnSchemaMismatch(t *testing.T) {
	p := testPatient()
	fv := HeartFeaturesFrom(&domain.HeartAssessment{
		SystolicBP: 150, DiastolicBP: 95, HDL: 40,
		Smoker: true, StressLevel: 7,
	}, p)

	// Descriptor trained against a different feature order than the mapper
	// produces. The call must degrade, not score on a scrambled vector.
	stale := append([]string{}, fv.Names()...)
	stale[0], stale[1] = stale[1], stale[0]
	registry := &Registry{entries: map[string]*Entry{
		domain.DiseaseHeart: {Disease: domain.DiseaseHeart, Features: stale},
	}}
	inv := NewInvoker(registry, zap.NewNop())

	out, err := inv.Predict(fv)
	require.NoError(t, err)
	require.Equal(t, SourceHeuristic, out.Source)
	require.Equal(t, fv.HeuristicScore(), out.Score)
}

func TestPredictDegradesToHeuristicOnClassifierPanic(t *testing.T) {
	p := testPatient()
	fv := DiabetesFeaturesFrom(&domain.DiabetesAssessment{
		Glucose: 160, BloodPressure: 90, DiabetesHistory: true,
	}, p)

	// Matching schema but no usable ensemble: the classifier call panics
	// inside invokeModel and must be recovered into the fallback.
	registry := &Registry{entries: map[string]*Entry{
		domain.DiseaseDiabetes: {Disease: domain.DiseaseDiabetes, Features: fv.Names()},
	}}
	inv := NewInvoker(registry, zap.NewNop())

	out, err := inv.Predict(fv)
	require.NoError(t, err)
	require.Equal(t, SourceHeuristic, out.Source)
	require.Equal(t, fv.HeuristicScore(), out.Score)
}

func TestHeuristicScoresAreDeterministic(t *testing.T) {
	p := testPatient()
	assessment := &domain.HeartAssessment{
		SystolicBP: 140, DiastolicBP: 90, HDL: 45,
		Smoker: true, StressLevel: 7,
	}
	first := HeartFeaturesFrom(assessment, p).HeuristicScore()
	for i := 0; i < 10; i++ {
		require.Equal(t, first, HeartFeaturesFrom(assessment, p).HeuristicScore())
	}
}

func TestHeuristicScoresStayInRange(t *testing.T) {
	p := testPatient()
	vectors := []FeatureVector{
		DiabetesFeaturesFrom(&domain.DiabetesAssessment{
			Pregnancies: 5, Glucose: 250, BloodPressure: 110, DiabetesHistory: true,
		}, p),
		LiverFeaturesFrom(&domain.LiverAssessment{
			TotalBilirubin: 5, AlamineAminotransferase: 300,
			AspartateAminotransferase: 280, AlkalinePhosphotase: 400,
			TotalProteins: 5, Albumin: 2,
		}, p),
		MentalHealthFeaturesFrom(&domain.MentalHealthAssessment{
			PHQScore: 27, GADScore: 21, SleepQuality: 1,
			PriorDiagnosis: true, OnMedication: true,
		}, p),
	}
	for _, fv := range vectors {
		score := fv.HeuristicScore()
		require.GreaterOrEqual(t, score, 0.0, fv.Disease())
		require.LessOrEqual(t, score, 1.0, fv.Disease())
	}
}
