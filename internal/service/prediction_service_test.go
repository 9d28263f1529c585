package service

import (
	"context"
	"testing"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/ml"
	"medml-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoker struct {
	scores map[string]float64 // disease -> score
	errs   map[string]error
}

func (f *fakeInvoker) Predict(fv ml.FeatureVector) (ml.Outcome, error) {
	if err, ok := f.errs[fv.Disease()]; ok {
		return ml.Outcome{}, err
	}
	score, ok := f.scores[fv.Disease()]
	if !ok {
		return ml.Outcome{}, ml.ErrModelUnavailable
	}
	return ml.Outcome{Score: score, Source: ml.SourceModel}, nil
}

type staticThresholds struct{}

func (staticThresholds) RiskThresholds() (float64, float64) { return 0.35, 0.70 }

type predictionFixture struct {
	patients    *repository.MemoryPatientsRepo
	assessments *repository.MemoryAssessmentsRepo
	predictions *repository.MemoryPredictionsRepo
	invoker     *fakeInvoker
	svc         PredictionService
	patientID   string
}

func newPredictionFixture(t *testing.T) *predictionFixture {
	t.Helper()
	f := &predictionFixture{
		patients:    repository.NewMemoryPatientsRepo(),
		assessments: repository.NewMemoryAssessmentsRepo(),
		predictions: repository.NewMemoryPredictionsRepo(),
		invoker:     &fakeInvoker{scores: map[string]float64{}, errs: map[string]error{}},
	}
	f.svc = NewPredictionService(f.patients, f.assessments, f.predictions,
		f.invoker, ml.NewCategorizer(staticThresholds{}), "v1.0", zap.NewNop())

	f.patientID = uuid.NewString()
	require.NoError(t, f.patients.CreatePatient(context.Background(), &domain.Patient{
		PatientID: f.patientID,
		FullName:  "Test Patient",
		Age:       52,
		Gender:    "Male",
		HeightCM:  175,
		WeightKG:  80,
		AbhaID:    "ABHA-0001",
		CreatedAt: time.Now(),
	}))
	return f
}

func (f *predictionFixture) addAllAssessments(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.assessments.CreateDiabetes(ctx, &domain.DiabetesAssessment{
		AssessmentID: uuid.NewString(), PatientID: f.patientID,
		Glucose: 150, BloodPressure: 85, AssessedAt: time.Now(),
	}))
	require.NoError(t, f.assessments.CreateLiver(ctx, &domain.LiverAssessment{
		AssessmentID: uuid.NewString(), PatientID: f.patientID,
		TotalProteins: 7, Albumin: 4, AssessedAt: time.Now(),
	}))
	require.NoError(t, f.assessments.CreateHeart(ctx, &domain.HeartAssessment{
		AssessmentID: uuid.NewString(), PatientID: f.patientID,
		SystolicBP: 130, DiastolicBP: 85, HDL: 50, AssessedAt: time.Now(),
	}))
	require.NoError(t, f.assessments.CreateMentalHealth(ctx, &domain.MentalHealthAssessment{
		AssessmentID: uuid.NewString(), PatientID: f.patientID,
		PHQScore: 8, GADScore: 6, SleepQuality: 6, AssessedAt: time.Now(),
	}))
}

func TestRunForPatientAllDiseases(t *testing.T) {
	f := newPredictionFixture(t)
	f.addAllAssessments(t)
	f.invoker.scores = map[string]float64{
		domain.DiseaseDiabetes:     0.82,
		domain.DiseaseLiver:        0.10,
		domain.DiseaseHeart:        0.50,
		domain.DiseaseMentalHealth: 0.35,
	}

	snapshot, err := f.svc.RunForPatient(context.Background(), f.patientID)
	require.NoError(t, err)
	require.Equal(t, "v1.0", snapshot.ModelVersion)

	require.Equal(t, 0.82, *snapshot.Diabetes.Score)
	require.Equal(t, domain.RiskHigh, *snapshot.Diabetes.Level)
	require.Equal(t, domain.RiskLow, *snapshot.Liver.Level)
	require.Equal(t, domain.RiskMedium, *snapshot.Heart.Level)
	require.Equal(t, domain.RiskMedium, *snapshot.MentalHealth.Level) // inclusive bound

	stored, err := f.predictions.LatestPrediction(context.Background(), f.patientID)
	require.NoError(t, err)
	require.Equal(t, snapshot.PredictionID, stored.PredictionID)
}

func TestRunForPatientPartialFailure(t *testing.T) {
	f := newPredictionFixture(t)
	ctx := context.Background()

	// Only a diabetes assessment exists; heart model is missing entirely.
	require.NoError(t, f.assessments.CreateDiabetes(ctx, &domain.DiabetesAssessment{
		AssessmentID: uuid.NewString(), PatientID: f.patientID,
		Glucose: 120, AssessedAt: time.Now(),
	}))
	f.invoker.scores = map[string]float64{domain.DiseaseDiabetes: 0.4}

	snapshot, err := f.svc.RunForPatient(ctx, f.patientID)
	require.NoError(t, err)

	require.NotNil(t, snapshot.Diabetes.Score)
	require.Nil(t, snapshot.Liver.Score)
	require.Nil(t, snapshot.Liver.Level)
	require.Nil(t, snapshot.Heart.Score)
	require.Nil(t, snapshot.MentalHealth.Score)
}

func TestRunForPatientUnknownPatient(t *testing.T) {
	f := newPredictionFixture(t)
	_, err := f.svc.RunForPatient(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, domain.ErrPatientNotFound)

	// Nothing was persisted
	history, err := f.predictions.ListPredictions(context.Background(), f.patientID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestRunsAreAppendOnly(t *testing.T) {
	f := newPredictionFixture(t)
	f.addAllAssessments(t)
	f.invoker.scores = map[string]float64{
		domain.DiseaseDiabetes:     0.2,
		domain.DiseaseLiver:        0.2,
		domain.DiseaseHeart:        0.2,
		domain.DiseaseMentalHealth: 0.2,
	}
	ctx := context.Background()

	first, err := f.svc.RunForPatient(ctx, f.patientID)
	require.NoError(t, err)
	second, err := f.svc.RunForPatient(ctx, f.patientID)
	require.NoError(t, err)
	require.NotEqual(t, first.PredictionID, second.PredictionID)

	history, err := f.svc.ListPredictions(ctx, f.patientID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestRunForDiseaseCarriesForwardOtherResults(t *testing.T) {
	f := newPredictionFixture(t)
	f.addAllAssessments(t)
	f.invoker.scores = map[string]float64{
		domain.DiseaseDiabetes:     0.80,
		domain.DiseaseLiver:        0.10,
		domain.DiseaseHeart:        0.50,
		domain.DiseaseMentalHealth: 0.20,
	}
	ctx := context.Background()

	_, err := f.svc.RunForPatient(ctx, f.patientID)
	require.NoError(t, err)

	// Re-run only diabetes with a lower score.
	f.invoker.scores[domain.DiseaseDiabetes] = 0.10
	snapshot, err := f.svc.RunForDisease(ctx, f.patientID, domain.DiseaseDiabetes)
	require.NoError(t, err)

	require.Equal(t, 0.10, *snapshot.Diabetes.Score)
	require.Equal(t, domain.RiskLow, *snapshot.Diabetes.Level)
	// Other slots keep the previous run's values.
	require.Equal(t, 0.50, *snapshot.Heart.Score)
	require.Equal(t, domain.RiskMedium, *snapshot.Heart.Level)
	require.Equal(t, 0.10, *snapshot.Liver.Score)
	require.Equal(t, 0.20, *snapshot.MentalHealth.Score)
}

func TestRunForDiseaseRejectsUnknownKey(t *testing.T) {
	f := newPredictionFixture(t)
	_, err := f.svc.RunForDisease(context.Background(), f.patientID, "kidney")
	require.Error(t, err)
}

func TestModelUnavailableYieldsNullSlot(t *testing.T) {
	f := newPredictionFixture(t)
	f.addAllAssessments(t)
	// No scores configured at all: every Predict returns ErrModelUnavailable.
	snapshot, err := f.svc.RunForPatient(context.Background(), f.patientID)
	require.NoError(t, err)
	for _, d := range domain.Diseases {
		res := snapshot.Result(d)
		require.Nil(t, res.Score, d)
		require.Nil(t, res.Level, d)
	}
}
