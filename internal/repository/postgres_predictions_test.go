package repository

import (
	"context"
	"testing"
	"time"

	"medml-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newPredictionsRepoMock(t *testing.T) (*PostgresPredictionsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresPredictionsRepository(db), mock
}

func TestCreatePredictionSingleInsert(t *testing.T) {
	repo, mock := newPredictionsRepoMock(t)

	score := 0.82
	level := domain.RiskHigh
	p := &domain.RiskPrediction{
		PredictionID: "11111111-1111-1111-1111-111111111111",
		PatientID:    "22222222-2222-2222-2222-222222222222",
		Diabetes:     domain.DiseaseResult{Score: &score, Level: &level},
		ModelVersion: "v1.0",
		PredictedAt:  time.Now(),
	}

	mock.ExpectExec(`INSERT INTO risk_predictions`).
		WithArgs(p.PredictionID, p.PatientID,
			&score, &level, // diabetes
			nil, nil, // liver stays null
			nil, nil, // heart stays null
			nil, nil, // mental health stays null
			"v1.0", p.PredictedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreatePrediction(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestPredictionNoRows(t *testing.T) {
	repo, mock := newPredictionsRepoMock(t)

	mock.ExpectQuery(`FROM risk_predictions`).
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"prediction_id", "patient_id",
			"diabetes_score", "diabetes_level",
			"liver_score", "liver_level",
			"heart_score", "heart_level",
			"mental_health_score", "mental_health_level",
			"model_version", "predicted_at",
		}))

	p, err := repo.LatestPrediction(context.Background(), "patient-1")
	require.NoError(t, err)
	require.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestPredictionScansNullSlots(t *testing.T) {
	repo, mock := newPredictionsRepoMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"prediction_id", "patient_id",
		"diabetes_score", "diabetes_level",
		"liver_score", "liver_level",
		"heart_score", "heart_level",
		"mental_health_score", "mental_health_level",
		"model_version", "predicted_at",
	}).AddRow("pred-1", "patient-1",
		0.82, "High",
		nil, nil,
		0.41, "Medium",
		nil, nil,
		"v1.0", now)

	mock.ExpectQuery(`FROM risk_predictions`).
		WithArgs("patient-1").
		WillReturnRows(rows)

	p, err := repo.LatestPrediction(context.Background(), "patient-1")
	require.NoError(t, err)
	require.Equal(t, "pred-1", p.PredictionID)
	require.Equal(t, 0.82, *p.Diabetes.Score)
	require.Equal(t, domain.RiskHigh, *p.Diabetes.Level)
	require.Nil(t, p.Liver.Score)
	require.Nil(t, p.MentalHealth.Level)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountHighRiskPatients(t *testing.T) {
	repo, mock := newPredictionsRepoMock(t)

	mock.ExpectQuery(`WITH latest AS`).
		WillReturnRows(sqlmock.NewRows([]string{"d", "l", "h", "m"}).AddRow(3, 1, 0, 2))

	counts, err := repo.CountHighRiskPatients(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, counts[domain.DiseaseDiabetes])
	require.Equal(t, 1, counts[domain.DiseaseLiver])
	require.Equal(t, 0, counts[domain.DiseaseHeart])
	require.Equal(t, 2, counts[domain.DiseaseMentalHealth])
	require.NoError(t, mock.ExpectationsWereMet())
}
