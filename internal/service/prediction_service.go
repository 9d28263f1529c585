package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/ml"
	"medml-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invoker 预测调用接口（用于测试和扩展）
type Invoker interface {
	Predict(fv ml.FeatureVector) (ml.Outcome, error)
}

// PredictionService orchestrates the risk pipeline: latest assessment →
// feature mapping → classifier (or fallback) → categorization → one new
// immutable snapshot row.
type PredictionService interface {
	// RunForPatient evaluates all four diseases and persists one snapshot.
	// A disease with no assessment or no loaded model stays null in the
	// snapshot; the run itself only fails on patient lookup or storage.
	RunForPatient(ctx context.Context, patientID string) (*domain.RiskPrediction, error)

	// RunForDisease evaluates a single disease and persists a snapshot
	// that carries forward the other diseases' latest values.
	RunForDisease(ctx context.Context, patientID, disease string) (*domain.RiskPrediction, error)

	LatestPrediction(ctx context.Context, patientID string) (*domain.RiskPrediction, error)
	ListPredictions(ctx context.Context, patientID string) ([]*domain.RiskPrediction, error)
}

type predictionService struct {
	patients     repository.PatientsRepository
	assessments  repository.AssessmentsRepository
	predictions  repository.PredictionsRepository
	invoker      Invoker
	categorizer  *ml.Categorizer
	modelVersion string
	logger       *zap.Logger
}

func NewPredictionService(
	patients repository.PatientsRepository,
	assessments repository.AssessmentsRepository,
	predictions repository.PredictionsRepository,
	invoker Invoker,
	categorizer *ml.Categorizer,
	modelVersion string,
	logger *zap.Logger,
) PredictionService {
	return &predictionService{
		patients:     patients,
		assessments:  assessments,
		predictions:  predictions,
		invoker:      invoker,
		categorizer:  categorizer,
		modelVersion: modelVersion,
		logger:       logger,
	}
}

func (s *predictionService) RunForPatient(ctx context.Context, patientID string) (*domain.RiskPrediction, error) {
	return s.run(ctx, patientID, domain.Diseases, false)
}

func (s *predictionService) RunForDisease(ctx context.Context, patientID, disease string) (*domain.RiskPrediction, error) {
	if !domain.ValidDisease(disease) {
		return nil, fmt.Errorf("unknown disease key %q", disease)
	}
	return s.run(ctx, patientID, []string{disease}, true)
}

func (s *predictionService) run(ctx context.Context, patientID string, diseases []string, carryForward bool) (*domain.RiskPrediction, error) {
	patient, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.RiskPrediction{
		PredictionID: uuid.NewString(),
		PatientID:    patientID,
		ModelVersion: s.modelVersion,
		PredictedAt:  time.Now().UTC(),
	}

	// A single-disease run keeps the latest values of the other diseases
	// so the newest row stays a complete picture of the patient.
	if carryForward {
		prev, err := s.predictions.LatestPrediction(ctx, patientID)
		if err != nil {
			return nil, &domain.StorageError{Op: "load latest prediction", Err: err}
		}
		if prev != nil {
			for _, d := range domain.Diseases {
				if !contains(diseases, d) {
					res := prev.Result(d)
					if res.Score != nil && res.Level != nil {
						snapshot.SetResult(d, *res.Score, *res.Level)
					}
				}
			}
		}
	}

	for _, disease := range diseases {
		s.runDisease(ctx, disease, patient, snapshot)
	}

	if err := s.predictions.CreatePrediction(ctx, snapshot); err != nil {
		return nil, &domain.StorageError{Op: "create prediction", Err: err}
	}
	s.logger.Info("risk prediction recorded",
		zap.String("patient_id", patientID),
		zap.String("prediction_id", snapshot.PredictionID),
		zap.Strings("diseases", diseases))
	return snapshot, nil
}

// runDisease fills one snapshot slot. Every per-disease failure mode is
// absorbed here: the slot stays null and the run continues.
func (s *predictionService) runDisease(ctx context.Context, disease string, patient *domain.Patient, snapshot *domain.RiskPrediction) {
	fv, err := s.buildFeatures(ctx, disease, patient)
	if err != nil {
		var missing *domain.MissingAssessmentError
		if errors.As(err, &missing) {
			s.logger.Info("skipping disease, assessment missing",
				zap.String("patient_id", patient.PatientID),
				zap.String("disease", disease))
		} else {
			s.logger.Error("failed to build features, recording null result",
				zap.String("patient_id", patient.PatientID),
				zap.String("disease", disease),
				zap.Error(err))
		}
		return
	}

	outcome, err := s.invoker.Predict(fv)
	if err != nil {
		// Only ErrModelUnavailable reaches here; everything else already
		// degraded to the heuristic inside the invoker.
		s.logger.Warn("prediction unavailable, no model loaded",
			zap.String("patient_id", patient.PatientID),
			zap.String("disease", disease))
		return
	}

	level := s.categorizer.Categorize(outcome.Score)
	snapshot.SetResult(disease, outcome.Score, level)
}

func (s *predictionService) buildFeatures(ctx context.Context, disease string, patient *domain.Patient) (ml.FeatureVector, error) {
	switch disease {
	case domain.DiseaseDiabetes:
		a, err := s.assessments.LatestDiabetes(ctx, patient.PatientID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, &domain.MissingAssessmentError{Disease: disease}
		}
		return ml.DiabetesFeaturesFrom(a, patient), nil
	case domain.DiseaseLiver:
		a, err := s.assessments.LatestLiver(ctx, patient.PatientID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, &domain.MissingAssessmentError{Disease: disease}
		}
		return ml.LiverFeaturesFrom(a, patient), nil
	case domain.DiseaseHeart:
		a, err := s.assessments.LatestHeart(ctx, patient.PatientID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, &domain.MissingAssessmentError{Disease: disease}
		}
		return ml.HeartFeaturesFrom(a, patient), nil
	case domain.DiseaseMentalHealth:
		a, err := s.assessments.LatestMentalHealth(ctx, patient.PatientID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, &domain.MissingAssessmentError{Disease: disease}
		}
		return ml.MentalHealthFeaturesFrom(a, patient), nil
	}
	return nil, fmt.Errorf("unknown disease key %q", disease)
}

func (s *predictionService) LatestPrediction(ctx context.Context, patientID string) (*domain.RiskPrediction, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.predictions.LatestPrediction(ctx, patientID)
}

func (s *predictionService) ListPredictions(ctx context.Context, patientID string) ([]*domain.RiskPrediction, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.predictions.ListPredictions(ctx, patientID)
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
