package service

import (
	"context"
	"fmt"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssessmentService 评估录入（append-only，提交即新行）
type AssessmentService struct {
	patients    repository.PatientsRepository
	assessments repository.AssessmentsRepository
	logger      *zap.Logger
}

func NewAssessmentService(
	patients repository.PatientsRepository,
	assessments repository.AssessmentsRepository,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{patients: patients, assessments: assessments, logger: logger}
}

func (s *AssessmentService) checkPatient(ctx context.Context, patientID string) error {
	_, err := s.patients.GetPatient(ctx, patientID)
	return err
}

func (s *AssessmentService) SubmitDiabetes(ctx context.Context, a *domain.DiabetesAssessment) error {
	if err := s.checkPatient(ctx, a.PatientID); err != nil {
		return err
	}
	if a.Pregnancies < 0 {
		return fmt.Errorf("pregnancies cannot be negative")
	}
	if a.Glucose < 0 || a.BloodPressure < 0 || a.SkinThickness < 0 || a.Insulin < 0 {
		return fmt.Errorf("measurements cannot be negative")
	}
	a.AssessmentID = uuid.NewString()
	a.AssessedAt = time.Now().UTC()
	if err := s.assessments.CreateDiabetes(ctx, a); err != nil {
		return err
	}
	s.logger.Info("diabetes assessment recorded",
		zap.String("patient_id", a.PatientID),
		zap.String("assessment_id", a.AssessmentID))
	return nil
}

func (s *AssessmentService) SubmitLiver(ctx context.Context, a *domain.LiverAssessment) error {
	if err := s.checkPatient(ctx, a.PatientID); err != nil {
		return err
	}
	if a.TotalBilirubin < 0 || a.DirectBilirubin < 0 || a.AlkalinePhosphotase < 0 ||
		a.AlamineAminotransferase < 0 || a.AspartateAminotransferase < 0 ||
		a.TotalProteins < 0 || a.Albumin < 0 {
		return fmt.Errorf("measurements cannot be negative")
	}
	a.AssessmentID = uuid.NewString()
	a.AssessedAt = time.Now().UTC()
	if err := s.assessments.CreateLiver(ctx, a); err != nil {
		return err
	}
	s.logger.Info("liver assessment recorded",
		zap.String("patient_id", a.PatientID),
		zap.String("assessment_id", a.AssessmentID))
	return nil
}

func (s *AssessmentService) SubmitHeart(ctx context.Context, a *domain.HeartAssessment) error {
	if err := s.checkPatient(ctx, a.PatientID); err != nil {
		return err
	}
	if a.SystolicBP <= 0 || a.DiastolicBP <= 0 {
		return fmt.Errorf("blood pressure values must be positive")
	}
	if a.StressLevel < 0 || a.StressLevel > 10 {
		return fmt.Errorf("stress_level must be between 0 and 10")
	}
	if a.DietQuality < 0 || a.DietQuality > 10 {
		return fmt.Errorf("diet_quality must be between 0 and 10")
	}
	a.AssessmentID = uuid.NewString()
	a.AssessedAt = time.Now().UTC()
	if err := s.assessments.CreateHeart(ctx, a); err != nil {
		return err
	}
	s.logger.Info("heart assessment recorded",
		zap.String("patient_id", a.PatientID),
		zap.String("assessment_id", a.AssessmentID))
	return nil
}

func (s *AssessmentService) SubmitMentalHealth(ctx context.Context, a *domain.MentalHealthAssessment) error {
	if err := s.checkPatient(ctx, a.PatientID); err != nil {
		return err
	}
	if a.PHQScore < 0 || a.PHQScore > 27 {
		return fmt.Errorf("phq_score must be between 0 and 27")
	}
	if a.GADScore < 0 || a.GADScore > 21 {
		return fmt.Errorf("gad_score must be between 0 and 21")
	}
	if a.SleepQuality < 1 || a.SleepQuality > 10 {
		return fmt.Errorf("sleep_quality must be between 1 and 10")
	}
	a.AssessmentID = uuid.NewString()
	a.AssessedAt = time.Now().UTC()
	if err := s.assessments.CreateMentalHealth(ctx, a); err != nil {
		return err
	}
	s.logger.Info("mental health assessment recorded",
		zap.String("patient_id", a.PatientID),
		zap.String("assessment_id", a.AssessmentID))
	return nil
}

// History returns a patient's full assessment history for one disease,
// newest first.
func (s *AssessmentService) History(ctx context.Context, patientID, disease string) (any, error) {
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}
	switch disease {
	case domain.DiseaseDiabetes:
		return s.assessments.ListDiabetes(ctx, patientID)
	case domain.DiseaseLiver:
		return s.assessments.ListLiver(ctx, patientID)
	case domain.DiseaseHeart:
		return s.assessments.ListHeart(ctx, patientID)
	case domain.DiseaseMentalHealth:
		return s.assessments.ListMentalHealth(ctx, patientID)
	}
	return nil, fmt.Errorf("unknown disease key %q", disease)
}
