package service

import (
	"context"
	"fmt"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterPatientInput is the admin-entered patient record plus the login
// credential derived from the ABHA ID.
type RegisterPatientInput struct {
	FullName  string
	Age       int
	Gender    string
	HeightCM  float64
	WeightKG  float64
	AbhaID    string
	Password  string
	StateName string
}

// PatientService 患者管理
type PatientService struct {
	patients repository.PatientsRepository
	logger   *zap.Logger
}

func NewPatientService(patients repository.PatientsRepository, logger *zap.Logger) *PatientService {
	return &PatientService{patients: patients, logger: logger}
}

func (s *PatientService) Register(ctx context.Context, createdByUserID string, in RegisterPatientInput) (*domain.Patient, error) {
	if in.FullName == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if in.AbhaID == "" {
		return nil, fmt.Errorf("abha_id is required")
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if in.Age <= 0 || in.Age > 130 {
		return nil, fmt.Errorf("age must be between 1 and 130")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	p := &domain.Patient{
		PatientID:       uuid.NewString(),
		FullName:        in.FullName,
		Age:             in.Age,
		Gender:          in.Gender,
		HeightCM:        in.HeightCM,
		WeightKG:        in.WeightKG,
		AbhaID:          in.AbhaID,
		PasswordHash:    string(hash),
		StateName:       in.StateName,
		CreatedByUserID: createdByUserID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.patients.CreatePatient(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("patient registered",
		zap.String("patient_id", p.PatientID),
		zap.String("created_by", createdByUserID))
	return p, nil
}

func (s *PatientService) Get(ctx context.Context, patientID string) (*domain.Patient, error) {
	return s.patients.GetPatient(ctx, patientID)
}

func (s *PatientService) List(ctx context.Context, filter repository.PatientFilter) ([]*domain.Patient, error) {
	if filter.RiskDisease != "" && !domain.ValidDisease(filter.RiskDisease) {
		return nil, fmt.Errorf("unknown disease key %q", filter.RiskDisease)
	}
	if filter.RiskLevel != "" &&
		filter.RiskLevel != domain.RiskLow &&
		filter.RiskLevel != domain.RiskMedium &&
		filter.RiskLevel != domain.RiskHigh {
		return nil, fmt.Errorf("unknown risk level %q", filter.RiskLevel)
	}
	return s.patients.ListPatients(ctx, filter)
}

// UpdatePatientInput carries the editable demographics. Nil fields keep
// their stored values.
type UpdatePatientInput struct {
	FullName  *string
	Age       *int
	Gender    *string
	HeightCM  *float64
	WeightKG  *float64
	StateName *string
}

func (s *PatientService) Update(ctx context.Context, patientID string, in UpdatePatientInput) (*domain.Patient, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		p.FullName = *in.FullName
	}
	if in.Age != nil {
		if *in.Age <= 0 || *in.Age > 130 {
			return nil, fmt.Errorf("age must be between 1 and 130")
		}
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.HeightCM != nil {
		p.HeightCM = *in.HeightCM
	}
	if in.WeightKG != nil {
		p.WeightKG = *in.WeightKG
	}
	if in.StateName != nil {
		p.StateName = *in.StateName
	}
	if err := s.patients.UpdatePatient(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, patientID string) error {
	if err := s.patients.DeletePatient(ctx, patientID); err != nil {
		return err
	}
	s.logger.Info("patient deleted", zap.String("patient_id", patientID))
	return nil
}
