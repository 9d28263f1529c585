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

// ConsultationService 预约管理
type ConsultationService struct {
	patients      repository.PatientsRepository
	consultations repository.ConsultationsRepository
	logger        *zap.Logger
}

func NewConsultationService(
	patients repository.PatientsRepository,
	consultations repository.ConsultationsRepository,
	logger *zap.Logger,
) *ConsultationService {
	return &ConsultationService{patients: patients, consultations: consultations, logger: logger}
}

func (s *ConsultationService) Book(ctx context.Context, patientID, adminID, consultationType string, scheduledAt time.Time, notes string) (*domain.Consultation, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	if consultationType == "" {
		return nil, fmt.Errorf("consultation_type is required")
	}
	if scheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("consultation_datetime must be in the future")
	}
	c := &domain.Consultation{
		ConsultationID: uuid.NewString(),
		PatientID:      patientID,
		AdminID:        adminID,
		Type:           consultationType,
		ScheduledAt:    scheduledAt,
		Notes:          notes,
		Status:         domain.ConsultationBooked,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.consultations.CreateConsultation(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("consultation booked",
		zap.String("consultation_id", c.ConsultationID),
		zap.String("patient_id", patientID))
	return c, nil
}

func (s *ConsultationService) ListForPatient(ctx context.Context, patientID string) ([]*domain.Consultation, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.consultations.ListConsultationsByPatient(ctx, patientID)
}

// UpdateStatus confirms the consultation exists before touching it and
// returns the record with the new status applied.
func (s *ConsultationService) UpdateStatus(ctx context.Context, consultationID, status string) (*domain.Consultation, error) {
	switch status {
	case domain.ConsultationBooked, domain.ConsultationCompleted, domain.ConsultationCancelled:
	default:
		return nil, fmt.Errorf("unknown consultation status %q", status)
	}
	c, err := s.consultations.GetConsultation(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if err := s.consultations.UpdateConsultationStatus(ctx, consultationID, status); err != nil {
		return nil, err
	}
	c.Status = status
	return c, nil
}
