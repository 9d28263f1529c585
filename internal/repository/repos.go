package repository

import (
	"context"

	"medml-backend/internal/domain"
)

// PatientFilter narrows ListPatients. RiskDisease/RiskLevel filter on the
// patient's *latest* prediction snapshot.
type PatientFilter struct {
	RiskDisease string
	RiskLevel   string
}

type PatientsRepository interface {
	CreatePatient(ctx context.Context, p *domain.Patient) error
	GetPatient(ctx context.Context, patientID string) (*domain.Patient, error)
	GetPatientByAbhaID(ctx context.Context, abhaID string) (*domain.Patient, error)
	ListPatients(ctx context.Context, filter PatientFilter) ([]*domain.Patient, error)
	UpdatePatient(ctx context.Context, p *domain.Patient) error
	DeletePatient(ctx context.Context, patientID string) error
	CountPatients(ctx context.Context) (int, error)
}

// AssessmentsRepository stores the four append-only assessment histories.
// Latest* returns (nil, nil) when the patient has no assessment of that
// type; the orchestrator converts that into a MissingAssessmentError.
type AssessmentsRepository interface {
	CreateDiabetes(ctx context.Context, a *domain.DiabetesAssessment) error
	LatestDiabetes(ctx context.Context, patientID string) (*domain.DiabetesAssessment, error)
	ListDiabetes(ctx context.Context, patientID string) ([]*domain.DiabetesAssessment, error)

	CreateLiver(ctx context.Context, a *domain.LiverAssessment) error
	LatestLiver(ctx context.Context, patientID string) (*domain.LiverAssessment, error)
	ListLiver(ctx context.Context, patientID string) ([]*domain.LiverAssessment, error)

	CreateHeart(ctx context.Context, a *domain.HeartAssessment) error
	LatestHeart(ctx context.Context, patientID string) (*domain.HeartAssessment, error)
	ListHeart(ctx context.Context, patientID string) ([]*domain.HeartAssessment, error)

	CreateMentalHealth(ctx context.Context, a *domain.MentalHealthAssessment) error
	LatestMentalHealth(ctx context.Context, patientID string) (*domain.MentalHealthAssessment, error)
	ListMentalHealth(ctx context.Context, patientID string) ([]*domain.MentalHealthAssessment, error)
}

// PredictionsRepository stores immutable snapshot rows. There is no update
// method on purpose: a run only ever inserts.
type PredictionsRepository interface {
	CreatePrediction(ctx context.Context, p *domain.RiskPrediction) error
	LatestPrediction(ctx context.Context, patientID string) (*domain.RiskPrediction, error)
	ListPredictions(ctx context.Context, patientID string) ([]*domain.RiskPrediction, error)
	CountHighRiskPatients(ctx context.Context) (map[string]int, error)
}

type UsersRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ConsultationsRepository interface {
	CreateConsultation(ctx context.Context, c *domain.Consultation) error
	GetConsultation(ctx context.Context, consultationID string) (*domain.Consultation, error)
	ListConsultationsByPatient(ctx context.Context, patientID string) ([]*domain.Consultation, error)
	UpdateConsultationStatus(ctx context.Context, consultationID, status string) error
}

type RecommendationsRepository interface {
	ListRecommendations(ctx context.Context, diseaseType, riskLevel string) ([]*domain.LifestyleRecommendation, error)
}
