package service

import (
	"context"

	"medml-backend/internal/repository"
)

// DashboardService 管理端统计
type DashboardService struct {
	patients    repository.PatientsRepository
	predictions repository.PredictionsRepository
}

func NewDashboardService(patients repository.PatientsRepository, predictions repository.PredictionsRepository) *DashboardService {
	return &DashboardService{patients: patients, predictions: predictions}
}

// Stats returns the total patient count and, per disease, how many
// patients are High risk in their latest snapshot.
func (s *DashboardService) Stats(ctx context.Context) (map[string]any, error) {
	total, err := s.patients.CountPatients(ctx)
	if err != nil {
		return nil, err
	}
	highRisk, err := s.predictions.CountHighRiskPatients(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_patients":  total,
		"high_risk_count": highRisk,
	}, nil
}
