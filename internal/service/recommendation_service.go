package service

import (
	"context"
	"fmt"
	"strings"

	"medml-backend/internal/config"
	"medml-backend/internal/domain"
	"medml-backend/internal/repository"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DiseaseRecommendations is one disease's block in the recommendation
// response: the categorized level plus the matching static templates.
type DiseaseRecommendations struct {
	Disease         string                            `json:"disease"`
	RiskLevel       string                            `json:"risk_level"`
	Recommendations []*domain.LifestyleRecommendation `json:"recommendations"`
}

// RecommendationService combines static per-level templates with an
// optional Gemini generated summary. Without an API key the service still
// works, it just omits the summary.
type RecommendationService struct {
	patients        repository.PatientsRepository
	predictions     repository.PredictionsRepository
	recommendations repository.RecommendationsRepository
	gemini          *resty.Client
	geminiCfg       config.GeminiConfig
	logger          *zap.Logger
}

func NewRecommendationService(
	patients repository.PatientsRepository,
	predictions repository.PredictionsRepository,
	recommendations repository.RecommendationsRepository,
	geminiCfg config.GeminiConfig,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		patients:        patients,
		predictions:     predictions,
		recommendations: recommendations,
		gemini:          resty.New(),
		geminiCfg:       geminiCfg,
		logger:          logger,
	}
}

// ForPatient builds recommendation blocks from the patient's latest
// snapshot. Diseases with null results are skipped.
func (s *RecommendationService) ForPatient(ctx context.Context, patientID string) (map[string]any, error) {
	patient, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	latest, err := s.predictions.LatestPrediction(ctx, patientID)
	if err != nil {
		return nil, err
	}

	blocks := make([]*DiseaseRecommendations, 0, len(domain.Diseases))
	if latest != nil {
		for _, disease := range domain.Diseases {
			res := latest.Result(disease)
			if res.Level == nil {
				continue
			}
			recs, err := s.recommendations.ListRecommendations(ctx, disease, *res.Level)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, &DiseaseRecommendations{
				Disease:         disease,
				RiskLevel:       *res.Level,
				Recommendations: recs,
			})
		}
	}

	out := map[string]any{
		"patient_id": patientID,
		"diseases":   blocks,
	}
	if summary := s.generateSummary(ctx, patient, blocks); summary != "" {
		out["ai_summary"] = summary
	}
	return out, nil
}

// ForDisease returns the static templates for one disease at the patient's
// current level.
func (s *RecommendationService) ForDisease(ctx context.Context, patientID, disease string) (*DiseaseRecommendations, error) {
	if !domain.ValidDisease(disease) {
		return nil, fmt.Errorf("unknown disease key %q", disease)
	}
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	latest, err := s.predictions.LatestPrediction(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("no prediction recorded for patient")
	}
	res := latest.Result(disease)
	if res.Level == nil {
		return nil, fmt.Errorf("no %s prediction recorded for patient", disease)
	}
	recs, err := s.recommendations.ListRecommendations(ctx, disease, *res.Level)
	if err != nil {
		return nil, err
	}
	return &DiseaseRecommendations{
		Disease:         disease,
		RiskLevel:       *res.Level,
		Recommendations: recs,
	}, nil
}

// Gemini REST payloads.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// generateSummary asks Gemini for a short lifestyle summary. Any failure
// is logged and swallowed so recommendations never depend on the API.
func (s *RecommendationService) generateSummary(ctx context.Context, patient *domain.Patient, blocks []*DiseaseRecommendations) string {
	if s.geminiCfg.APIKey == "" || len(blocks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a health assistant. Write a short, encouraging lifestyle summary (max 120 words) for a %d year old %s patient with these screening results:\n",
		patient.Age, strings.ToLower(patient.Gender))
	for _, b := range blocks {
		fmt.Fprintf(&sb, "- %s risk: %s\n", b.Disease, b.RiskLevel)
	}
	sb.WriteString("Do not give medical diagnoses. Focus on diet, exercise and sleep.")

	var parsed geminiResponse
	resp, err := s.gemini.R().
		SetContext(ctx).
		SetQueryParam("key", s.geminiCfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: sb.String()}}}}}).
		SetResult(&parsed).
		Post(s.geminiCfg.Endpoint)
	if err != nil {
		s.logger.Warn("gemini request failed, skipping summary", zap.Error(err))
		return ""
	}
	if resp.IsError() {
		s.logger.Warn("gemini returned error status, skipping summary",
			zap.Int("status", resp.StatusCode()))
		return ""
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
}
