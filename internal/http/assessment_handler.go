package httpapi

import (
	"errors"
	"net/http"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// AssessmentHandler 评估录入/查询 Handler
type AssessmentHandler struct {
	assessments *service.AssessmentService
	logger      *zap.Logger
}

func NewAssessmentHandler(assessments *service.AssessmentService, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, logger: logger}
}

// Submit 提交一次评估（append-only，新行）
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request, patientID, disease string) {
	claims := claimsFrom(r.Context())

	var err error
	switch disease {
	case domain.DiseaseDiabetes:
		a := &domain.DiabetesAssessment{}
		if err = readBodyJSON(r, 1<<20, a); err == nil {
			a.PatientID = patientID
			a.AssessedByUserID = claims.Subject
			err = h.assessments.SubmitDiabetes(r.Context(), a)
		}
	case domain.DiseaseLiver:
		a := &domain.LiverAssessment{}
		if err = readBodyJSON(r, 1<<20, a); err == nil {
			a.PatientID = patientID
			a.AssessedByUserID = claims.Subject
			err = h.assessments.SubmitLiver(r.Context(), a)
		}
	case domain.DiseaseHeart:
		a := &domain.HeartAssessment{}
		if err = readBodyJSON(r, 1<<20, a); err == nil {
			a.PatientID = patientID
			a.AssessedByUserID = claims.Subject
			err = h.assessments.SubmitHeart(r.Context(), a)
		}
	case domain.DiseaseMentalHealth:
		a := &domain.MentalHealthAssessment{}
		if err = readBodyJSON(r, 1<<20, a); err == nil {
			a.PatientID = patientID
			a.AssessedByUserID = claims.Subject
			err = h.assessments.SubmitMentalHealth(r.Context(), a)
		}
	default:
		writeJSON(w, http.StatusNotFound, Fail("unknown disease key"))
		return
	}

	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, Ok(map[string]any{"recorded": true}))
}

// History 某个病种的全部历史评估（最新在前）
func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request, patientID, disease string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	history, err := h.assessments.History(r.Context(), patientID, disease)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("AssessmentHistory failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(history))
}
