package httpapi

import (
	"errors"
	"net/http"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// RecommendationHandler 生活方式建议 Handler
type RecommendationHandler struct {
	recommendations *service.RecommendationService
	logger          *zap.Logger
}

func NewRecommendationHandler(recommendations *service.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations, logger: logger}
}

// ForPatient 按最新快照返回全部病种的建议
func (h *RecommendationHandler) ForPatient(w http.ResponseWriter, r *http.Request, patientID string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	out, err := h.recommendations.ForPatient(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("Recommendations failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// ForDisease 单病种建议
func (h *RecommendationHandler) ForDisease(w http.ResponseWriter, r *http.Request, patientID, disease string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	out, err := h.recommendations.ForDisease(r.Context(), patientID, disease)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(out))
}
