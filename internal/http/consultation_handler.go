package httpapi

import (
	"errors"
	"net/http"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// ConsultationHandler 预约 Handler
type ConsultationHandler struct {
	consultations *service.ConsultationService
	logger        *zap.Logger
}

func NewConsultationHandler(consultations *service.ConsultationService, logger *zap.Logger) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations, logger: logger}
}

// Book 管理员为患者预约
func (h *ConsultationHandler) Book(w http.ResponseWriter, r *http.Request, patientID string) {
	var payload struct {
		Type        string `json:"consultation_type"`
		ScheduledAt string `json:"consultation_datetime"` // RFC3339
		Notes       string `json:"notes"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, payload.ScheduledAt)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("consultation_datetime must be RFC3339"))
		return
	}

	claims := claimsFrom(r.Context())
	c, err := h.consultations.Book(r.Context(), patientID, claims.Subject,
		payload.Type, scheduledAt, payload.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, Ok(c))
}

// List 患者的预约列表
func (h *ConsultationHandler) List(w http.ResponseWriter, r *http.Request, patientID string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	items, err := h.consultations.ListForPatient(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("ListConsultations failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

// UpdateStatus 更新预约状态
func (h *ConsultationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, consultationID string) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	c, err := h.consultations.UpdateStatus(r.Context(), consultationID, payload.Status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("consultation not found"))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(c))
}
