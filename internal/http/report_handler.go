package httpapi

import (
	"errors"
	"net/http"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// ReportHandler 患者档案 xlsx 导出
type ReportHandler struct {
	reports *service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request, patientID string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}

	data, filename, err := h.reports.GenerateReport(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("GenerateReport failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate report"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
