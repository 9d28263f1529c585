package httpapi

import (
	"errors"
	"net/http"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// PredictionHandler 风险预测 Handler
type PredictionHandler struct {
	predictions service.PredictionService
	logger      *zap.Logger
}

func NewPredictionHandler(predictions service.PredictionService, logger *zap.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, logger: logger}
}

// RunAll 跑全部四个病种并落一条新快照
func (h *PredictionHandler) RunAll(w http.ResponseWriter, r *http.Request, patientID string) {
	snapshot, err := h.predictions.RunForPatient(r.Context(), patientID)
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(snapshot.ToJSON()))
}

// RunOne 只跑单个病种，其余病种结转最新值
func (h *PredictionHandler) RunOne(w http.ResponseWriter, r *http.Request, patientID, disease string) {
	if !domain.ValidDisease(disease) {
		writeJSON(w, http.StatusBadRequest, Fail("unknown disease key"))
		return
	}
	snapshot, err := h.predictions.RunForDisease(r.Context(), patientID, disease)
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(snapshot.ToJSON()))
}

func (h *PredictionHandler) writeRunError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrPatientNotFound) {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		h.logger.Error("prediction run storage failure", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to record prediction"))
		return
	}
	writeJSON(w, http.StatusOK, Fail(err.Error()))
}

// Latest 最新快照
func (h *PredictionHandler) Latest(w http.ResponseWriter, r *http.Request, patientID string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	latest, err := h.predictions.LatestPrediction(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("LatestPrediction failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, Ok[any](nil))
		return
	}
	writeJSON(w, http.StatusOK, Ok(latest.ToJSON()))
}

// History 全部快照（最新在前）
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request, patientID string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	history, err := h.predictions.ListPredictions(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("ListPredictions failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	items := make([]map[string]any, 0, len(history))
	for _, p := range history {
		items = append(items, p.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}
