package httpapi

import (
	"errors"
	"net/http"

	"medml-backend/internal/domain"
	"medml-backend/internal/repository"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// PatientHandler 患者管理 Handler
type PatientHandler struct {
	patients *service.PatientService
	logger   *zap.Logger
}

func NewPatientHandler(patients *service.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, logger: logger}
}

// Register 管理员录入新患者
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FullName  string  `json:"full_name"`
		Age       int     `json:"age"`
		Gender    string  `json:"gender"`
		HeightCM  float64 `json:"height_cm"`
		WeightKG  float64 `json:"weight_kg"`
		AbhaID    string  `json:"abha_id"`
		Password  string  `json:"password"`
		StateName string  `json:"state_name"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	claims := claimsFrom(r.Context())
	p, err := h.patients.Register(r.Context(), claims.Subject, service.RegisterPatientInput{
		FullName:  payload.FullName,
		Age:       payload.Age,
		Gender:    payload.Gender,
		HeightCM:  payload.HeightCM,
		WeightKG:  payload.WeightKG,
		AbhaID:    payload.AbhaID,
		Password:  payload.Password,
		StateName: payload.StateName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAbhaID) {
			writeJSON(w, http.StatusConflict, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, Ok(p.ToJSON()))
}

// List 患者列表（支持按最新快照的风险筛选）
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.PatientFilter{
		RiskDisease: r.URL.Query().Get("risk_disease"),
		RiskLevel:   r.URL.Query().Get("risk_level"),
	}
	patients, err := h.patients.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	items := make([]map[string]any, 0, len(patients))
	for _, p := range patients {
		items = append(items, p.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

// Get 患者详情
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request, patientID string) {
	claims := claimsFrom(r.Context())
	if !canAccessPatient(claims, patientID) {
		writeJSON(w, http.StatusForbidden, Fail("access denied"))
		return
	}
	p, err := h.patients.Get(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("GetPatient failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(p.ToJSON()))
}

// Update 编辑患者信息（仅提供的字段被更新）
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request, patientID string) {
	var payload struct {
		FullName  *string  `json:"full_name"`
		Age       *int     `json:"age"`
		Gender    *string  `json:"gender"`
		HeightCM  *float64 `json:"height_cm"`
		WeightKG  *float64 `json:"weight_kg"`
		StateName *string  `json:"state_name"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	p, err := h.patients.Update(r.Context(), patientID, service.UpdatePatientInput{
		FullName:  payload.FullName,
		Age:       payload.Age,
		Gender:    payload.Gender,
		HeightCM:  payload.HeightCM,
		WeightKG:  payload.WeightKG,
		StateName: payload.StateName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(p.ToJSON()))
}

// Delete 删除患者（级联删除评估和预测历史）
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request, patientID string) {
	if err := h.patients.Delete(r.Context(), patientID); err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("DeletePatient failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))
}
