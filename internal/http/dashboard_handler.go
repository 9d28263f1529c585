package httpapi

import (
	"net/http"

	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler 管理端统计 Handler
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		h.logger.Error("DashboardStats failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}
