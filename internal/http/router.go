package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth            *AuthHandler
	Patients        *PatientHandler
	Assessments     *AssessmentHandler
	Predictions     *PredictionHandler
	Recommendations *RecommendationHandler
	Reports         *ReportHandler
	Dashboard       *DashboardHandler
	Consultations   *ConsultationHandler
	Middleware      *AuthMiddleware
}

// RegisterRoutes 注册全部 API 路由
func (r *Router) RegisterRoutes(h *Handlers) {
	m := h.Middleware

	// auth
	r.Handle("/api/v1/auth/admin/register", requireMethod(http.MethodPost, h.Auth.RegisterAdmin))
	r.Handle("/api/v1/auth/admin/login", requireMethod(http.MethodPost, h.Auth.LoginAdmin))
	r.Handle("/api/v1/auth/patient/login", requireMethod(http.MethodPost, h.Auth.LoginPatient))
	r.Handle("/api/v1/auth/refresh", requireMethod(http.MethodPost, h.Auth.Refresh))
	r.Handle("/api/v1/auth/me", m.Wrap(requireMethod(http.MethodGet, h.Auth.Me)))
	r.Handle("/api/v1/auth/logout", m.Wrap(requireMethod(http.MethodPost, h.Auth.Logout)))

	// patients collection
	r.Handle("/api/v1/patients", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			m.WrapAdmin(h.Patients.List)(w, req)
		case http.MethodPost:
			m.WrapAdmin(h.Patients.Register)(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	// patients subtree: /api/v1/patients/{id}[/...]
	r.Handle("/api/v1/patients/", func(w http.ResponseWriter, req *http.Request) {
		r.dispatchPatient(h, w, req)
	})

	// consultations status: /api/v1/consultations/{id}/status
	r.Handle("/api/v1/consultations/", m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/consultations/")
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && parts[1] == "status" && req.Method == http.MethodPut {
			h.Consultations.UpdateStatus(w, req, parts[0])
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	// dashboard
	r.Handle("/api/v1/dashboard/stats", m.WrapAdmin(requireMethod(http.MethodGet, h.Dashboard.Stats)))
}

// dispatchPatient routes everything under /api/v1/patients/{id}.
func (r *Router) dispatchPatient(h *Handlers, w http.ResponseWriter, req *http.Request) {
	m := h.Middleware
	rest := strings.TrimPrefix(req.URL.Path, "/api/v1/patients/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	patientID := parts[0]

	// /patients/{id}
	if len(parts) == 1 {
		switch req.Method {
		case http.MethodGet:
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Patients.Get(w, req, patientID)
			})(w, req)
		case http.MethodPut:
			m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.Patients.Update(w, req, patientID)
			})(w, req)
		case http.MethodDelete:
			m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.Patients.Delete(w, req, patientID)
			})(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "assessments":
		// /patients/{id}/assessments/{disease}
		if len(parts) != 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		disease := parts[2]
		switch req.Method {
		case http.MethodPost:
			m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.Assessments.Submit(w, req, patientID, disease)
			})(w, req)
		case http.MethodGet:
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Assessments.History(w, req, patientID, disease)
			})(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	case "predictions":
		switch {
		// /patients/{id}/predictions
		case len(parts) == 2 && req.Method == http.MethodGet:
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Predictions.History(w, req, patientID)
			})(w, req)
		// /patients/{id}/predictions/latest
		case len(parts) == 3 && parts[2] == "latest" && req.Method == http.MethodGet:
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Predictions.Latest(w, req, patientID)
			})(w, req)
		// /patients/{id}/predictions/run
		case len(parts) == 3 && parts[2] == "run" && req.Method == http.MethodPost:
			m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.Predictions.RunAll(w, req, patientID)
			})(w, req)
		// /patients/{id}/predictions/run/{disease}
		case len(parts) == 4 && parts[2] == "run" && req.Method == http.MethodPost:
			disease := parts[3]
			m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.Predictions.RunOne(w, req, patientID, disease)
			})(w, req)
		default:
			w.WriteHeader(http.StatusNotFound)
		}

	case "recommendations":
		switch {
		case len(parts) == 2 && req.Method == http.MethodGet:
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Recommendations.ForPatient(w, req, patientID)
			})(w, req)
		case len(parts) == 3 && req.Method == http.MethodGet:
			disease := parts[2]
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Recommendations.ForDisease(w, req, patientID, disease)
			})(w, req)
		default:
			w.WriteHeader(http.StatusNotFound)
		}

	case "report":
		if len(parts) != 2 || req.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		m.Wrap(func(w http.ResponseWriter, req *http.Request) {
			h.Reports.Download(w, req, patientID)
		})(w, req)

	case "consultations":
		if len(parts) != 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			m.Wrap(func(w http.ResponseWriter, req *http.Request) {
				h.Consultations.List(w, req, patientID)
			})(w, req)
		case http.MethodPost:
			m.WrapAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.Consultations.Book(w, req, patientID)
			})(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, req)
	}
}
