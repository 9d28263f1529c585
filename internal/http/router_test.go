package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medml-backend/internal/config"
	"medml-backend/internal/domain"
	"medml-backend/internal/ml"
	"medml-backend/internal/repository"
	"medml-backend/internal/service"
	"medml-backend/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvoker struct {
	scores map[string]float64
}

func (s *stubInvoker) Predict(fv ml.FeatureVector) (ml.Outcome, error) {
	score, ok := s.scores[fv.Disease()]
	if !ok {
		return ml.Outcome{}, ml.ErrModelUnavailable
	}
	return ml.Outcome{Score: score, Source: ml.SourceModel}, nil
}

type stubRecommendations struct{}

func (stubRecommendations) ListRecommendations(_ context.Context, diseaseType, riskLevel string) ([]*domain.LifestyleRecommendation, error) {
	return []*domain.LifestyleRecommendation{{
		RecommendationID: "r-1",
		DiseaseType:      diseaseType,
		RiskLevel:        riskLevel,
		Category:         "Diet",
		Text:             "eat well",
	}}, nil
}

type envThresholds struct{}

func (envThresholds) RiskThresholds() (float64, float64) { return 0.35, 0.70 }

type testAPI struct {
	server  *httptest.Server
	invoker *stubInvoker
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zap.NewNop()

	patientsRepo := repository.NewMemoryPatientsRepo()
	assessmentsRepo := repository.NewMemoryAssessmentsRepo()
	predictionsRepo := repository.NewMemoryPredictionsRepo()
	usersRepo := repository.NewMemoryUsersRepo()

	invoker := &stubInvoker{scores: map[string]float64{}}
	auth := service.NewAuthService(usersRepo, patientsRepo, store.NewMemoryKV(),
		"test-secret", 15, 30, log)
	predictionSvc := service.NewPredictionService(patientsRepo, assessmentsRepo,
		predictionsRepo, invoker, ml.NewCategorizer(envThresholds{}), "v1.0", log)
	recommendationSvc := service.NewRecommendationService(patientsRepo, predictionsRepo,
		stubRecommendations{}, config.GeminiConfig{}, log)

	router := NewRouter(log)
	router.RegisterRoutes(&Handlers{
		Auth:            NewAuthHandler(auth, log),
		Patients:        NewPatientHandler(service.NewPatientService(patientsRepo, log), log),
		Assessments:     NewAssessmentHandler(service.NewAssessmentService(patientsRepo, assessmentsRepo, log), log),
		Predictions:     NewPredictionHandler(predictionSvc, log),
		Recommendations: NewRecommendationHandler(recommendationSvc, log),
		Reports:         NewReportHandler(service.NewReportService(patientsRepo, assessmentsRepo, predictionsRepo, log), log),
		Dashboard:       NewDashboardHandler(service.NewDashboardService(patientsRepo, predictionsRepo), log),
		Consultations:   NewConsultationHandler(service.NewConsultationService(patientsRepo, repository.NewMemoryConsultationsRepo(), log), log),
		Middleware:      NewAuthMiddleware(auth),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{server: srv, invoker: invoker}
}

func (a *testAPI) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	resp, _ := a.request(t, http.MethodPost, "/api/v1/auth/admin/register", "", map[string]any{
		"name": "Dr. Rao", "email": "rao@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := a.request(t, http.MethodPost, "/api/v1/auth/admin/login", "", map[string]any{
		"email": "rao@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := env["result"].(map[string]any)
	return result["access_token"].(string)
}

func (a *testAPI) registerPatient(t *testing.T, token string) string {
	t.Helper()
	resp, env := a.request(t, http.MethodPost, "/api/v1/patients", token, map[string]any{
		"full_name": "Test Patient", "age": 52, "gender": "Male",
		"height_cm": 175, "weight_kg": 80,
		"abha_id": "ABHA-0001", "password": "patient-pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := env["result"].(map[string]any)
	return result["patient_id"].(string)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.request(t, http.MethodGet, "/api/v1/patients", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = api.request(t, http.MethodGet, "/api/v1/dashboard/stats", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPatientRegistrationAndFetch(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	patientID := api.registerPatient(t, token)

	resp, env := api.request(t, http.MethodGet, "/api/v1/patients/"+patientID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(ResultSuccess), env["code"])
	result := env["result"].(map[string]any)
	require.Equal(t, "ABHA-0001", result["abha_id"])
	require.InDelta(t, 26.12, result["bmi"], 0.001)

	// Duplicate ABHA ID is a conflict
	resp, _ = api.request(t, http.MethodPost, "/api/v1/patients", token, map[string]any{
		"full_name": "Other", "age": 30, "gender": "Female",
		"abha_id": "ABHA-0001", "password": "pw",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPredictionFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	patientID := api.registerPatient(t, token)
	api.invoker.scores = map[string]float64{domain.DiseaseDiabetes: 0.82}

	resp, _ := api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/assessments/diabetes", token, map[string]any{
			"glucose": 150, "blood_pressure": 85, "pregnancies": 1,
			"skin_thickness": 20, "insulin": 80, "diabetes_history": true,
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/predictions/run", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := env["result"].(map[string]any)
	require.Equal(t, 0.82, result["diabetes_score"])
	require.Equal(t, domain.RiskHigh, result["diabetes_level"])
	require.Nil(t, result["heart_score"]) // no assessment, no model

	resp, env = api.request(t, http.MethodGet,
		"/api/v1/patients/"+patientID+"/predictions/latest", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result = env["result"].(map[string]any)
	require.Equal(t, "v1.0", result["model_version"])

	// Recommendations follow the latest snapshot's levels.
	resp, env = api.request(t, http.MethodGet,
		"/api/v1/patients/"+patientID+"/recommendations", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result = env["result"].(map[string]any)
	diseases := result["diseases"].([]any)
	require.Len(t, diseases, 1)
	block := diseases[0].(map[string]any)
	require.Equal(t, domain.DiseaseDiabetes, block["disease"])
	require.Equal(t, domain.RiskHigh, block["risk_level"])
}

func TestRunRejectsUnknownDiseaseKey(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	patientID := api.registerPatient(t, token)

	resp, env := api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/predictions/run/cardio", token, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, float64(ResultError), env["code"])
}

func TestConsultationLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	patientID := api.registerPatient(t, token)

	resp, env := api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/consultations", token, map[string]any{
			"consultation_type":     "Teleconsultation",
			"consultation_datetime": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	consultationID := env["result"].(map[string]any)["consultation_id"].(string)

	resp, env = api.request(t, http.MethodPut,
		"/api/v1/consultations/"+consultationID+"/status", token,
		map[string]any{"status": domain.ConsultationCompleted})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := env["result"].(map[string]any)
	require.Equal(t, domain.ConsultationCompleted, result["status"])

	// Unknown IDs are rejected before any update is attempted.
	resp, _ = api.request(t, http.MethodPut,
		"/api/v1/consultations/unknown-id/status", token,
		map[string]any{"status": domain.ConsultationCompleted})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatientCannotAccessOtherPatients(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	patientID := api.registerPatient(t, token)

	resp, env := api.request(t, http.MethodPost, "/api/v1/auth/patient/login", "", map[string]any{
		"abha_id": "ABHA-0001", "password": "patient-pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patientToken := env["result"].(map[string]any)["access_token"].(string)

	// Own record is fine
	resp, _ = api.request(t, http.MethodGet, "/api/v1/patients/"+patientID, patientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Someone else's record is not
	resp, _ = api.request(t, http.MethodGet, "/api/v1/patients/other-id", patientToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin-only endpoints are off limits
	resp, _ = api.request(t, http.MethodGet, "/api/v1/dashboard/stats", patientToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/predictions/run", patientToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDashboardStats(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken(t)
	patientID := api.registerPatient(t, token)
	api.invoker.scores = map[string]float64{domain.DiseaseHeart: 0.9}

	resp, _ := api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/assessments/heart", token, map[string]any{
			"systolic_bp": 150, "diastolic_bp": 95, "hdl": 40,
			"cholesterol": 240, "ldl": 160, "triglycerides": 200,
			"smoker": true, "stress_level": 7, "diet_quality": 3,
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = api.request(t, http.MethodPost,
		"/api/v1/patients/"+patientID+"/predictions/run", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := api.request(t, http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := env["result"].(map[string]any)
	require.Equal(t, float64(1), result["total_patients"])
	highRisk := result["high_risk_count"].(map[string]any)
	require.Equal(t, float64(1), highRisk["heart"])
}
