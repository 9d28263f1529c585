package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medml-backend/internal/config"
	"medml-backend/internal/database"
	httpapi "medml-backend/internal/http"
	"medml-backend/internal/logger"
	"medml-backend/internal/ml"
	"medml-backend/internal/repository"
	"medml-backend/internal/service"
	"medml-backend/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "medml-backend")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	// Model registry: per-disease load failures are logged, the service
	// still starts and degrades those diseases to null results.
	registry := ml.LoadRegistry(cfg.Models.Dir, log)
	invoker := ml.NewInvoker(registry, log)
	categorizer := ml.NewCategorizer(cfg)

	patientsRepo := repository.NewPostgresPatientsRepository(db)
	assessmentsRepo := repository.NewPostgresAssessmentsRepository(db)
	predictionsRepo := repository.NewPostgresPredictionsRepository(db)
	usersRepo := repository.NewPostgresUsersRepository(db)
	consultationsRepo := repository.NewPostgresConsultationsRepository(db)
	recommendationsRepo := repository.NewPostgresRecommendationsRepository(db)

	authService := service.NewAuthService(usersRepo, patientsRepo, kv,
		cfg.JWT.Secret, cfg.JWT.AccessTTLMin, cfg.JWT.RefreshTTLDays, log)
	patientService := service.NewPatientService(patientsRepo, log)
	assessmentService := service.NewAssessmentService(patientsRepo, assessmentsRepo, log)
	predictionService := service.NewPredictionService(patientsRepo, assessmentsRepo,
		predictionsRepo, invoker, categorizer, cfg.Models.Version, log)
	recommendationService := service.NewRecommendationService(patientsRepo, predictionsRepo,
		recommendationsRepo, cfg.Gemini, log)
	reportService := service.NewReportService(patientsRepo, assessmentsRepo, predictionsRepo, log)
	dashboardService := service.NewDashboardService(patientsRepo, predictionsRepo)
	consultationService := service.NewConsultationService(patientsRepo, consultationsRepo, log)

	router := httpapi.NewRouter(log)
	router.RegisterRoutes(&httpapi.Handlers{
		Auth:            httpapi.NewAuthHandler(authService, log),
		Patients:        httpapi.NewPatientHandler(patientService, log),
		Assessments:     httpapi.NewAssessmentHandler(assessmentService, log),
		Predictions:     httpapi.NewPredictionHandler(predictionService, log),
		Recommendations: httpapi.NewRecommendationHandler(recommendationService, log),
		Reports:         httpapi.NewReportHandler(reportService, log),
		Dashboard:       httpapi.NewDashboardHandler(dashboardService, log),
		Consultations:   httpapi.NewConsultationHandler(consultationService, log),
		Middleware:      httpapi.NewAuthMiddleware(authService),
	})

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server exited", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}
