package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medml-backend/internal/domain"
)

// PostgresAssessmentsRepository 评估记录Repository实现
// Every table is append-only history; "latest" is max(assessed_at).
type PostgresAssessmentsRepository struct {
	db *sql.DB
}

func NewPostgresAssessmentsRepository(db *sql.DB) *PostgresAssessmentsRepository {
	return &PostgresAssessmentsRepository{db: db}
}

var _ AssessmentsRepository = (*PostgresAssessmentsRepository)(nil)

// ---- Diabetes ----

const diabetesColumns = `
	assessment_id::text,
	patient_id::text,
	pregnancies,
	glucose,
	blood_pressure,
	skin_thickness,
	insulin,
	diabetes_history,
	COALESCE(assessed_by_user_id::text, '') AS assessed_by_user_id,
	assessed_at
`

func (r *PostgresAssessmentsRepository) CreateDiabetes(ctx context.Context, a *domain.DiabetesAssessment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diabetes_assessments (
			assessment_id, patient_id, pregnancies, glucose, blood_pressure,
			skin_thickness, insulin, diabetes_history, assessed_by_user_id, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10)`,
		a.AssessmentID, a.PatientID, a.Pregnancies, a.Glucose, a.BloodPressure,
		a.SkinThickness, a.Insulin, a.DiabetesHistory, a.AssessedByUserID, a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diabetes assessment: %w", err)
	}
	return nil
}

func (r *PostgresAssessmentsRepository) LatestDiabetes(ctx context.Context, patientID string) (*domain.DiabetesAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+diabetesColumns+`
		FROM diabetes_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1`, patientID)
	a, err := scanDiabetes(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresAssessmentsRepository) ListDiabetes(ctx context.Context, patientID string) ([]*domain.DiabetesAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+diabetesColumns+`
		FROM diabetes_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diabetes assessments: %w", err)
	}
	defer rows.Close()

	var out []*domain.DiabetesAssessment
	for rows.Next() {
		a, err := scanDiabetes(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanDiabetes(row rowScanner) (*domain.DiabetesAssessment, error) {
	var a domain.DiabetesAssessment
	err := row.Scan(
		&a.AssessmentID, &a.PatientID, &a.Pregnancies, &a.Glucose,
		&a.BloodPressure, &a.SkinThickness, &a.Insulin, &a.DiabetesHistory,
		&a.AssessedByUserID, &a.AssessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan diabetes assessment: %w", err)
	}
	return &a, nil
}

// ---- Liver ----

const liverColumns = `
	assessment_id::text,
	patient_id::text,
	total_bilirubin,
	direct_bilirubin,
	alkaline_phosphotase,
	alamine_aminotransferase,
	aspartate_aminotransferase,
	total_proteins,
	albumin,
	COALESCE(assessed_by_user_id::text, '') AS assessed_by_user_id,
	assessed_at
`

func (r *PostgresAssessmentsRepository) CreateLiver(ctx context.Context, a *domain.LiverAssessment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO liver_assessments (
			assessment_id, patient_id, total_bilirubin, direct_bilirubin,
			alkaline_phosphotase, alamine_aminotransferase,
			aspartate_aminotransferase, total_proteins, albumin,
			assessed_by_user_id, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid, $11)`,
		a.AssessmentID, a.PatientID, a.TotalBilirubin, a.DirectBilirubin,
		a.AlkalinePhosphotase, a.AlamineAminotransferase,
		a.AspartateAminotransferase, a.TotalProteins, a.Albumin,
		a.AssessedByUserID, a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create liver assessment: %w", err)
	}
	return nil
}

func (r *PostgresAssessmentsRepository) LatestLiver(ctx context.Context, patientID string) (*domain.LiverAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+liverColumns+`
		FROM liver_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1`, patientID)
	a, err := scanLiver(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresAssessmentsRepository) ListLiver(ctx context.Context, patientID string) ([]*domain.LiverAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+liverColumns+`
		FROM liver_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liver assessments: %w", err)
	}
	defer rows.Close()

	var out []*domain.LiverAssessment
	for rows.Next() {
		a, err := scanLiver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanLiver(row rowScanner) (*domain.LiverAssessment, error) {
	var a domain.LiverAssessment
	err := row.Scan(
		&a.AssessmentID, &a.PatientID, &a.TotalBilirubin, &a.DirectBilirubin,
		&a.AlkalinePhosphotase, &a.AlamineAminotransferase,
		&a.AspartateAminotransferase, &a.TotalProteins, &a.Albumin,
		&a.AssessedByUserID, &a.AssessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan liver assessment: %w", err)
	}
	return &a, nil
}

// ---- Heart ----

const heartColumns = `
	assessment_id::text,
	patient_id::text,
	systolic_bp,
	diastolic_bp,
	cholesterol,
	hdl,
	ldl,
	triglycerides,
	has_diabetes,
	has_hypertension,
	smoker,
	family_history,
	stress_level,
	diet_quality,
	COALESCE(assessed_by_user_id::text, '') AS assessed_by_user_id,
	assessed_at
`

func (r *PostgresAssessmentsRepository) CreateHeart(ctx context.Context, a *domain.HeartAssessment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO heart_assessments (
			assessment_id, patient_id, systolic_bp, diastolic_bp, cholesterol,
			hdl, ldl, triglycerides, has_diabetes, has_hypertension, smoker,
			family_history, stress_level, diet_quality, assessed_by_user_id, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		          NULLIF($15, '')::uuid, $16)`,
		a.AssessmentID, a.PatientID, a.SystolicBP, a.DiastolicBP, a.Cholesterol,
		a.HDL, a.LDL, a.Triglycerides, a.HasDiabetes, a.HasHypertension, a.Smoker,
		a.FamilyHistory, a.StressLevel, a.DietQuality, a.AssessedByUserID, a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create heart assessment: %w", err)
	}
	return nil
}

func (r *PostgresAssessmentsRepository) LatestHeart(ctx context.Context, patientID string) (*domain.HeartAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+heartColumns+`
		FROM heart_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1`, patientID)
	a, err := scanHeart(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresAssessmentsRepository) ListHeart(ctx context.Context, patientID string) ([]*domain.HeartAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+heartColumns+`
		FROM heart_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list heart assessments: %w", err)
	}
	defer rows.Close()

	var out []*domain.HeartAssessment
	for rows.Next() {
		a, err := scanHeart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanHeart(row rowScanner) (*domain.HeartAssessment, error) {
	var a domain.HeartAssessment
	err := row.Scan(
		&a.AssessmentID, &a.PatientID, &a.SystolicBP, &a.DiastolicBP,
		&a.Cholesterol, &a.HDL, &a.LDL, &a.Triglycerides, &a.HasDiabetes,
		&a.HasHypertension, &a.Smoker, &a.FamilyHistory, &a.StressLevel,
		&a.DietQuality, &a.AssessedByUserID, &a.AssessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan heart assessment: %w", err)
	}
	return &a, nil
}

// ---- Mental health ----

const mentalHealthColumns = `
	assessment_id::text,
	patient_id::text,
	phq_score,
	gad_score,
	sleep_quality,
	prior_diagnosis,
	on_medication,
	COALESCE(mood_factors, '') AS mood_factors,
	COALESCE(assessed_by_user_id::text, '') AS assessed_by_user_id,
	assessed_at
`

func (r *PostgresAssessmentsRepository) CreateMentalHealth(ctx context.Context, a *domain.MentalHealthAssessment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mental_health_assessments (
			assessment_id, patient_id, phq_score, gad_score, sleep_quality,
			prior_diagnosis, on_medication, mood_factors, assessed_by_user_id, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, '')::uuid, $10)`,
		a.AssessmentID, a.PatientID, a.PHQScore, a.GADScore, a.SleepQuality,
		a.PriorDiagnosis, a.OnMedication, a.MoodFactors, a.AssessedByUserID, a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create mental health assessment: %w", err)
	}
	return nil
}

func (r *PostgresAssessmentsRepository) LatestMentalHealth(ctx context.Context, patientID string) (*domain.MentalHealthAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+mentalHealthColumns+`
		FROM mental_health_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1`, patientID)
	a, err := scanMentalHealth(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresAssessmentsRepository) ListMentalHealth(ctx context.Context, patientID string) ([]*domain.MentalHealthAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mentalHealthColumns+`
		FROM mental_health_assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mental health assessments: %w", err)
	}
	defer rows.Close()

	var out []*domain.MentalHealthAssessment
	for rows.Next() {
		a, err := scanMentalHealth(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanMentalHealth(row rowScanner) (*domain.MentalHealthAssessment, error) {
	var a domain.MentalHealthAssessment
	err := row.Scan(
		&a.AssessmentID, &a.PatientID, &a.PHQScore, &a.GADScore,
		&a.SleepQuality, &a.PriorDiagnosis, &a.OnMedication, &a.MoodFactors,
		&a.AssessedByUserID, &a.AssessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan mental health assessment: %w", err)
	}
	return &a, nil
}
