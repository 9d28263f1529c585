package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medml-backend/internal/domain"
)

// PostgresPatientsRepository 患者Repository实现
type PostgresPatientsRepository struct {
	db *sql.DB
}

func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

const patientColumns = `
	patient_id::text,
	full_name,
	age,
	gender,
	height_cm,
	weight_kg,
	abha_id,
	password_hash,
	COALESCE(state_name, '') AS state_name,
	created_by_user_id::text,
	created_at
`

func (r *PostgresPatientsRepository) CreatePatient(ctx context.Context, p *domain.Patient) error {
	if p.PatientID == "" || p.AbhaID == "" {
		return fmt.Errorf("patient_id and abha_id are required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (
			patient_id, full_name, age, gender, height_cm, weight_kg,
			abha_id, password_hash, state_name, created_by_user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)`,
		p.PatientID, p.FullName, p.Age, p.Gender, p.HeightCM, p.WeightKG,
		p.AbhaID, p.PasswordHash, p.StateName, p.CreatedByUserID, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAbhaID
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *PostgresPatientsRepository) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE patient_id = $1`, patientID)
	return scanPatient(row)
}

func (r *PostgresPatientsRepository) GetPatientByAbhaID(ctx context.Context, abhaID string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE abha_id = $1`, abhaID)
	return scanPatient(row)
}

// ListPatients returns patients newest-first. When both risk filter fields
// are set, only patients whose latest snapshot matches the level are
// returned (one row per patient via DISTINCT ON).
func (r *PostgresPatientsRepository) ListPatients(ctx context.Context, filter PatientFilter) ([]*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients p`
	var args []any
	if filter.RiskDisease != "" && filter.RiskLevel != "" {
		col, err := levelColumn(filter.RiskDisease)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(`
			JOIN (
				SELECT DISTINCT ON (patient_id) patient_id, %s AS level
				FROM risk_predictions
				ORDER BY patient_id, predicted_at DESC
			) rp ON rp.patient_id = p.patient_id AND rp.level = $1`, col)
		args = append(args, filter.RiskLevel)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *PostgresPatientsRepository) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET full_name = $2, age = $3, gender = $4, height_cm = $5,
		    weight_kg = $6, state_name = NULLIF($7, '')
		WHERE patient_id = $1`,
		p.PatientID, p.FullName, p.Age, p.Gender, p.HeightCM, p.WeightKG, p.StateName,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

// DeletePatient removes the patient; assessments, predictions and
// consultations go with it via ON DELETE CASCADE.
func (r *PostgresPatientsRepository) DeletePatient(ctx context.Context, patientID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM patients WHERE patient_id = $1`, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

func (r *PostgresPatientsRepository) CountPatients(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(
		&p.PatientID,
		&p.FullName,
		&p.Age,
		&p.Gender,
		&p.HeightCM,
		&p.WeightKG,
		&p.AbhaID,
		&p.PasswordHash,
		&p.StateName,
		&p.CreatedByUserID,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}
	return &p, nil
}

func levelColumn(disease string) (string, error) {
	switch disease {
	case domain.DiseaseDiabetes:
		return "diabetes_level", nil
	case domain.DiseaseLiver:
		return "liver_level", nil
	case domain.DiseaseHeart:
		return "heart_level", nil
	case domain.DiseaseMentalHealth:
		return "mental_health_level", nil
	}
	return "", fmt.Errorf("unknown disease key %q", disease)
}
