package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medml-backend/internal/domain"
)

// PostgresConsultationsRepository 预约Repository实现
type PostgresConsultationsRepository struct {
	db *sql.DB
}

func NewPostgresConsultationsRepository(db *sql.DB) *PostgresConsultationsRepository {
	return &PostgresConsultationsRepository{db: db}
}

var _ ConsultationsRepository = (*PostgresConsultationsRepository)(nil)

const consultationColumns = `
	consultation_id::text,
	patient_id::text,
	admin_id::text,
	consultation_type,
	consultation_datetime,
	COALESCE(notes, '') AS notes,
	status,
	created_at
`

func (r *PostgresConsultationsRepository) CreateConsultation(ctx context.Context, c *domain.Consultation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO consultations (
			consultation_id, patient_id, admin_id, consultation_type,
			consultation_datetime, notes, status, created_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`,
		c.ConsultationID, c.PatientID, c.AdminID, c.Type,
		c.ScheduledAt, c.Notes, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *PostgresConsultationsRepository) GetConsultation(ctx context.Context, consultationID string) (*domain.Consultation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+consultationColumns+` FROM consultations WHERE consultation_id = $1`,
		consultationID)
	var c domain.Consultation
	err := row.Scan(
		&c.ConsultationID, &c.PatientID, &c.AdminID, &c.Type,
		&c.ScheduledAt, &c.Notes, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan consultation: %w", err)
	}
	return &c, nil
}

func (r *PostgresConsultationsRepository) ListConsultationsByPatient(ctx context.Context, patientID string) ([]*domain.Consultation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE patient_id = $1
		ORDER BY consultation_datetime DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Consultation
	for rows.Next() {
		var c domain.Consultation
		if err := rows.Scan(
			&c.ConsultationID, &c.PatientID, &c.AdminID, &c.Type,
			&c.ScheduledAt, &c.Notes, &c.Status, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresConsultationsRepository) UpdateConsultationStatus(ctx context.Context, consultationID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE consultations SET status = $2 WHERE consultation_id = $1`,
		consultationID, status)
	if err != nil {
		return fmt.Errorf("failed to update consultation status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
