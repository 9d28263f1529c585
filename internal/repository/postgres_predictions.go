package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medml-backend/internal/domain"
)

// PostgresPredictionsRepository 风险预测快照Repository实现
// Snapshot rows are insert-only; nothing here mutates an existing row.
type PostgresPredictionsRepository struct {
	db *sql.DB
}

func NewPostgresPredictionsRepository(db *sql.DB) *PostgresPredictionsRepository {
	return &PostgresPredictionsRepository{db: db}
}

var _ PredictionsRepository = (*PostgresPredictionsRepository)(nil)

const predictionColumns = `
	prediction_id::text,
	patient_id::text,
	diabetes_score, diabetes_level,
	liver_score, liver_level,
	heart_score, heart_level,
	mental_health_score, mental_health_level,
	model_version,
	predicted_at
`

// CreatePrediction writes the whole snapshot as one row in one statement,
// so a half-populated snapshot is never visible to readers.
func (r *PostgresPredictionsRepository) CreatePrediction(ctx context.Context, p *domain.RiskPrediction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO risk_predictions (
			prediction_id, patient_id,
			diabetes_score, diabetes_level,
			liver_score, liver_level,
			heart_score, heart_level,
			mental_health_score, mental_health_level,
			model_version, predicted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.PredictionID, p.PatientID,
		p.Diabetes.Score, p.Diabetes.Level,
		p.Liver.Score, p.Liver.Level,
		p.Heart.Score, p.Heart.Level,
		p.MentalHealth.Score, p.MentalHealth.Level,
		p.ModelVersion, p.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create risk prediction: %w", err)
	}
	return nil
}

// LatestPrediction returns (nil, nil) when the patient has no snapshots.
func (r *PostgresPredictionsRepository) LatestPrediction(ctx context.Context, patientID string) (*domain.RiskPrediction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+predictionColumns+`
		FROM risk_predictions
		WHERE patient_id = $1
		ORDER BY predicted_at DESC
		LIMIT 1`, patientID)
	p, err := scanPrediction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PostgresPredictionsRepository) ListPredictions(ctx context.Context, patientID string) ([]*domain.RiskPrediction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM risk_predictions
		WHERE patient_id = $1
		ORDER BY predicted_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk predictions: %w", err)
	}
	defer rows.Close()

	var out []*domain.RiskPrediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountHighRiskPatients counts, per disease, the patients whose latest
// snapshot carries a High level. Used by the dashboard.
func (r *PostgresPredictionsRepository) CountHighRiskPatients(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH latest AS (
			SELECT DISTINCT ON (patient_id)
				diabetes_level, liver_level, heart_level, mental_health_level
			FROM risk_predictions
			ORDER BY patient_id, predicted_at DESC
		)
		SELECT
			COUNT(*) FILTER (WHERE diabetes_level = 'High'),
			COUNT(*) FILTER (WHERE liver_level = 'High'),
			COUNT(*) FILTER (WHERE heart_level = 'High'),
			COUNT(*) FILTER (WHERE mental_health_level = 'High')
		FROM latest`)
	if err != nil {
		return nil, fmt.Errorf("failed to count high-risk patients: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	if rows.Next() {
		var d, l, h, m int
		if err := rows.Scan(&d, &l, &h, &m); err != nil {
			return nil, fmt.Errorf("failed to scan high-risk counts: %w", err)
		}
		counts[domain.DiseaseDiabetes] = d
		counts[domain.DiseaseLiver] = l
		counts[domain.DiseaseHeart] = h
		counts[domain.DiseaseMentalHealth] = m
	}
	return counts, rows.Err()
}

func scanPrediction(row rowScanner) (*domain.RiskPrediction, error) {
	var p domain.RiskPrediction
	err := row.Scan(
		&p.PredictionID, &p.PatientID,
		&p.Diabetes.Score, &p.Diabetes.Level,
		&p.Liver.Score, &p.Liver.Level,
		&p.Heart.Score, &p.Heart.Level,
		&p.MentalHealth.Score, &p.MentalHealth.Level,
		&p.ModelVersion, &p.PredictedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan risk prediction: %w", err)
	}
	return &p, nil
}
