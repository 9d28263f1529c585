package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medml-backend/internal/domain"
)

// PostgresRecommendationsRepository 生活方式建议模板Repository实现
type PostgresRecommendationsRepository struct {
	db *sql.DB
}

func NewPostgresRecommendationsRepository(db *sql.DB) *PostgresRecommendationsRepository {
	return &PostgresRecommendationsRepository{db: db}
}

var _ RecommendationsRepository = (*PostgresRecommendationsRepository)(nil)

func (r *PostgresRecommendationsRepository) ListRecommendations(ctx context.Context, diseaseType, riskLevel string) ([]*domain.LifestyleRecommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT recommendation_id::text, disease_type, risk_level, category, recommendation_text
		FROM lifestyle_recommendations
		WHERE disease_type = $1 AND risk_level = $2
		ORDER BY category, recommendation_text`, diseaseType, riskLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var out []*domain.LifestyleRecommendation
	for rows.Next() {
		var rec domain.LifestyleRecommendation
		if err := rows.Scan(
			&rec.RecommendationID, &rec.DiseaseType, &rec.RiskLevel,
			&rec.Category, &rec.Text,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
