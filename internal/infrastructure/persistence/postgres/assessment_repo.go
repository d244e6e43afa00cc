package postgres

import (
	"context"
	"fmt"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// AssessmentRepository implements prediction.Repository on PostgreSQL.
type AssessmentRepository struct {
	conn *Connection
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(conn *Connection) *AssessmentRepository {
	return &AssessmentRepository{conn: conn}
}

// Save stores a completed assessment. The id column is a uuid, so a
// malformed identifier is rejected here with a domain error instead of
// surfacing as a driver error.
func (r *AssessmentRepository) Save(ctx context.Context, a *prediction.Assessment) error {
	if _, err := shared.NewAssessmentID(a.ID); err != nil {
		return fmt.Errorf("postgres: refusing to save assessment %q: %w", a.ID, err)
	}

	query := `
		INSERT INTO assessments (
			id, created_at,
			school, sex, age, g1, g2, failures, absences,
			risk_category, estimated_grade, confidence,
			attribution_fallback, advice_fallback
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.Exec(ctx, query,
		a.ID, a.CreatedAt,
		a.School, a.Sex, a.Age, a.G1, a.G2, a.Failures, a.Absences,
		a.Risk.Label(), a.EstimatedGrade, a.Confidence,
		a.AttributionFallback, a.AdviceFallback,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save assessment %s: %w", a.ID, err)
	}

	return nil
}

// ListRecent returns the most recent assessments, newest first.
func (r *AssessmentRepository) ListRecent(ctx context.Context, limit int) ([]*prediction.Assessment, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT
			id, created_at,
			school, sex, age, g1, g2, failures, absences,
			risk_category, estimated_grade, confidence,
			attribution_fallback, advice_fallback
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]*prediction.Assessment, 0, limit)
	for rows.Next() {
		var a prediction.Assessment
		var riskLabel string

		if err := rows.Scan(
			&a.ID, &a.CreatedAt,
			&a.School, &a.Sex, &a.Age, &a.G1, &a.G2, &a.Failures, &a.Absences,
			&riskLabel, &a.EstimatedGrade, &a.Confidence,
			&a.AttributionFallback, &a.AdviceFallback,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan assessment row: %w", err)
		}

		risk, ok := prediction.ParseRisk(riskLabel)
		if !ok {
			return nil, fmt.Errorf("postgres: stored assessment %s has unknown risk category %q", a.ID, riskLabel)
		}
		a.Risk = risk

		assessments = append(assessments, &a)
	}

	return assessments, rows.Err()
}

// GradeAverages returns mean G1/G2/average_grade over stored assessments.
// Returns a zero-sample aggregate, not an error, when no assessments exist.
func (r *AssessmentRepository) GradeAverages(ctx context.Context) (*prediction.GradeAverages, error) {
	query := `
		SELECT
			COALESCE(AVG(g1), 0),
			COALESCE(AVG(g2), 0),
			COALESCE(AVG((g1 + g2) / 2.0), 0),
			COUNT(*)
		FROM assessments
	`

	var averages prediction.GradeAverages
	err := r.conn.QueryRow(ctx, query).Scan(
		&averages.G1,
		&averages.G2,
		&averages.AverageGrade,
		&averages.SampleCount,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to compute grade averages: %w", err)
	}

	return &averages, nil
}

// compile-time interface check
var _ prediction.Repository = (*AssessmentRepository)(nil)
