// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ASSESSMENT HISTORY QUERY
// Returns the most recent completed assessments, newest first.
// ══════════════════════════════════════════════════════════════════════════════

// GetAssessmentHistoryQuery contains the history request parameters.
type GetAssessmentHistoryQuery struct {
	// Limit is the number of entries (default 20, maximum 100).
	Limit int
}

// Validate checks the request parameters and applies defaults.
func (q *GetAssessmentHistoryQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	return nil
}

// AssessmentEntryDTO is one history entry.
type AssessmentEntryDTO struct {
	AssessmentID   string    `json:"assessment_id"`
	CreatedAt      time.Time `json:"created_at"`
	School         string    `json:"school"`
	Sex            string    `json:"sex"`
	Age            int       `json:"age"`
	G1             int       `json:"g1"`
	G2             int       `json:"g2"`
	Failures       int       `json:"failures"`
	Absences       int       `json:"absences"`
	RiskCategory   string    `json:"risk_category"`
	EstimatedGrade int       `json:"estimated_grade"`
	Confidence     float64   `json:"confidence"`
	Degraded       bool      `json:"degraded"`
}

// GetAssessmentHistoryResult contains the history response.
type GetAssessmentHistoryResult struct {
	Entries     []AssessmentEntryDTO `json:"entries"`
	Count       int                  `json:"count"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// GetAssessmentHistoryHandler handles history requests.
type GetAssessmentHistoryHandler struct {
	repo prediction.Repository
}

// NewGetAssessmentHistoryHandler creates a new history query handler.
func NewGetAssessmentHistoryHandler(repo prediction.Repository) *GetAssessmentHistoryHandler {
	return &GetAssessmentHistoryHandler{repo: repo}
}

// Handle executes the history query.
func (h *GetAssessmentHistoryHandler) Handle(ctx context.Context, q GetAssessmentHistoryQuery) (*GetAssessmentHistoryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_assessment_history: %w", err)
	}
	if h.repo == nil {
		return nil, errors.New("get_assessment_history: no repository configured")
	}

	assessments, err := h.repo.ListRecent(ctx, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("get_assessment_history: %w", err)
	}

	entries := make([]AssessmentEntryDTO, 0, len(assessments))
	for _, a := range assessments {
		entries = append(entries, AssessmentEntryDTO{
			AssessmentID:   a.ID,
			CreatedAt:      a.CreatedAt,
			School:         a.School,
			Sex:            a.Sex,
			Age:            a.Age,
			G1:             a.G1,
			G2:             a.G2,
			Failures:       a.Failures,
			Absences:       a.Absences,
			RiskCategory:   a.Risk.String(),
			EstimatedGrade: a.EstimatedGrade,
			Confidence:     a.Confidence,
			Degraded:       a.AttributionFallback || a.AdviceFallback,
		})
	}

	return &GetAssessmentHistoryResult{
		Entries:     entries,
		Count:       len(entries),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
