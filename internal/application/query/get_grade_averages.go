package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GRADE AVERAGES QUERY
// Returns mean G1/G2/average_grade over stored assessments, cache-first.
// ══════════════════════════════════════════════════════════════════════════════

// GradeAveragesCache caches the aggregate between recomputations.
type GradeAveragesCache interface {
	// Get returns the cached aggregate, or (nil, nil) on a miss.
	Get(ctx context.Context) (*prediction.GradeAverages, error)

	// Set stores the aggregate.
	Set(ctx context.Context, averages *prediction.GradeAverages) error
}

// GetGradeAveragesResult contains the aggregate response.
type GetGradeAveragesResult struct {
	Averages    prediction.GradeAverages `json:"averages"`
	FromCache   bool                     `json:"from_cache"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// GetGradeAveragesHandler handles aggregate requests.
type GetGradeAveragesHandler struct {
	repo   prediction.Repository
	cache  GradeAveragesCache
	logger *logger.Logger
}

// NewGetGradeAveragesHandler creates a new aggregate query handler.
// cache may be nil; every request then recomputes from storage.
func NewGetGradeAveragesHandler(repo prediction.Repository, cache GradeAveragesCache, log *logger.Logger) *GetGradeAveragesHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetGradeAveragesHandler{repo: repo, cache: cache, logger: log}
}

// Handle executes the aggregate query. Cache failures fall through to the
// repository rather than failing the request.
func (h *GetGradeAveragesHandler) Handle(ctx context.Context) (*GetGradeAveragesResult, error) {
	if h.repo == nil {
		return nil, errors.New("get_grade_averages: no repository configured")
	}

	if h.cache != nil {
		cached, err := h.cache.Get(ctx)
		if err != nil {
			h.logger.Warn("grade averages cache read failed", logger.Err(err))
		}
		if err == nil && cached != nil {
			return &GetGradeAveragesResult{
				Averages:    *cached,
				FromCache:   true,
				GeneratedAt: time.Now().UTC(),
			}, nil
		}
	}

	averages, err := h.repo.GradeAverages(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_grade_averages: %w", err)
	}

	if h.cache != nil {
		// Best-effort repopulation.
		if err := h.cache.Set(ctx, averages); err != nil {
			h.logger.Warn("grade averages cache write failed", logger.Err(err))
		}
	}

	return &GetGradeAveragesResult{
		Averages:    *averages,
		FromCache:   false,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
