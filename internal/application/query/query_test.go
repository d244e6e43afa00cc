package query

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/pkg/logger"
)

type stubRepo struct {
	assessments []*prediction.Assessment
	averages    *prediction.GradeAverages
	listErr     error
	avgErr      error

	avgCalls int
}

func (r *stubRepo) Save(ctx context.Context, a *prediction.Assessment) error { return nil }

func (r *stubRepo) ListRecent(ctx context.Context, limit int) ([]*prediction.Assessment, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	if limit < len(r.assessments) {
		return r.assessments[:limit], nil
	}
	return r.assessments, nil
}

func (r *stubRepo) GradeAverages(ctx context.Context) (*prediction.GradeAverages, error) {
	r.avgCalls++
	if r.avgErr != nil {
		return nil, r.avgErr
	}
	return r.averages, nil
}

type stubCache struct {
	value  *prediction.GradeAverages
	getErr error
	setErr error

	sets int
}

func (c *stubCache) Get(ctx context.Context) (*prediction.GradeAverages, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.value, nil
}

func (c *stubCache) Set(ctx context.Context, averages *prediction.GradeAverages) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.value = averages
	return nil
}

func sampleAssessments(n int) []*prediction.Assessment {
	out := make([]*prediction.Assessment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &prediction.Assessment{
			ID:             "assessment-" + string(rune('a'+i)),
			CreatedAt:      time.Now().UTC(),
			School:         "GP",
			Sex:            "F",
			Age:            17,
			G1:             10 + i,
			G2:             11 + i,
			Risk:           prediction.RiskMedium,
			EstimatedGrade: 12,
			Confidence:     0.7,
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Assessment history
// ─────────────────────────────────────────────────────────────────────────────

func TestGetAssessmentHistory_ReturnsEntries(t *testing.T) {
	repo := &stubRepo{assessments: sampleAssessments(3)}
	h := NewGetAssessmentHistoryHandler(repo)

	res, err := h.Handle(context.Background(), GetAssessmentHistoryQuery{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, "assessment-a", res.Entries[0].AssessmentID)
	assert.Equal(t, "medium", res.Entries[0].RiskCategory)
	assert.False(t, res.GeneratedAt.IsZero())
}

func TestGetAssessmentHistory_DefaultAndMaxLimit(t *testing.T) {
	q := GetAssessmentHistoryQuery{}
	require.NoError(t, q.Validate())
	assert.Equal(t, 20, q.Limit)

	q = GetAssessmentHistoryQuery{Limit: 500}
	require.NoError(t, q.Validate())
	assert.Equal(t, 100, q.Limit)

	q = GetAssessmentHistoryQuery{Limit: -1}
	assert.Error(t, q.Validate())
}

func TestGetAssessmentHistory_RepositoryError(t *testing.T) {
	repo := &stubRepo{listErr: errors.New("database down")}
	h := NewGetAssessmentHistoryHandler(repo)

	_, err := h.Handle(context.Background(), GetAssessmentHistoryQuery{})
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Grade averages
// ─────────────────────────────────────────────────────────────────────────────

func TestGetGradeAverages_CacheHit(t *testing.T) {
	repo := &stubRepo{}
	cache := &stubCache{value: &prediction.GradeAverages{G1: 11.5, G2: 12.0, AverageGrade: 11.75, SampleCount: 40}}
	h := NewGetGradeAveragesHandler(repo, cache, nil)

	res, err := h.Handle(context.Background())
	require.NoError(t, err)

	assert.True(t, res.FromCache)
	assert.Equal(t, 11.75, res.Averages.AverageGrade)
	assert.Zero(t, repo.avgCalls)
}

func TestGetGradeAverages_CacheMissRepopulates(t *testing.T) {
	repo := &stubRepo{averages: &prediction.GradeAverages{G1: 10, G2: 11, AverageGrade: 10.5, SampleCount: 12}}
	cache := &stubCache{}
	h := NewGetGradeAveragesHandler(repo, cache, nil)

	res, err := h.Handle(context.Background())
	require.NoError(t, err)

	assert.False(t, res.FromCache)
	assert.Equal(t, 1, repo.avgCalls)
	assert.Equal(t, 1, cache.sets)
}

func TestGetGradeAverages_CacheErrorFallsThrough(t *testing.T) {
	repo := &stubRepo{averages: &prediction.GradeAverages{SampleCount: 5}}
	cache := &stubCache{getErr: errors.New("redis down")}
	h := NewGetGradeAveragesHandler(repo, cache, nil)

	res, err := h.Handle(context.Background())
	require.NoError(t, err)
	assert.False(t, res.FromCache)
}

func TestGetGradeAverages_CacheErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelWarn})

	repo := &stubRepo{averages: &prediction.GradeAverages{SampleCount: 5}}
	cache := &stubCache{getErr: errors.New("redis down"), setErr: errors.New("redis still down")}
	h := NewGetGradeAveragesHandler(repo, cache, log)

	_, err := h.Handle(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "grade averages cache read failed")
	assert.Contains(t, buf.String(), "grade averages cache write failed")
}

func TestGetGradeAverages_NilCache(t *testing.T) {
	repo := &stubRepo{averages: &prediction.GradeAverages{SampleCount: 1}}
	h := NewGetGradeAveragesHandler(repo, nil, nil)

	res, err := h.Handle(context.Background())
	require.NoError(t, err)
	assert.False(t, res.FromCache)
}
