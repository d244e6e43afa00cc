package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

func TestSave_RejectsMalformedIDBeforeHittingTheDatabase(t *testing.T) {
	repo := NewAssessmentRepository(nil)

	err := repo.Save(context.Background(), &prediction.Assessment{
		ID:   "not-a-uuid",
		Risk: prediction.RiskMedium,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}
