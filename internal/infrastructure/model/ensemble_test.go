package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedVector(t *testing.T, avgGrade float64) []float64 {
	t.Helper()
	vector, _, err := BuildVector(baseRecord().WithDerivedFeatures(), testEncodingTable())
	require.NoError(t, err)
	vector[avgGradeColumn] = avgGrade
	return vector
}

func TestEnsemble_Validate(t *testing.T) {
	assert.NoError(t, testEnsemble().Validate())
}

func TestEnsemble_ValidateRejectsBrokenTrees(t *testing.T) {
	e := testEnsemble()
	e.Trees[0].Class = 7
	assert.Error(t, e.Validate())

	e = testEnsemble()
	e.Trees[0].Nodes[0].Feature = 99
	assert.Error(t, e.Validate())

	e = testEnsemble()
	e.Trees[0].Nodes[0].Left = -1
	assert.Error(t, e.Validate())
}

func TestPredict_ClassPerGradeBand(t *testing.T) {
	e := testEnsemble()

	tests := []struct {
		avgGrade  float64
		wantClass int
	}{
		{7.5, 0},  // High
		{9.5, 0},  // boundary stays High
		{11, 2},   // Medium
		{13.5, 2}, // boundary stays Medium
		{18.5, 1}, // Low
	}

	for _, tt := range tests {
		classIdx, probs, err := e.Predict(encodedVector(t, tt.avgGrade))
		require.NoError(t, err)
		assert.Equal(t, tt.wantClass, classIdx, "avg %v", tt.avgGrade)
		assert.Len(t, probs, 3)
	}
}

func TestPredictProba_SumsToOne(t *testing.T) {
	e := testEnsemble()

	for _, avg := range []float64{0, 5, 9.5, 10, 13, 14, 20} {
		probs, err := e.PredictProba(encodedVector(t, avg))
		require.NoError(t, err)

		var sum float64
		for _, p := range probs {
			sum += p
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "avg %v", avg)
	}
}

func TestPredict_ArgmaxConsistency(t *testing.T) {
	e := testEnsemble()

	for _, avg := range []float64{3, 7.5, 11, 12.9, 16, 19} {
		classIdx, probs, err := e.Predict(encodedVector(t, avg))
		require.NoError(t, err)

		best := 0
		for i := range probs {
			if probs[i] > probs[best] {
				best = i
			}
		}
		assert.Equal(t, best, classIdx, "avg %v", avg)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	e := testEnsemble()
	x := encodedVector(t, 11)

	c1, p1, err := e.Predict(x)
	require.NoError(t, err)
	c2, p2, err := e.Predict(x)
	require.NoError(t, err)

	assert.Equal(t, c1, c2)
	assert.Equal(t, p1, p2)
}

func TestPredictProba_WrongVectorLength(t *testing.T) {
	e := testEnsemble()
	_, err := e.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestSoftmax_StableForLargeScores(t *testing.T) {
	probs := softmax([]float64{1000, 999, 998})

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[1])
	assert.Greater(t, probs[1], probs[2])
}
