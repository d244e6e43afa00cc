package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRisk(t *testing.T) {
	tests := []struct {
		label string
		want  RiskCategory
		ok    bool
	}{
		{"High", RiskHigh, true},
		{"high", RiskHigh, true},
		{"MEDIUM", RiskMedium, true},
		{" Low ", RiskLow, true},
		{"critical", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRisk(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestRiskCategory_String(t *testing.T) {
	assert.Equal(t, "high", RiskHigh.String())
	assert.Equal(t, "medium", RiskMedium.String())
	assert.Equal(t, "low", RiskLow.String())
}

func TestRiskCategory_Descriptor(t *testing.T) {
	assert.Equal(t, "Requires immediate intervention and support.", RiskHigh.Descriptor())
	assert.Equal(t, "Needs focused attention to improve academic trajectory.", RiskMedium.Descriptor())
	assert.Equal(t, "On track, but minor improvements can maximize potential.", RiskLow.Descriptor())

	// Unknown categories fall back to the medium-tier descriptor.
	assert.Equal(t, RiskMedium.Descriptor(), RiskCategory("weird").Descriptor())
}

func TestRiskCategory_GradeRange(t *testing.T) {
	assert.Equal(t, GradeRange{0, 9}, RiskHigh.GradeRange())
	assert.Equal(t, GradeRange{10, 13}, RiskMedium.GradeRange())
	assert.Equal(t, GradeRange{14, 20}, RiskLow.GradeRange())
}

func TestEstimateGrade_StaysWithinSubRange(t *testing.T) {
	confidences := []float64{0, 0.1, 0.25, 0.5, 0.73, 0.99, 1}

	for _, risk := range []RiskCategory{RiskHigh, RiskMedium, RiskLow} {
		gr := risk.GradeRange()
		for _, c := range confidences {
			got := EstimateGrade(risk, c)
			assert.GreaterOrEqual(t, got, gr.Lo, "risk %s conf %v", risk, c)
			assert.LessOrEqual(t, got, gr.Hi, "risk %s conf %v", risk, c)
		}
	}
}

func TestEstimateGrade_Interpolation(t *testing.T) {
	assert.Equal(t, 0, EstimateGrade(RiskHigh, 0))
	assert.Equal(t, 9, EstimateGrade(RiskHigh, 1))
	assert.Equal(t, 10, EstimateGrade(RiskMedium, 0))
	assert.Equal(t, 13, EstimateGrade(RiskMedium, 1))
	assert.Equal(t, 17, EstimateGrade(RiskLow, 0.5))
}

func TestEstimateGrade_ClampsConfidence(t *testing.T) {
	assert.Equal(t, EstimateGrade(RiskLow, 1), EstimateGrade(RiskLow, 2.5))
	assert.Equal(t, EstimateGrade(RiskLow, 0), EstimateGrade(RiskLow, -1))
}

func TestResult_Degraded(t *testing.T) {
	assert.False(t, Result{}.Degraded())
	assert.True(t, Result{AttributionFallback: true}.Degraded())
	assert.True(t, Result{AdviceFallback: true}.Degraded())
}
