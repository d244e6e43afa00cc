// Package prediction contains the risk category model, the grade estimation
// heuristic, and the assessment result entity.
package prediction

import (
	"math"
	"strings"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// RiskCategory is the classifier's output class. The label-decoding table is
// alphabetical, so class ids are High=0, Low=1, Medium=2.
type RiskCategory string

const (
	RiskHigh   RiskCategory = "High"
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
)

// ParseRisk maps a class label to a RiskCategory. The bool reports whether
// the label is recognized.
func ParseRisk(label string) (RiskCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high":
		return RiskHigh, true
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	default:
		return "", false
	}
}

// Label returns the training-time class label.
func (r RiskCategory) Label() string {
	return string(r)
}

// String returns the lowercase wire representation.
func (r RiskCategory) String() string {
	return strings.ToLower(string(r))
}

// IsValid reports whether the category is one of the three known tiers.
func (r RiskCategory) IsValid() bool {
	return r == RiskHigh || r == RiskMedium || r == RiskLow
}

// Descriptor returns the human-readable summary shown alongside the category.
func (r RiskCategory) Descriptor() string {
	switch r {
	case RiskHigh:
		return "Requires immediate intervention and support."
	case RiskMedium:
		return "Needs focused attention to improve academic trajectory."
	case RiskLow:
		return "On track, but minor improvements can maximize potential."
	default:
		return "Needs focused attention to improve academic trajectory."
	}
}

// GradeRange is the sub-range of the 0-20 scale owned by a risk tier.
type GradeRange struct {
	Lo int
	Hi int
}

// GradeRange returns the grade sub-range for the category. High risk maps to
// the bottom of the scale, low risk to the top.
func (r RiskCategory) GradeRange() GradeRange {
	switch r {
	case RiskHigh:
		return GradeRange{Lo: 0, Hi: 9}
	case RiskMedium:
		return GradeRange{Lo: 10, Hi: 13}
	case RiskLow:
		return GradeRange{Lo: 14, Hi: 20}
	default:
		return GradeRange{Lo: 10, Hi: 13}
	}
}

// DefaultConfidence is used when class probabilities are unavailable.
const DefaultConfidence = 0.5

// EstimateGrade interpolates within the category's grade sub-range by
// confidence. This is a display heuristic approximating the final grade,
// not a regression output. Confidence outside [0,1] is clamped.
func EstimateGrade(risk RiskCategory, confidence float64) int {
	if math.IsNaN(confidence) {
		confidence = DefaultConfidence
	}
	c := shared.Confidence(confidence).Clamp()

	gr := risk.GradeRange()
	g := shared.Grade(gr.Lo + int(math.Round(float64(gr.Hi-gr.Lo)*c.Float64())))
	return g.Int()
}
