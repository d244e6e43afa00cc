package prediction

import "time"

// Attribution is a single (feature, signed importance) explanation entry.
type Attribution struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Result is the decision-and-explanation bundle produced per assessment.
// Created fresh per request; nothing in the pipeline mutates it afterwards.
type Result struct {
	// Risk is the predicted category.
	Risk RiskCategory

	// Confidence is the probability of the predicted class.
	Confidence float64

	// EstimatedGrade is the interpolated grade on the 0-20 scale.
	EstimatedGrade int

	// Probabilities maps class label to probability. Nil when the
	// classifier could not produce a probability vector.
	Probabilities map[string]float64

	// Attributions is sorted by descending absolute importance and capped.
	Attributions []Attribution

	// AttributionFallback is true when the static fallback list was
	// substituted for computed attribution.
	AttributionFallback bool

	// Advice is the mentoring narrative. Never empty: generation failures
	// substitute the templated per-tier fallback.
	Advice string

	// AdviceFallback is true when the templated fallback text was used.
	AdviceFallback bool
}

// Degraded reports whether any fallback was engaged for this result.
func (r Result) Degraded() bool {
	return r.AttributionFallback || r.AdviceFallback
}

// Assessment is a completed, persisted assessment: the inputs summary plus
// the result, identified for history queries.
type Assessment struct {
	ID        string
	CreatedAt time.Time

	// Input summary
	School   string
	Sex      string
	Age      int
	G1       int
	G2       int
	Failures int
	Absences int

	// Outcome
	Risk                RiskCategory
	EstimatedGrade      int
	Confidence          float64
	AttributionFallback bool
	AdviceFallback      bool
}

// GradeAverages holds dataset-level grade means over stored assessments.
type GradeAverages struct {
	G1           float64 `json:"g1"`
	G2           float64 `json:"g2"`
	AverageGrade float64 `json:"average_grade"`
	SampleCount  int     `json:"sample_count"`
}
