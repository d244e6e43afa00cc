// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// AssessmentID represents a unique assessment identifier (UUID format).
type AssessmentID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the assessment ID is a valid UUID.
func (a AssessmentID) IsValid() bool {
	return uuidRegex.MatchString(string(a))
}

// String returns the string representation.
func (a AssessmentID) String() string {
	return string(a)
}

// NewAssessmentID creates a new AssessmentID with validation.
func NewAssessmentID(id string) (AssessmentID, error) {
	aid := AssessmentID(strings.ToLower(strings.TrimSpace(id)))
	if !aid.IsValid() {
		return "", NewDomainError("shared", "NewAssessmentID", ErrInvalidFormat, "invalid assessment ID format")
	}
	return aid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Confidence represents a classifier confidence in the [0, 1] range.
type Confidence float64

// IsValid checks if the confidence is within [0, 1].
func (c Confidence) IsValid() bool {
	return c >= 0 && c <= 1
}

// Float64 returns the underlying float64 value.
func (c Confidence) Float64() float64 {
	return float64(c)
}

// Clamp returns the confidence clamped to [0, 1].
func (c Confidence) Clamp() Confidence {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Grade represents a final grade on the 0-20 scale.
type Grade int

// Grade scale bounds.
const (
	GradeMin Grade = 0
	GradeMax Grade = 20
)

// IsValid checks if the grade is within the 0-20 scale.
func (g Grade) IsValid() bool {
	return g >= GradeMin && g <= GradeMax
}

// Int returns the underlying int value.
func (g Grade) Int() int {
	return int(g)
}
