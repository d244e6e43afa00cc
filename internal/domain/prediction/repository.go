package prediction

import "context"

// Repository persists completed assessments for history and aggregate queries.
// Persistence is best-effort from the pipeline's point of view: a save failure
// never fails the assessment that produced it.
type Repository interface {
	// Save stores a completed assessment.
	Save(ctx context.Context, a *Assessment) error

	// ListRecent returns the most recent assessments, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Assessment, error)

	// GradeAverages returns mean G1/G2/average_grade over stored assessments.
	GradeAverages(ctx context.Context) (*GradeAverages, error)
}
