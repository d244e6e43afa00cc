package model

import (
	"github.com/edurisk/student-risk-hub/internal/application/command"
	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// CommandAdapter exposes the Service through the application pipeline's
// RiskModel interface.
type CommandAdapter struct {
	svc *Service
}

// NewCommandAdapter creates an adapter over a Service.
func NewCommandAdapter(svc *Service) *CommandAdapter {
	return &CommandAdapter{svc: svc}
}

// Ready implements command.RiskModel.
func (a *CommandAdapter) Ready() bool {
	return a.svc.Ready()
}

// Classify implements command.RiskModel.
func (a *CommandAdapter) Classify(rec student.Record) (*command.RiskClassification, error) {
	c, err := a.svc.Classify(rec)
	if err != nil {
		return nil, err
	}
	return &command.RiskClassification{
		Vector:        c.Vector,
		ClassIndex:    c.ClassIndex,
		Risk:          c.Risk,
		Confidence:    c.Confidence,
		Probabilities: c.Probabilities,
	}, nil
}

// Explain implements command.RiskModel.
func (a *CommandAdapter) Explain(vector []float64, classIdx int) ([]prediction.Attribution, bool) {
	return a.svc.Explain(vector, classIdx)
}
