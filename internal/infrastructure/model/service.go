package model

import (
	"log/slog"
	"strings"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// Classification is the outcome of encoding and classifying one record.
type Classification struct {
	// Vector is the encoded feature vector, reused by the explainer.
	Vector []float64

	// ClassIndex is the predicted class id.
	ClassIndex int

	// Risk is the decoded category.
	Risk prediction.RiskCategory

	// Confidence is the probability of the predicted class.
	Confidence float64

	// Probabilities maps class label to probability.
	Probabilities map[string]float64
}

// Service is the inference surface the application layer drives: encoding,
// classification, and explanation over one immutable artifact context.
type Service struct {
	ctx       *Context
	explainer *Explainer
	logger    *slog.Logger
}

// NewService creates a Service. ctx may be nil when artifacts failed to load;
// the service then reports not ready and every Classify call returns a
// model-unavailable error.
func NewService(ctx *Context, attribution AttributionConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	var ensemble *Ensemble
	if ctx != nil {
		ensemble = ctx.Classifier
	}

	return &Service{
		ctx:       ctx,
		explainer: NewExplainer(ensemble, attribution, logger),
		logger:    logger,
	}
}

// Ready reports whether artifacts are loaded and predictions can be served.
func (s *Service) Ready() bool {
	return s.ctx.Ready()
}

// Classify encodes the engineered record and runs the classifier.
func (s *Service) Classify(rec student.Record) (*Classification, error) {
	if !s.Ready() {
		return nil, shared.ErrClassifierNotLoaded
	}

	vector, unknown, err := BuildVector(rec, s.ctx.Encoders)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		// Lossy-but-available: out-of-domain values were encoded to the
		// default code instead of failing the request.
		s.logger.Warn("unknown categorical values encoded to default code",
			slog.String("fields", strings.Join(unknown, ",")))
	}

	classIdx, probs, err := s.ctx.Classifier.Predict(vector)
	if err != nil {
		return nil, err
	}

	label := s.ctx.Labels[classIdx]
	risk, ok := prediction.ParseRisk(label)
	if !ok {
		return nil, shared.WrapError("prediction", "Classify", shared.ErrInvalidFormat,
			"classifier returned unknown risk label "+label, nil)
	}

	probabilities := make(map[string]float64, len(probs))
	for i, p := range probs {
		probabilities[s.ctx.Labels[i]] = p
	}

	return &Classification{
		Vector:        vector,
		ClassIndex:    classIdx,
		Risk:          risk,
		Confidence:    probs[classIdx],
		Probabilities: probabilities,
	}, nil
}

// Explain produces the attribution list for a classification. The bool
// reports whether the fallback list was used.
func (s *Service) Explain(vector []float64, classIdx int) ([]prediction.Attribution, bool) {
	return s.explainer.Explain(vector, classIdx)
}
