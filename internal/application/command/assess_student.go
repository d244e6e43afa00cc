// Package command contains write operations (CQRS - Commands).
// Commands run the assessment pipeline and change system state.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edurisk/student-risk-hub/internal/domain/advice"
	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
	"github.com/edurisk/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESS STUDENT COMMAND
// Runs the full pipeline: validation, feature engineering, classification,
// grade estimation, attribution, and advice composition.
// ══════════════════════════════════════════════════════════════════════════════

// Stage identifies how far an assessment progressed through the pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageValidated  Stage = "validated"
	StageClassified Stage = "classified"
	StageExplained  Stage = "explained"
	StageComposed   Stage = "composed"
	StageResponded  Stage = "responded"
	StageRejected   Stage = "rejected"
)

// AssessStudentCommand contains one student record to assess.
type AssessStudentCommand struct {
	// Record is the raw student record as received.
	Record student.Record

	// CustomPrompt is the optional extra instruction for advice generation.
	CustomPrompt string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the record and the optional custom prompt. The cleaned
// prompt is returned so sanitization happens exactly once.
func (c AssessStudentCommand) Validate() (string, error) {
	if err := c.Record.Validate(); err != nil {
		return "", err
	}

	cleaned, err := advice.SanitizeCustomPrompt(c.CustomPrompt)
	if err != nil {
		return "", err
	}

	return cleaned, nil
}

// AssessStudentResult contains the outcome of one assessment.
type AssessStudentResult struct {
	// AssessmentID identifies this assessment in history queries.
	AssessmentID string

	// Result is the decision-and-explanation bundle.
	Result prediction.Result

	// Stage is the final pipeline stage reached.
	Stage Stage

	// CreatedAt is when the assessment completed.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// RiskClassification is the classifier output consumed by the pipeline.
type RiskClassification struct {
	// Vector is the encoded feature vector, reused for attribution.
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

// RiskModel is the inference surface the pipeline drives.
type RiskModel interface {
	// Ready reports whether model artifacts are loaded.
	Ready() bool

	// Classify encodes and classifies an engineered record.
	Classify(rec student.Record) (*RiskClassification, error)

	// Explain returns the attribution list for a classification.
	// The bool reports whether the static fallback list was used.
	Explain(vector []float64, classIdx int) ([]prediction.Attribution, bool)
}

// AdviceGenerator produces the mentoring narrative from a composed prompt.
type AdviceGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AssessStudentHandler handles the AssessStudentCommand.
type AssessStudentHandler struct {
	model          RiskModel
	adviceGen      AdviceGenerator
	repo           prediction.Repository
	eventPublisher shared.EventPublisher
	logger         *logger.Logger

	adviceTimeout time.Duration
}

// AssessStudentHandlerConfig contains configuration for the handler.
type AssessStudentHandlerConfig struct {
	// AdviceTimeout bounds the single advice generation attempt.
	AdviceTimeout time.Duration
}

// DefaultAssessStudentHandlerConfig returns default configuration.
func DefaultAssessStudentHandlerConfig() AssessStudentHandlerConfig {
	return AssessStudentHandlerConfig{
		AdviceTimeout: 20 * time.Second,
	}
}

// NewAssessStudentHandler creates a new AssessStudentHandler. adviceGen, repo,
// and eventPublisher may be nil; the pipeline then degrades to fallback advice,
// skips persistence, or skips event publication respectively.
func NewAssessStudentHandler(
	model RiskModel,
	adviceGen AdviceGenerator,
	repo prediction.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
	config AssessStudentHandlerConfig,
) *AssessStudentHandler {
	if config.AdviceTimeout <= 0 {
		config = DefaultAssessStudentHandlerConfig()
	}
	if log == nil {
		log = logger.Default()
	}

	return &AssessStudentHandler{
		model:          model,
		adviceGen:      adviceGen,
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         log,
		adviceTimeout:  config.AdviceTimeout,
	}
}

// Handle executes the assessment pipeline. Validation and classification
// failures abort the assessment; attribution and advice failures degrade it
// with documented fallbacks instead.
func (h *AssessStudentHandler) Handle(ctx context.Context, cmd AssessStudentCommand) (*AssessStudentResult, error) {
	assessmentID := uuid.NewString()
	log := h.logger.With(logger.AssessmentID(assessmentID))
	if cmd.CorrelationID != "" {
		log = log.With(logger.String("correlation_id", cmd.CorrelationID))
	}

	log.Debug("assessment received", logger.Stage(string(StageReceived)))

	// Validation: reject before touching the model.
	customPrompt, err := cmd.Validate()
	if err != nil {
		log.Info("assessment rejected",
			logger.Stage(string(StageRejected)),
			logger.Err(err),
		)
		h.publishRejection(assessmentID, cmd.CorrelationID, err)
		return nil, err
	}

	// Feature engineering: derived features overwrite any inbound values.
	rec := cmd.Record.WithDerivedFeatures()
	log.Debug("record validated", logger.Stage(string(StageValidated)))

	if h.model == nil || !h.model.Ready() {
		return nil, shared.ErrClassifierNotLoaded
	}

	cls, err := h.model.Classify(rec)
	if err != nil {
		return nil, fmt.Errorf("assess_student: classification failed: %w", err)
	}

	estimatedGrade := prediction.EstimateGrade(cls.Risk, cls.Confidence)
	log.Info("record classified",
		logger.Stage(string(StageClassified)),
		logger.RiskCategory(cls.Risk.String()),
		logger.Confidence(cls.Confidence),
		logger.EstimatedGrade(estimatedGrade),
	)

	attrs, attrFallback := h.model.Explain(cls.Vector, cls.ClassIndex)
	if attrFallback {
		log.Warn("attribution degraded to static fallback",
			logger.Stage(string(StageExplained)),
			logger.FallbackUsed(true),
		)
	}

	adviceText, adviceFallback := h.generateAdvice(ctx, log, rec, estimatedGrade, cls.Risk, attrs, customPrompt)

	result := prediction.Result{
		Risk:                cls.Risk,
		Confidence:          cls.Confidence,
		EstimatedGrade:      estimatedGrade,
		Probabilities:       cls.Probabilities,
		Attributions:        attrs,
		AttributionFallback: attrFallback,
		Advice:              adviceText,
		AdviceFallback:      adviceFallback,
	}

	now := time.Now().UTC()
	h.publishEvents(assessmentID, rec, result, cmd.CorrelationID)
	h.persist(ctx, log, assessmentID, now, rec, result)

	log.Info("assessment completed",
		logger.Stage(string(StageResponded)),
		logger.Bool("degraded", result.Degraded()),
	)

	return &AssessStudentResult{
		AssessmentID: assessmentID,
		Result:       result,
		Stage:        StageResponded,
		CreatedAt:    now,
	}, nil
}

// generateAdvice runs the single time-bounded generation attempt. Any failure
// or empty response substitutes the templated per-tier fallback.
func (h *AssessStudentHandler) generateAdvice(
	ctx context.Context,
	log *logger.Logger,
	rec student.Record,
	estimatedGrade int,
	risk prediction.RiskCategory,
	attrs []prediction.Attribution,
	customPrompt string,
) (string, bool) {
	if h.adviceGen == nil {
		return advice.FallbackAdvice(risk), true
	}

	prompt := advice.BuildPrompt(rec, estimatedGrade, risk, attrs, customPrompt)

	adviceCtx, cancel := context.WithTimeout(ctx, h.adviceTimeout)
	defer cancel()

	text, err := h.adviceGen.Generate(adviceCtx, prompt)
	if err != nil || text == "" {
		log.Warn("advice generation degraded to fallback",
			logger.Stage(string(StageComposed)),
			logger.FallbackUsed(true),
			logger.Err(err),
		)
		return advice.FallbackAdvice(risk), true
	}

	log.Debug("advice composed", logger.Stage(string(StageComposed)))
	return text, false
}

// publishRejection emits the rejection event. Fire and forget.
func (h *AssessStudentHandler) publishRejection(assessmentID, correlationID string, cause error) {
	if h.eventPublisher == nil {
		return
	}

	rejected := shared.NewAssessmentRejectedEvent(assessmentID, cause.Error())
	rejected.BaseEvent = rejected.BaseEvent.WithCorrelationID(correlationID)
	if err := h.eventPublisher.Publish(rejected); err != nil {
		h.logger.Warn("failed to publish rejection event", logger.Err(err))
	}
}

// publishEvents emits completion and, for high risk, the alert trigger.
// Publication is fire and forget.
func (h *AssessStudentHandler) publishEvents(assessmentID string, rec student.Record, result prediction.Result, correlationID string) {
	if h.eventPublisher == nil {
		return
	}

	completed := shared.NewAssessmentCompletedEvent(
		assessmentID, result.Risk.String(), result.EstimatedGrade, result.Confidence, result.Degraded())
	completed.BaseEvent = completed.BaseEvent.WithCorrelationID(correlationID)
	if err := h.eventPublisher.Publish(completed); err != nil {
		h.logger.Warn("failed to publish completion event", logger.Err(err))
	}

	if result.Risk != prediction.RiskHigh {
		return
	}

	highRisk := shared.NewHighRiskDetectedEvent(
		assessmentID, result.EstimatedGrade, result.Confidence,
		rec.G1, rec.G2, rec.Failures, rec.Absences)
	highRisk.BaseEvent = highRisk.BaseEvent.WithCorrelationID(correlationID)
	if err := h.eventPublisher.Publish(highRisk); err != nil {
		h.logger.Warn("failed to publish high risk event", logger.Err(err))
	}
}

// persist stores the assessment for history queries. Best-effort: a storage
// failure is logged, never surfaced to the caller.
func (h *AssessStudentHandler) persist(ctx context.Context, log *logger.Logger, assessmentID string, createdAt time.Time, rec student.Record, result prediction.Result) {
	if h.repo == nil {
		return
	}

	assessment := &prediction.Assessment{
		ID:                  assessmentID,
		CreatedAt:           createdAt,
		School:              rec.School,
		Sex:                 rec.Sex,
		Age:                 rec.Age,
		G1:                  rec.G1,
		G2:                  rec.G2,
		Failures:            rec.Failures,
		Absences:            rec.Absences,
		Risk:                result.Risk,
		EstimatedGrade:      result.EstimatedGrade,
		Confidence:          result.Confidence,
		AttributionFallback: result.AttributionFallback,
		AdviceFallback:      result.AdviceFallback,
	}

	if err := h.repo.Save(ctx, assessment); err != nil {
		log.Warn("failed to persist assessment", logger.Err(err))
	}
}
