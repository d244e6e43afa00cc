// Package eventhandler contains subscribers for domain events.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON HIGH RISK HANDLER
// Reacts to a high risk classification by notifying faculty. Runs on the
// event bus worker pool, so alert latency and failures never touch the
// assessment that raised the event.
// ═══════════════════════════════════════════════════════════════════════════

// HighRiskAlert is the notification payload handed to the alert channel.
type HighRiskAlert struct {
	AssessmentID   string
	EstimatedGrade int
	Confidence     float64
	G1             int
	G2             int
	Failures       int
	Absences       int
	DetectedAt     time.Time
}

// Alerter delivers a high risk alert over some external channel.
type Alerter interface {
	SendHighRiskAlert(ctx context.Context, alert HighRiskAlert) error
}

// OnHighRiskHandler handles risk.high_detected events.
type OnHighRiskHandler struct {
	alerter Alerter
	logger  *slog.Logger
	config  HighRiskConfig
}

// HighRiskConfig contains configuration for the handler.
type HighRiskConfig struct {
	// AlertTimeout bounds one delivery attempt, retries included.
	AlertTimeout time.Duration
}

// DefaultHighRiskConfig returns default configuration.
func DefaultHighRiskConfig() HighRiskConfig {
	return HighRiskConfig{
		AlertTimeout: 30 * time.Second,
	}
}

// NewOnHighRiskHandler creates a new high risk event handler.
func NewOnHighRiskHandler(alerter Alerter, logger *slog.Logger, config HighRiskConfig) *OnHighRiskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.AlertTimeout <= 0 {
		config = DefaultHighRiskConfig()
	}

	return &OnHighRiskHandler{
		alerter: alerter,
		logger:  logger.With("handler", "on_high_risk"),
		config:  config,
	}
}

// Register subscribes the handler on the bus.
func (h *OnHighRiskHandler) Register(subscriber shared.EventSubscriber) error {
	return subscriber.Subscribe(shared.EventHighRiskDetected, h.Handle)
}

// Handle processes one high risk event. Implements shared.EventHandler.
func (h *OnHighRiskHandler) Handle(event shared.Event) error {
	riskEvent, ok := event.(shared.HighRiskDetectedEvent)
	if !ok {
		h.logger.Warn("received non-HighRiskDetectedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing high risk alert",
		"assessment_id", riskEvent.AssessmentID,
		"estimated_grade", riskEvent.EstimatedGrade,
		"confidence", riskEvent.Confidence,
	)

	if h.alerter == nil {
		h.logger.Debug("no alert channel configured, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.AlertTimeout)
	defer cancel()

	alert := HighRiskAlert{
		AssessmentID:   riskEvent.AssessmentID,
		EstimatedGrade: riskEvent.EstimatedGrade,
		Confidence:     riskEvent.Confidence,
		G1:             riskEvent.G1,
		G2:             riskEvent.G2,
		Failures:       riskEvent.Failures,
		Absences:       riskEvent.Absences,
		DetectedAt:     riskEvent.OccurredAt(),
	}

	if err := h.alerter.SendHighRiskAlert(ctx, alert); err != nil {
		h.logger.Error("high risk alert delivery failed",
			"assessment_id", riskEvent.AssessmentID,
			"error", err,
		)
		return err
	}

	h.logger.Info("high risk alert delivered",
		"assessment_id", riskEvent.AssessmentID,
	)
	return nil
}
