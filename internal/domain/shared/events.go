// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened during an assessment.
const (
	// Assessment events
	EventAssessmentCompleted EventType = "assessment.completed"
	EventAssessmentRejected  EventType = "assessment.rejected"

	// Risk events
	EventHighRiskDetected EventType = "risk.high_detected"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Assessment Events
// ═══════════════════════════════════════════════════════════════════════════

// AssessmentCompletedEvent is emitted when an assessment finishes successfully.
type AssessmentCompletedEvent struct {
	BaseEvent
	AssessmentID   string  `json:"assessment_id"`
	RiskCategory   string  `json:"risk_category"`
	EstimatedGrade int     `json:"estimated_grade"`
	Confidence     float64 `json:"confidence"`
	Degraded       bool    `json:"degraded"`
}

// Payload implements Event interface.
func (e AssessmentCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id":   e.AssessmentID,
		"risk_category":   e.RiskCategory,
		"estimated_grade": e.EstimatedGrade,
		"confidence":      e.Confidence,
		"degraded":        e.Degraded,
	}
}

// NewAssessmentCompletedEvent creates a new AssessmentCompletedEvent.
func NewAssessmentCompletedEvent(assessmentID, riskCategory string, estimatedGrade int, confidence float64, degraded bool) AssessmentCompletedEvent {
	return AssessmentCompletedEvent{
		BaseEvent:      NewBaseEvent(EventAssessmentCompleted, assessmentID),
		AssessmentID:   assessmentID,
		RiskCategory:   riskCategory,
		EstimatedGrade: estimatedGrade,
		Confidence:     confidence,
		Degraded:       degraded,
	}
}

// AssessmentRejectedEvent is emitted when validation rejects a record before
// it reaches the classifier. It mirrors the completion event so monitoring
// sees the full request stream.
type AssessmentRejectedEvent struct {
	BaseEvent
	AssessmentID string `json:"assessment_id"`
	Reason       string `json:"reason"`
}

// Payload implements Event interface.
func (e AssessmentRejectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id": e.AssessmentID,
		"reason":        e.Reason,
	}
}

// NewAssessmentRejectedEvent creates a new AssessmentRejectedEvent.
func NewAssessmentRejectedEvent(assessmentID, reason string) AssessmentRejectedEvent {
	return AssessmentRejectedEvent{
		BaseEvent:    NewBaseEvent(EventAssessmentRejected, assessmentID),
		AssessmentID: assessmentID,
		Reason:       reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Risk Events
// ═══════════════════════════════════════════════════════════════════════════

// HighRiskDetectedEvent is emitted when an assessment classifies a student
// as high risk. Subscribers deliver faculty alerts asynchronously; the
// assessment response never waits for them.
type HighRiskDetectedEvent struct {
	BaseEvent
	AssessmentID   string  `json:"assessment_id"`
	EstimatedGrade int     `json:"estimated_grade"`
	Confidence     float64 `json:"confidence"`
	G1             int     `json:"g1"`
	G2             int     `json:"g2"`
	Failures       int     `json:"failures"`
	Absences       int     `json:"absences"`
}

// Payload implements Event interface.
func (e HighRiskDetectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id":   e.AssessmentID,
		"estimated_grade": e.EstimatedGrade,
		"confidence":      e.Confidence,
		"g1":              e.G1,
		"g2":              e.G2,
		"failures":        e.Failures,
		"absences":        e.Absences,
	}
}

// NewHighRiskDetectedEvent creates a new HighRiskDetectedEvent.
func NewHighRiskDetectedEvent(assessmentID string, estimatedGrade int, confidence float64, g1, g2, failures, absences int) HighRiskDetectedEvent {
	return HighRiskDetectedEvent{
		BaseEvent:      NewBaseEvent(EventHighRiskDetected, assessmentID),
		AssessmentID:   assessmentID,
		EstimatedGrade: estimatedGrade,
		Confidence:     confidence,
		G1:             g1,
		G2:             g2,
		Failures:       failures,
		Absences:       absences,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
