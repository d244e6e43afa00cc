package eventhandler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/infrastructure/messaging"
)

type fakeAlerter struct {
	err error

	mu     sync.Mutex
	alerts []HighRiskAlert
}

func (a *fakeAlerter) SendHighRiskAlert(ctx context.Context, alert HighRiskAlert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.alerts = append(a.alerts, alert)
	return nil
}

func (a *fakeAlerter) sent() []HighRiskAlert {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]HighRiskAlert, len(a.alerts))
	copy(out, a.alerts)
	return out
}

func TestHandle_DeliversAlert(t *testing.T) {
	alerter := &fakeAlerter{}
	h := NewOnHighRiskHandler(alerter, nil, DefaultHighRiskConfig())

	event := shared.NewHighRiskDetectedEvent("assessment-1", 7, 0.88, 8, 7, 2, 20)
	require.NoError(t, h.Handle(event))

	alerts := alerter.sent()
	require.Len(t, alerts, 1)
	assert.Equal(t, "assessment-1", alerts[0].AssessmentID)
	assert.Equal(t, 7, alerts[0].EstimatedGrade)
	assert.Equal(t, 0.88, alerts[0].Confidence)
	assert.Equal(t, 2, alerts[0].Failures)
	assert.False(t, alerts[0].DetectedAt.IsZero())
}

func TestHandle_IgnoresOtherEventTypes(t *testing.T) {
	alerter := &fakeAlerter{}
	h := NewOnHighRiskHandler(alerter, nil, DefaultHighRiskConfig())

	event := shared.NewAssessmentCompletedEvent("a-1", "medium", 12, 0.6, false)
	assert.NoError(t, h.Handle(event))
	assert.Empty(t, alerter.sent())
}

func TestHandle_DeliveryFailureReturnsError(t *testing.T) {
	alerter := &fakeAlerter{err: errors.New("channel down")}
	h := NewOnHighRiskHandler(alerter, nil, DefaultHighRiskConfig())

	err := h.Handle(shared.NewHighRiskDetectedEvent("assessment-2", 5, 0.9, 6, 4, 3, 30))
	assert.Error(t, err)
}

func TestHandle_NilAlerterIsNoOp(t *testing.T) {
	h := NewOnHighRiskHandler(nil, nil, DefaultHighRiskConfig())

	assert.NoError(t, h.Handle(shared.NewHighRiskDetectedEvent("assessment-3", 4, 0.7, 5, 3, 4, 10)))
}

func TestRegister_InvokedExactlyOncePerHighRiskEvent(t *testing.T) {
	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{WorkerPoolSize: 2})

	alerter := &fakeAlerter{}
	h := NewOnHighRiskHandler(alerter, nil, DefaultHighRiskConfig())
	require.NoError(t, h.Register(bus))

	require.NoError(t, bus.Publish(shared.NewHighRiskDetectedEvent("assessment-4", 6, 0.8, 7, 5, 1, 12)))
	require.NoError(t, bus.Publish(shared.NewAssessmentCompletedEvent("assessment-4", "high", 6, 0.8, false)))
	bus.Close()

	deadline := time.Now().Add(2 * time.Second)
	for len(alerter.sent()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	alerts := alerter.sent()
	require.Len(t, alerts, 1)
	assert.Equal(t, "assessment-4", alerts[0].AssessmentID)
}
