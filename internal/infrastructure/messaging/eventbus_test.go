package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurisk/student-risk-hub/internal/domain/shared"
)

func newTestBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{WorkerPoolSize: 2})
}

func TestPublish_DeliversToSubscriber(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	received := make(chan shared.Event, 1)
	require.NoError(t, bus.Subscribe(shared.EventHighRiskDetected, func(e shared.Event) error {
		received <- e
		return nil
	}))

	event := shared.NewHighRiskDetectedEvent("assessment-1", 7, 0.82, 8, 7, 2, 20)
	require.NoError(t, bus.Publish(event))

	select {
	case got := <-received:
		assert.Equal(t, shared.EventHighRiskDetected, got.EventType())
		assert.Equal(t, "assessment-1", got.AggregateID())
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPublish_TypeFiltering(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var mu sync.Mutex
	var calls int
	require.NoError(t, bus.Subscribe(shared.EventHighRiskDetected, func(shared.Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewAssessmentCompletedEvent("a-1", "medium", 12, 0.6, false)))
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestPublish_HandlerErrorNotPropagated(t *testing.T) {
	bus := newTestBus()

	require.NoError(t, bus.Subscribe(shared.EventHighRiskDetected, func(shared.Event) error {
		return errors.New("alert channel down")
	}))

	err := bus.Publish(shared.NewHighRiskDetectedEvent("assessment-2", 5, 0.9, 6, 4, 3, 30))
	assert.NoError(t, err)

	bus.Close()

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Less(t, snap.HandlerSuccessRate, 1.0)
}

func TestPublish_HandlerPanicRecovered(t *testing.T) {
	bus := newTestBus()

	require.NoError(t, bus.Subscribe(shared.EventHighRiskDetected, func(shared.Event) error {
		panic("boom")
	}))

	require.NoError(t, bus.Publish(shared.NewHighRiskDetectedEvent("assessment-3", 4, 0.7, 5, 3, 4, 10)))

	// Close waits for the handler; a leaked panic would fail the test binary.
	assert.NoError(t, bus.Close())
}

func TestSubscribeAll_SeesEveryEvent(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var types []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		mu.Lock()
		types = append(types, e.EventType())
		mu.Unlock()
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewAssessmentCompletedEvent("a-1", "low", 16, 0.7, false)))
	require.NoError(t, bus.Publish(shared.NewHighRiskDetectedEvent("a-2", 6, 0.8, 7, 5, 1, 12)))
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []shared.EventType{
		shared.EventAssessmentCompleted,
		shared.EventHighRiskDetected,
	}, types)
}

func TestClosedBus_RejectsOperations(t *testing.T) {
	bus := newTestBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewAssessmentCompletedEvent("a", "high", 8, 0.5, false)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventHighRiskDetected, func(shared.Event) error { return nil }), ErrEventBusClosed)

	// Closing twice is a no-op.
	assert.NoError(t, bus.Close())
}

func TestPublish_NilEvent(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	assert.Error(t, bus.Publish(nil))
}
