package bus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	"github.com/davicafu/maidlink/tests/mocks"
)

func testEvent(eventType string) sharedEvents.DomainEvent {
	return sharedEvents.DomainEvent{
		Type:        eventType,
		AggregateID: "agg-1",
		Payload:     map[string]interface{}{"k": "v"},
		OccurredAt:  time.Now().UTC(),
	}
}

func TestEventBus_DispatchRunsAllHandlers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var calls int32
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	err := bus.Dispatch(context.Background(), testEvent("user.created"))

	// El fallo de un handler no impide la ejecución del resto
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.ErrorContains(t, err, "boom")
}

func TestEventBus_DispatchNoSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	assert.NoError(t, bus.Dispatch(context.Background(), testEvent("nobody.cares")))
}

func TestEventBus_DispatchOnlyMatchingType(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var userCalls, taskCalls int32
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&userCalls, 1)
		return nil
	})
	bus.On("application.submitted", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&taskCalls, 1)
		return nil
	})

	_ = bus.Dispatch(context.Background(), testEvent("user.created"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&userCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&taskCalls))
}

func TestEventBus_Off(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var calls int32
	id := bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	_ = bus.Dispatch(context.Background(), testEvent("user.created"))
	bus.Off("user.created", id)
	_ = bus.Dispatch(context.Background(), testEvent("user.created"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Off sobre una suscripción inexistente no hace nada
	bus.Off("user.created", SubscriberID(999))
}

func TestEventBus_DuplicateHandlerRunsTwice(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var calls int32
	h := func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}
	bus.On("user.created", h)
	bus.On("user.created", h)

	_ = bus.Dispatch(context.Background(), testEvent("user.created"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEventBus_PublishPersistsToOutbox(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	bus := NewEventBus(zap.NewNop(), WithOutbox(outbox))

	var calls int32
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	bus.Publish(context.Background(), testEvent("user.created"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Len(t, outbox.Records, 1)
	assert.Equal(t, "user.created", outbox.Records[0].EventType)
	assert.Equal(t, "agg-1", outbox.Records[0].AggregateID)
}

func TestEventBus_PublishSwallowsOutboxFailure(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	outbox.InsertErr = errors.New("disk full")
	bus := NewEventBus(zap.NewNop(), WithOutbox(outbox))

	var calls int32
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	// El fallo del outbox no bloquea la entrega a los suscriptores
	bus.Publish(context.Background(), testEvent("user.created"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEventBus_HandlerPanicIsIsolated(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var calls int32
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		panic("se me fue la mano")
	})
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	err := bus.Dispatch(context.Background(), testEvent("user.created"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.ErrorContains(t, err, "handler panic")
}
