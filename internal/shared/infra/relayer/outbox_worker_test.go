package relayer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
	"github.com/davicafu/maidlink/tests/mocks"
)

func pendingRecord(eventType string, createdAt time.Time) sharedDomain.OutboxRecord {
	rec := sharedDomain.NewOutboxRecord(sharedEvents.DomainEvent{
		Type:        eventType,
		AggregateID: "agg-1",
		Payload:     map[string]interface{}{"k": "v"},
		OccurredAt:  createdAt,
	})
	rec.CreatedAt = createdAt
	return rec
}

func TestWorker_ProcessBatchMarksProcessed(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	bus := sharedBus.NewEventBus(zap.NewNop())

	var delivered int32
	bus.On("user.created", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&delivered, 1)
		return nil
	})

	rec := pendingRecord("user.created", time.Now().UTC())
	_ = outbox.Insert(context.Background(), rec)

	w := NewWorker(outbox, bus, time.Second, 100, clockwork.NewFakeClock(), zap.NewNop())
	w.ProcessBatch(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))

	got, ok := outbox.ByID(rec.ID)
	assert.True(t, ok)
	assert.Equal(t, sharedDomain.OutboxProcessed, got.Status)
	assert.NotNil(t, got.ProcessedAt)
}

func TestWorker_FailedRowDoesNotAbortBatch(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	bus := sharedBus.NewEventBus(zap.NewNop())

	bus.On("always.fails", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		return errors.New("handler roto")
	})
	var okCount int32
	bus.On("always.ok", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		atomic.AddInt32(&okCount, 1)
		return nil
	})

	now := time.Now().UTC()
	bad := pendingRecord("always.fails", now)
	good := pendingRecord("always.ok", now.Add(time.Millisecond))
	_ = outbox.Insert(context.Background(), bad)
	_ = outbox.Insert(context.Background(), good)

	w := NewWorker(outbox, bus, time.Second, 100, clockwork.NewFakeClock(), zap.NewNop())
	w.ProcessBatch(context.Background())

	// La fila fallida queda failed con el mensaje del handler
	gotBad, _ := outbox.ByID(bad.ID)
	assert.Equal(t, sharedDomain.OutboxFailed, gotBad.Status)
	assert.Contains(t, gotBad.ErrorMessage, "handler roto")

	// Y la siguiente se procesa igualmente
	assert.Equal(t, int32(1), atomic.LoadInt32(&okCount))
	gotGood, _ := outbox.ByID(good.ID)
	assert.Equal(t, sharedDomain.OutboxProcessed, gotGood.Status)
}

func TestWorker_BatchRespectsLimitAndOrder(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	bus := sharedBus.NewEventBus(zap.NewNop())

	var order []string
	bus.On("seq.event", func(ctx context.Context, evt sharedEvents.DomainEvent) error {
		order = append(order, evt.Payload["n"].(string))
		return nil
	})

	base := time.Now().UTC()
	names := []string{"a", "b", "c"}
	for i, n := range names {
		rec := sharedDomain.NewOutboxRecord(sharedEvents.DomainEvent{
			Type:        "seq.event",
			AggregateID: "agg-1",
			Payload:     map[string]interface{}{"n": n},
			OccurredAt:  base,
		})
		rec.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		_ = outbox.Insert(context.Background(), rec)
	}

	w := NewWorker(outbox, bus, time.Second, 2, clockwork.NewFakeClock(), zap.NewNop())
	w.ProcessBatch(context.Background())

	// Solo las 2 más antiguas, en orden de creación
	assert.Equal(t, []string{"a", "b"}, order)

	w.ProcessBatch(context.Background())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestWorker_NoSubscribersStillProcesses(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	bus := sharedBus.NewEventBus(zap.NewNop())

	rec := pendingRecord("nobody.listens", time.Now().UTC())
	_ = outbox.Insert(context.Background(), rec)

	w := NewWorker(outbox, bus, time.Second, 100, clockwork.NewFakeClock(), zap.NewNop())
	w.ProcessBatch(context.Background())

	// Sin suscriptores la entrega es trivialmente exitosa
	got, _ := outbox.ByID(rec.ID)
	assert.Equal(t, sharedDomain.OutboxProcessed, got.Status)
}

func TestWorker_StartStopsOnContextCancel(t *testing.T) {
	outbox := mocks.NewInMemoryOutboxRepo()
	bus := sharedBus.NewEventBus(zap.NewNop())
	clock := clockwork.NewFakeClock()

	w := NewWorker(outbox, bus, time.Second, 100, clock, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el worker no se detuvo al cancelar el contexto")
	}
}
