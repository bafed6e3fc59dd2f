package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	"github.com/davicafu/maidlink/internal/shared/platform/metrics"
)

// Handler procesa un evento de dominio. Los handlers deben ser idempotentes:
// el outbox garantiza entrega at-least-once y un evento puede llegar dos veces.
type Handler func(ctx context.Context, evt sharedEvents.DomainEvent) error

// SubscriberID identifica una suscripción concreta para poder darla de baja.
// El mismo handler puede registrarse dos veces y se ejecutará dos veces.
type SubscriberID uint64

type subscription struct {
	id      SubscriberID
	handler Handler
}

// EventBus reparte eventos a los suscriptores en proceso y, si hay un
// OutboxRepository configurado, los persiste para reentrega posterior.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]subscription
	nextID      SubscriberID

	outbox sharedDomain.OutboxRepository // opcional
	log    *zap.Logger

	publishedCtr  metrics.Counter
	handlerErrCtr metrics.Counter
	outboxErrCtr  metrics.Counter
}

// opt permite configuración opcional del bus.
type opt func(b *EventBus)

// WithOutbox configura el repositorio outbox donde Publish persiste cada evento.
func WithOutbox(repo sharedDomain.OutboxRepository) opt {
	return func(b *EventBus) { b.outbox = repo }
}

// WithPublishedCounter configura un contador de eventos publicados.
func WithPublishedCounter(c metrics.Counter) opt {
	return func(b *EventBus) {
		if c != nil {
			b.publishedCtr = c
		}
	}
}

// WithHandlerErrorCounter configura un contador de fallos de handlers.
func WithHandlerErrorCounter(c metrics.Counter) opt {
	return func(b *EventBus) {
		if c != nil {
			b.handlerErrCtr = c
		}
	}
}

// WithOutboxErrorCounter configura un contador de fallos de escritura en outbox.
func WithOutboxErrorCounter(c metrics.Counter) opt {
	return func(b *EventBus) {
		if c != nil {
			b.outboxErrCtr = c
		}
	}
}

func NewEventBus(log *zap.Logger, options ...opt) *EventBus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &EventBus{
		subscribers:   make(map[string][]subscription),
		log:           log,
		publishedCtr:  &metrics.NopCounter{},
		handlerErrCtr: &metrics.NopCounter{},
		outboxErrCtr:  &metrics.NopCounter{},
	}
	for _, o := range options {
		o(b)
	}
	return b
}

// On registra un handler para un tipo de evento y devuelve el identificador
// de la suscripción. No hay deduplicación.
func (b *EventBus) On(eventType string, h Handler) SubscriberID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: h})
	return id
}

// Off elimina la suscripción indicada. Si no existe, no hace nada.
func (b *EventBus) Off(eventType string, id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish persiste el evento en el outbox (si está configurado) y lo reparte
// a los suscriptores vivos. Nunca devuelve error por fallos de outbox ni de
// handlers: la entrega a suscriptores no debe bloquearse por un problema de
// auditoría, ni el publicador debe ver fallos ajenos.
func (b *EventBus) Publish(ctx context.Context, evt sharedEvents.DomainEvent) {
	if b.outbox != nil {
		if err := b.outbox.Insert(ctx, sharedDomain.NewOutboxRecord(evt)); err != nil {
			b.log.Warn("⚠️ No se pudo persistir el evento en outbox",
				zap.String("event_type", evt.Type),
				zap.String("aggregate_id", evt.AggregateID),
				zap.Error(err),
			)
			b.outboxErrCtr.Inc(1)
		}
	}

	_ = b.Dispatch(ctx, evt)
}

// Dispatch reparte el evento a todos los handlers suscritos a su tipo.
// Los handlers se lanzan en orden de registro y corren de forma concurrente;
// Dispatch espera a que todos terminen. El fallo de un handler no impide la
// ejecución del resto; los fallos se devuelven agregados para que el worker
// de reentrega pueda marcar la fila como failed.
func (b *EventBus) Dispatch(ctx context.Context, evt sharedEvents.DomainEvent) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[evt.Type]))
	copy(subs, b.subscribers[evt.Type])
	b.mu.RUnlock()

	b.publishedCtr.Inc(1)

	if len(subs) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(subs))

	for i, s := range subs {
		wg.Add(1)
		go func(i int, h Handler) {
			defer wg.Done()
			errs[i] = b.invoke(ctx, h, evt)
		}(i, s.handler)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			b.log.Warn("⚠️ Handler falló procesando evento",
				zap.String("event_type", evt.Type),
				zap.String("aggregate_id", evt.AggregateID),
				zap.Error(err),
			)
			b.handlerErrCtr.Inc(1)
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// invoke ejecuta un handler aislando también sus panics.
func (b *EventBus) invoke(ctx context.Context, h Handler, evt sharedEvents.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, evt)
}
