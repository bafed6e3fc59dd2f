package events

import "time"

// DomainEvent representa un hecho inmutable ocurrido sobre un agregado.
// Una vez creado no debe modificarse; los suscriptores reciben siempre
// una copia del slice, nunca el buffer interno.
type DomainEvent struct {
	Type        string                 `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	Payload     map[string]interface{} `json:"payload"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// Recorder es el buffer de eventos pendientes de un agregado.
// Se embebe en cada entidad de dominio: el agregado es el único dueño
// del buffer y el exterior solo puede drenarlo con PullDomainEvents.
type Recorder struct {
	pending []DomainEvent
}

// Record añade un evento al buffer en orden de emisión.
func (r *Recorder) Record(eventType, aggregateID string, payload map[string]interface{}) {
	r.pending = append(r.pending, DomainEvent{
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	})
}

// PullDomainEvents devuelve todos los eventos pendientes (orden FIFO)
// y vacía el buffer de forma atómica. Una segunda llamada consecutiva
// sin mutaciones intermedias devuelve un slice vacío.
func (r *Recorder) PullDomainEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
