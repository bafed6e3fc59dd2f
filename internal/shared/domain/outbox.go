package domain

import (
	"context"
	"time"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	"github.com/google/uuid"
)

// OutboxStatus es el ciclo de vida de una fila del outbox.
// Las transiciones solo avanzan: pending -> processed | failed.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxProcessed OutboxStatus = "processed"
	OutboxFailed    OutboxStatus = "failed"
)

// OutboxRecord representa un evento persistido pendiente de reentrega.
type OutboxRecord struct {
	ID           uuid.UUID              `json:"id"`
	EventType    string                 `json:"event_type"`
	AggregateID  string                 `json:"aggregate_id"`
	Payload      map[string]interface{} `json:"payload"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Status       OutboxStatus           `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ProcessedAt  *time.Time             `json:"processed_at,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// NewOutboxRecord construye una fila pendiente a partir de un evento de dominio.
func NewOutboxRecord(evt sharedEvents.DomainEvent) OutboxRecord {
	now := time.Now().UTC()
	return OutboxRecord{
		ID:          uuid.New(),
		EventType:   evt.Type,
		AggregateID: evt.AggregateID,
		Payload:     evt.Payload,
		Metadata:    map[string]interface{}{"occurred_at": evt.OccurredAt.Format(time.RFC3339Nano)},
		Status:      OutboxPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ToDomainEvent reconstruye el evento original para su reentrega.
func (r OutboxRecord) ToDomainEvent() sharedEvents.DomainEvent {
	occurred := r.CreatedAt
	if raw, ok := r.Metadata["occurred_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			occurred = t
		}
	}
	return sharedEvents.DomainEvent{
		Type:        r.EventType,
		AggregateID: r.AggregateID,
		Payload:     r.Payload,
		OccurredAt:  occurred,
	}
}

// RecordsFromEvents convierte el lote drenado de un agregado en filas outbox,
// preservando el orden de emisión.
func RecordsFromEvents(evts []sharedEvents.DomainEvent) []OutboxRecord {
	if len(evts) == 0 {
		return nil
	}
	records := make([]OutboxRecord, len(evts))
	for i, evt := range evts {
		records[i] = NewOutboxRecord(evt)
	}
	return records
}

// OutboxRepository define el contrato de la tabla outbox.
// El bus solo inserta; el worker de reentrega solo actualiza estados.
type OutboxRepository interface {
	Insert(ctx context.Context, rec OutboxRecord) error

	// FetchPending obtiene filas en estado pending ordenadas por created_at
	// ascendente, hasta un máximo de limit.
	FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
