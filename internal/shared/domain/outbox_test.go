package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
)

func TestNewOutboxRecord(t *testing.T) {
	occurred := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)
	evt := sharedEvents.DomainEvent{
		Type:        "user.created",
		AggregateID: "agg-1",
		Payload:     map[string]interface{}{"email": "maria@example.com"},
		OccurredAt:  occurred,
	}

	rec := NewOutboxRecord(evt)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rec.ID.String())
	assert.Equal(t, "user.created", rec.EventType)
	assert.Equal(t, "agg-1", rec.AggregateID)
	assert.Equal(t, OutboxPending, rec.Status)
	assert.Equal(t, occurred.Format(time.RFC3339Nano), rec.Metadata["occurred_at"])
}

func TestOutboxRecord_ToDomainEvent(t *testing.T) {
	occurred := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)
	rec := NewOutboxRecord(sharedEvents.DomainEvent{
		Type:        "user.created",
		AggregateID: "agg-1",
		Payload:     map[string]interface{}{"email": "maria@example.com"},
		OccurredAt:  occurred,
	})

	evt := rec.ToDomainEvent()
	assert.Equal(t, "user.created", evt.Type)
	assert.Equal(t, "agg-1", evt.AggregateID)
	assert.Equal(t, "maria@example.com", evt.Payload["email"])
	assert.True(t, evt.OccurredAt.Equal(occurred))
}

func TestOutboxRecord_ToDomainEventWithoutMetadata(t *testing.T) {
	rec := NewOutboxRecord(sharedEvents.DomainEvent{Type: "x", AggregateID: "a"})
	rec.Metadata = nil

	// Sin occurred_at en metadatos se usa created_at como aproximación
	evt := rec.ToDomainEvent()
	assert.True(t, evt.OccurredAt.Equal(rec.CreatedAt))
}

func TestRecordsFromEvents(t *testing.T) {
	var rec sharedEvents.Recorder
	rec.Record("first", "agg-1", nil)
	rec.Record("second", "agg-1", nil)

	records := RecordsFromEvents(rec.PullDomainEvents())
	assert.Len(t, records, 2)
	assert.Equal(t, "first", records[0].EventType)
	assert.Equal(t, "second", records[1].EventType)

	assert.Nil(t, RecordsFromEvents(nil))
}
