package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
)

// KafkaForwarder reexpide eventos de dominio hacia un topic de Kafka.
// Se registra en el EventBus como un handler más: los eventos llegan vía
// el relayer del outbox, así que la entrega hacia Kafka es al menos una vez.
type KafkaForwarder struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaForwarder(writer *kafka.Writer, log *zap.Logger) *KafkaForwarder {
	return &KafkaForwarder{writer: writer, log: log}
}

// Handle serializa el evento y lo escribe en Kafka, particionando por
// aggregate_id para conservar el orden por agregado.
func (f *KafkaForwarder) Handle(ctx context.Context, evt sharedEvents.DomainEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.AggregateID),
		Value: data,
	}

	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		f.log.Error("🛑 Error publishing to Kafka", zap.String("event_type", evt.Type), zap.Error(err))
		return err
	}

	f.log.Debug("📬 Event forwarded to Kafka", zap.String("event_type", evt.Type))
	return nil
}

// RegisterAll suscribe el forwarder a todos los tipos de evento dados.
func (f *KafkaForwarder) RegisterAll(bus *sharedBus.EventBus, eventTypes ...string) []sharedBus.SubscriberID {
	ids := make([]sharedBus.SubscriberID, 0, len(eventTypes))
	for _, et := range eventTypes {
		ids = append(ids, bus.On(et, f.Handle))
	}
	return ids
}
