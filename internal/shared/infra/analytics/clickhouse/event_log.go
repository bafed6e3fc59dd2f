package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
)

// EventLogRepo guarda cada evento de dominio publicado en una tabla de
// ClickHouse orientada a analítica y auditoría.
type EventLogRepo struct {
	db *sql.DB
}

// NewEventLogRepo es el constructor.
func NewEventLogRepo(addr string, dbName string) (*EventLogRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &EventLogRepo{db: conn}, nil
}

// InitSchema crea la tabla si no existe. Particionada por mes y ordenada
// por los campos de consulta habituales.
func (r *EventLogRepo) InitSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS events_log (
			event_type   String,
			aggregate_id String,
			payload      String,
			occurred_at  DateTime64(3),
			event_time   DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (event_type, aggregate_id, event_time);
	`
	_, err := r.db.Exec(query)
	return err
}

// Handle inserta el evento recibido del bus. Pensado para registrarse como
// suscriptor de cada tipo de evento del sistema.
func (r *EventLogRepo) Handle(ctx context.Context, evt sharedEvents.DomainEvent) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO events_log (event_type, aggregate_id, payload, occurred_at, event_time)
		 VALUES (?,?,?,?,?)`,
		evt.Type, evt.AggregateID, string(payload), evt.OccurredAt, time.Now().UTC(),
	)
	return err
}

// RegisterAll suscribe el log a todos los tipos de evento dados.
func (r *EventLogRepo) RegisterAll(bus *sharedBus.EventBus, eventTypes ...string) []sharedBus.SubscriberID {
	ids := make([]sharedBus.SubscriberID, 0, len(eventTypes))
	for _, et := range eventTypes {
		ids = append(ids, bus.On(et, r.Handle))
	}
	return ids
}

// CountByType devuelve el número de eventos por tipo en la ventana dada.
func (r *EventLogRepo) CountByType(ctx context.Context, start, end time.Time) (map[string]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_type, count() FROM events_log
		 WHERE event_time BETWEEN ? AND ?
		 GROUP BY event_type`, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var et string
		var n uint64
		if err := rows.Scan(&et, &n); err != nil {
			return nil, err
		}
		counts[et] = n
	}
	return counts, rows.Err()
}
