package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// OutboxRepoPostgres implementa la interfaz sharedDomain.OutboxRepository.
type OutboxRepoPostgres struct {
	db *sql.DB
}

var _ sharedDomain.OutboxRepository = (*OutboxRepoPostgres)(nil)

func NewOutboxRepoPostgres(db *sql.DB) *OutboxRepoPostgres {
	return &OutboxRepoPostgres{db: db}
}

// InitOutboxSchema crea la tabla outbox y sus índices si no existen.
func InitOutboxSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS outbox (
			id UUID PRIMARY KEY,
			event_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			payload JSONB NOT NULL,
			metadata JSONB,
			status TEXT NOT NULL DEFAULT 'pending',
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			processed_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status);
		CREATE INDEX IF NOT EXISTS idx_outbox_created_at ON outbox(created_at);
	`)
	return err
}

func (r *OutboxRepoPostgres) Insert(ctx context.Context, rec sharedDomain.OutboxRecord) error {
	return InsertOutboxTx(ctx, r.db, rec)
}

type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// InsertOutboxTx inserta una fila outbox usando el ejecutor dado (DB o Tx).
func InsertOutboxTx(ctx context.Context, ex sqlExecutor, rec sharedDomain.OutboxRecord) error {
	payloadBytes, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	metadataBytes, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox metadata: %w", err)
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO outbox (id, event_type, aggregate_id, payload, metadata, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.EventType, rec.AggregateID, payloadBytes, metadataBytes,
		string(rec.Status), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return nil
}

// FetchPending obtiene las filas pending ordenadas por created_at ascendente.
func (r *OutboxRepoPostgres) FetchPending(ctx context.Context, limit int) ([]sharedDomain.OutboxRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, aggregate_id, payload, metadata, status, created_at, updated_at
		 FROM outbox
		 WHERE status = 'pending'
		 ORDER BY created_at
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []sharedDomain.OutboxRecord
	for rows.Next() {
		var rec sharedDomain.OutboxRecord
		var payloadBytes, metadataBytes []byte
		var status string

		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.AggregateID, &payloadBytes, &metadataBytes, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Status = sharedDomain.OutboxStatus(status)

		if err := json.Unmarshal(payloadBytes, &rec.Payload); err != nil {
			return nil, fmt.Errorf("invalid JSON payload in outbox row %s: %w", rec.ID, err)
		}
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("invalid JSON metadata in outbox row %s: %w", rec.ID, err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *OutboxRepoPostgres) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = 'processed', processed_at = $1, updated_at = $1 WHERE id = $2 AND status = 'pending'`,
		processedAt, id,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res, id)
}

func (r *OutboxRepoPostgres) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = 'failed', error_message = $1, updated_at = $2 WHERE id = $3 AND status = 'pending'`,
		errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id uuid.UUID) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("outbox record not found or not pending: %s", id)
	}
	return nil
}
