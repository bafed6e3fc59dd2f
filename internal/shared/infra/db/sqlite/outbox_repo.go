package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// OutboxRepoSQLite implementa la interfaz sharedDomain.OutboxRepository.
type OutboxRepoSQLite struct {
	db *sql.DB
}

var _ sharedDomain.OutboxRepository = (*OutboxRepoSQLite)(nil)

func NewOutboxRepoSQLite(db *sql.DB) *OutboxRepoSQLite {
	return &OutboxRepoSQLite{db: db}
}

// InitOutboxSchema crea la tabla outbox y sus índices si no existen.
func InitOutboxSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			metadata TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			error_message TEXT,
			created_at TIMESTAMP NOT NULL,
			processed_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status);
		CREATE INDEX IF NOT EXISTS idx_outbox_created_at ON outbox(created_at);
	`)
	return err
}

func (r *OutboxRepoSQLite) Insert(ctx context.Context, rec sharedDomain.OutboxRecord) error {
	return InsertOutboxTx(ctx, r.db, rec)
}

// sqlExecutor permite reutilizar el INSERT tanto con *sql.DB como con *sql.Tx,
// para que los repositorios de agregados escriban outbox en su transacción.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// InsertOutboxTx inserta una fila outbox usando el ejecutor dado.
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
		 VALUES (?,?,?,?,?,?,?,?)`,
		rec.ID.String(), rec.EventType, rec.AggregateID, string(payloadBytes), string(metadataBytes),
		string(rec.Status), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return nil
}

// FetchPending obtiene las filas pending ordenadas por created_at ascendente.
func (r *OutboxRepoSQLite) FetchPending(ctx context.Context, limit int) ([]sharedDomain.OutboxRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, aggregate_id, payload, metadata, status, created_at, updated_at
		 FROM outbox
		 WHERE status = 'pending'
		 ORDER BY created_at
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []sharedDomain.OutboxRecord
	for rows.Next() {
		var rec sharedDomain.OutboxRecord
		var idStr, payloadStr string
		var metadataStr sql.NullString
		var status string

		if err := rows.Scan(&idStr, &rec.EventType, &rec.AggregateID, &payloadStr, &metadataStr, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}

		rec.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID in outbox row: %w", err)
		}
		rec.Status = sharedDomain.OutboxStatus(status)

		if err := json.Unmarshal([]byte(payloadStr), &rec.Payload); err != nil {
			return nil, fmt.Errorf("invalid JSON payload in outbox row %s: %w", rec.ID, err)
		}
		if metadataStr.Valid && metadataStr.String != "" {
			if err := json.Unmarshal([]byte(metadataStr.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("invalid JSON metadata in outbox row %s: %w", rec.ID, err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *OutboxRepoSQLite) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = 'processed', processed_at = ?, updated_at = ? WHERE id = ? AND status = 'pending'`,
		processedAt, processedAt, id.String(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res, id)
}

func (r *OutboxRepoSQLite) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = 'failed', error_message = ?, updated_at = ? WHERE id = ? AND status = 'pending'`,
		errMsg, time.Now().UTC(), id.String(),
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
