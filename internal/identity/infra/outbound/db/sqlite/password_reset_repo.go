package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/maidlink/internal/identity/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	outboxSQLite "github.com/davicafu/maidlink/internal/shared/infra/db/sqlite"
)

type PasswordResetRepoSQLite struct {
	db *sql.DB
}

var _ domain.PasswordResetRepository = (*PasswordResetRepoSQLite)(nil)

func NewPasswordResetRepoSQLite(db *sql.DB) *PasswordResetRepoSQLite {
	return &PasswordResetRepoSQLite{db: db}
}

// Create inserta la solicitud y sus filas outbox en una transacción.
func (r *PasswordResetRepoSQLite) Create(ctx context.Context, pr *domain.PasswordReset, records []sharedDomain.OutboxRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO password_resets (id, user_id, email, token, status, expires_at, used_at, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		pr.ID.String(), pr.UserID.String(), pr.Email, pr.Token, string(pr.Status),
		pr.ExpiresAt, pr.UsedAt, pr.CreatedAt, pr.UpdatedAt,
	); err != nil {
		return err
	}

	for _, rec := range records {
		if err = outboxSQLite.InsertOutboxTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PasswordResetRepoSQLite) GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, token, status, expires_at, used_at, created_at, updated_at
		 FROM password_resets WHERE token = ?`, token,
	)
	return scanReset(row)
}

// Update guarda el estado actual y sus filas outbox en una transacción.
func (r *PasswordResetRepoSQLite) Update(ctx context.Context, pr *domain.PasswordReset, records []sharedDomain.OutboxRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`UPDATE password_resets SET status=?, used_at=?, updated_at=? WHERE id=?`,
		string(pr.Status), pr.UsedAt, pr.UpdatedAt, pr.ID.String(),
	)
	if err != nil {
		return err
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return err
	}
	if affected == 0 {
		err = domain.ErrResetNotFound
		return err
	}

	for _, rec := range records {
		if err = outboxSQLite.InsertOutboxTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListPendingExpired devuelve solicitudes pending cuya vigencia ya venció.
func (r *PasswordResetRepoSQLite) ListPendingExpired(ctx context.Context, limit int) ([]*domain.PasswordReset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, email, token, status, expires_at, used_at, created_at, updated_at
		 FROM password_resets
		 WHERE status = 'pending' AND expires_at < ?
		 ORDER BY expires_at
		 LIMIT ?`, time.Now().UTC(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resets []*domain.PasswordReset
	for rows.Next() {
		pr, err := scanReset(rows)
		if err != nil {
			return nil, err
		}
		resets = append(resets, pr)
	}
	return resets, rows.Err()
}

func scanReset(row rowScanner) (*domain.PasswordReset, error) {
	var pr domain.PasswordReset
	var idStr, userIDStr, status string
	var usedAt sql.NullTime

	err := row.Scan(&idStr, &userIDStr, &pr.Email, &pr.Token, &status, &pr.ExpiresAt, &usedAt, &pr.CreatedAt, &pr.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrResetNotFound
	}
	if err != nil {
		return nil, err
	}

	pr.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in password_resets row: %w", err)
	}
	pr.UserID, err = uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user UUID in password_resets row: %w", err)
	}
	pr.Status = domain.ResetStatus(status)
	if usedAt.Valid {
		t := usedAt.Time
		pr.UsedAt = &t
	}
	return &pr, nil
}
