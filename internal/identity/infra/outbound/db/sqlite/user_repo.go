package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/maidlink/internal/identity/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	outboxSQLite "github.com/davicafu/maidlink/internal/shared/infra/db/sqlite"
)

type UserRepoSQLite struct {
	db *sql.DB
}

var _ domain.UserRepository = (*UserRepoSQLite)(nil)

func NewUserRepoSQLite(db *sql.DB) *UserRepoSQLite {
	return &UserRepoSQLite{db: db}
}

// InitSQLite crea las tablas del contexto identity (más el outbox compartido).
func InitSQLite(db *sql.DB) error {
	if err := outboxSQLite.InitOutboxSchema(db); err != nil {
		return err
	}
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			nombre TEXT NOT NULL,
			phone TEXT,
			role TEXT NOT NULL,
			status TEXT NOT NULL,
			email_verified INTEGER NOT NULL DEFAULT 0,
			phone_verified INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS password_resets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			email TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			used_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_password_resets_status ON password_resets(status);
	`)
	return err
}

// Create inserta usuario y filas outbox en una transacción.
func (r *UserRepoSQLite) Create(ctx context.Context, u *domain.User, records []sharedDomain.OutboxRecord) error {
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
		`INSERT INTO users (id, email, nombre, phone, role, status, email_verified, phone_verified, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		u.ID.String(), u.Email, u.Nombre, u.Phone, string(u.Role), string(u.Status),
		boolToInt(u.EmailVerified), boolToInt(u.PhoneVerified), u.CreatedAt, u.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrUserAlreadyExists
		}
		return err
	}

	for _, rec := range records {
		if err = outboxSQLite.InsertOutboxTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *UserRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, nombre, phone, role, status, email_verified, phone_verified, created_at, updated_at
		 FROM users WHERE id = ?`, id.String(),
	)
	return scanUser(row)
}

// Update guarda el estado actual del agregado y sus filas outbox en una transacción.
func (r *UserRepoSQLite) Update(ctx context.Context, u *domain.User, records []sharedDomain.OutboxRecord) error {
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
		`UPDATE users SET email=?, nombre=?, phone=?, role=?, status=?, email_verified=?, phone_verified=?, updated_at=?
		 WHERE id=?`,
		u.Email, u.Nombre, u.Phone, string(u.Role), string(u.Status),
		boolToInt(u.EmailVerified), boolToInt(u.PhoneVerified), u.UpdatedAt, u.ID.String(),
	)
	if err != nil {
		return err
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return err
	}
	if affected == 0 {
		err = domain.ErrUserNotFound
		return err
	}

	for _, rec := range records {
		if err = outboxSQLite.InsertOutboxTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var idStr, role, status string
	var phone sql.NullString
	var emailVerified, phoneVerified int

	err := row.Scan(&idStr, &u.Email, &u.Nombre, &phone, &role, &status, &emailVerified, &phoneVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	u.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in users row: %w", err)
	}
	u.Phone = phone.String
	u.Role = domain.UserRole(role)
	u.Status = domain.UserStatus(status)
	u.EmailVerified = emailVerified != 0
	u.PhoneVerified = phoneVerified != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
