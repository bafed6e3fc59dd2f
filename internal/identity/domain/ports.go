package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrResetNotFound        = errors.New("password reset not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidUser          = errors.New("invalid user")
	ErrInvalidState         = errors.New("invalid state transition")
	ErrEmailAlreadyVerified = errors.New("email already verified")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// ---------- Interfaces (Ports) ----------

// UserRepository define las operaciones persistentes para User.
// Los métodos de escritura reciben las filas outbox de los eventos emitidos
// y deben guardarlas en la misma transacción que el agregado.
type UserRepository interface {
	// Debe devolver ErrUserAlreadyExists si la entidad ya existe.
	Create(ctx context.Context, u *User, records []sharedDomain.OutboxRecord) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Debe devolver ErrUserNotFound si el usuario no existe.
	Update(ctx context.Context, u *User, records []sharedDomain.OutboxRecord) error
}

// PasswordResetRepository define las operaciones persistentes para PasswordReset.
type PasswordResetRepository interface {
	Create(ctx context.Context, pr *PasswordReset, records []sharedDomain.OutboxRecord) error

	// Debe devolver ErrResetNotFound si no existe.
	GetByToken(ctx context.Context, token string) (*PasswordReset, error)

	Update(ctx context.Context, pr *PasswordReset, records []sharedDomain.OutboxRecord) error

	// ListPendingExpired devuelve solicitudes pending cuya vigencia ya venció.
	ListPendingExpired(ctx context.Context, limit int) ([]*PasswordReset, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByID forma una key consistente para cache usando ID.
func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("user:id:%s", id.String())
}
