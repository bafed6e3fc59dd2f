package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrApplicationNotFound = errors.New("job application not found")
	ErrInvalidApplication  = errors.New("invalid job application")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrAlreadyProcessed    = errors.New("application already processed")
	ErrUnauthorized        = errors.New("caller not authorized for this application")
)

// ---------- Interfaces (Ports) ----------

// ApplicationRepository define las operaciones persistentes para JobApplication.
// Las escrituras guardan las filas outbox en la misma transacción que el agregado.
type ApplicationRepository interface {
	Create(ctx context.Context, a *JobApplication, records []sharedDomain.OutboxRecord) error

	// Debe devolver ErrApplicationNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*JobApplication, error)

	Update(ctx context.Context, a *JobApplication, records []sharedDomain.OutboxRecord) error

	// ListByMaid devuelve las candidaturas de una maid, más recientes primero.
	ListByMaid(ctx context.Context, maidID uuid.UUID, limit, offset int) ([]*JobApplication, error)
}
