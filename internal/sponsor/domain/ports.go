package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ---------- Errores de dominio ----------
var (
	ErrProfileNotFound   = errors.New("sponsor profile not found")
	ErrInvalidProfile    = errors.New("invalid sponsor profile")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrIncompleteProfile = errors.New("profile is not complete")
)

// ---------- Interfaces (Ports) ----------

// ProfileRepository define las operaciones persistentes para SponsorProfile.
// El backend Mongo no ofrece transacción multi-documento con el outbox, así
// que este contexto persiste sus eventos en el momento de publicarlos
// (EventBus.Publish), no dentro del repositorio.
type ProfileRepository interface {
	Create(ctx context.Context, p *SponsorProfile) error

	// Debe devolver ErrProfileNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*SponsorProfile, error)

	GetByUserID(ctx context.Context, userID uuid.UUID) (*SponsorProfile, error)

	Update(ctx context.Context, p *SponsorProfile) error
}
