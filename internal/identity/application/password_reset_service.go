package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/identity/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
)

// PasswordResetService define los casos de uso de restablecimiento de contraseña.
type PasswordResetService struct {
	resets domain.PasswordResetRepository
	users  domain.UserRepository
	bus    *sharedBus.EventBus
	ttl    time.Duration
	log    *zap.Logger
}

func NewPasswordResetService(
	resets domain.PasswordResetRepository,
	users domain.UserRepository,
	bus *sharedBus.EventBus,
	ttl time.Duration,
	log *zap.Logger,
) *PasswordResetService {
	if ttl <= 0 {
		ttl = domain.DefaultResetTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{resets: resets, users: users, bus: bus, ttl: ttl, log: log}
}

// RequestReset crea una solicitud pendiente para el usuario indicado.
// El envío del email con el token es responsabilidad de un suscriptor
// del evento password_reset.requested, no de este caso de uso.
func (s *PasswordResetService) RequestReset(ctx context.Context, userID uuid.UUID) (*domain.PasswordReset, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pr, err := domain.NewPasswordReset(user.ID, user.Email, s.ttl)
	if err != nil {
		return nil, err
	}

	evts := pr.PullDomainEvents()
	if err := s.resets.Create(ctx, pr, sharedDomain.RecordsFromEvents(evts)); err != nil {
		return nil, err
	}
	s.dispatchAll(ctx, evts)

	return pr, nil
}

// ConfirmReset consume el token. El cambio efectivo de contraseña vive en el
// proveedor de autenticación externo; aquí solo se valida y quema el token.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, token string) (*domain.PasswordReset, error) {
	pr, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	markErr := pr.MarkAsUsed()

	// MarkAsUsed puede haber expirado la solicitud como efecto colateral de
	// IsValid: persistimos la transición aunque el caso de uso falle.
	if evts := pr.PullDomainEvents(); len(evts) > 0 {
		if saveErr := s.resets.Update(ctx, pr, sharedDomain.RecordsFromEvents(evts)); saveErr != nil {
			return nil, saveErr
		}
		s.dispatchAll(ctx, evts)
	}

	if markErr != nil {
		return nil, markErr
	}
	return pr, nil
}

// CancelReset anula una solicitud pendiente.
func (s *PasswordResetService) CancelReset(ctx context.Context, token, reason string) error {
	pr, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	if err := pr.Cancel(reason); err != nil {
		return err
	}

	evts := pr.PullDomainEvents()
	if err := s.resets.Update(ctx, pr, sharedDomain.RecordsFromEvents(evts)); err != nil {
		return err
	}
	s.dispatchAll(ctx, evts)
	return nil
}

// ExpireStale expira en lote las solicitudes pendientes ya vencidas.
// Lo invoca el scheduler junto al ciclo del outbox worker.
func (s *PasswordResetService) ExpireStale(ctx context.Context, limit int) int {
	stale, err := s.resets.ListPendingExpired(ctx, limit)
	if err != nil {
		s.log.Warn("⚠️ No se pudieron listar solicitudes vencidas", zap.Error(err))
		return 0
	}

	expired := 0
	for _, pr := range stale {
		if err := pr.Expire(); err != nil {
			continue
		}
		evts := pr.PullDomainEvents()
		if err := s.resets.Update(ctx, pr, sharedDomain.RecordsFromEvents(evts)); err != nil {
			s.log.Warn("⚠️ No se pudo expirar la solicitud",
				zap.String("reset_id", pr.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.dispatchAll(ctx, evts)
		expired++
	}
	return expired
}

func (s *PasswordResetService) dispatchAll(ctx context.Context, evts []sharedEvents.DomainEvent) {
	for _, evt := range evts {
		_ = s.bus.Dispatch(ctx, evt)
	}
}
