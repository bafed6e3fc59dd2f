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
	sharedCache "github.com/davicafu/maidlink/internal/shared/platform/cache"
)

// UserService define los casos de uso relacionados con User.
// Las filas outbox de los eventos emitidos se guardan en la misma
// transacción que el agregado; después se reparten a los suscriptores
// vivos vía Dispatch (el relayer garantiza la reentrega).
type UserService struct {
	repo  domain.UserRepository
	cache sharedCache.Cache
	bus   *sharedBus.EventBus
	log   *zap.Logger
}

// NewUserService constructor
func NewUserService(repo domain.UserRepository, cache sharedCache.Cache, bus *sharedBus.EventBus, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, cache: cache, bus: bus, log: log}
}

func (s *UserService) RegisterUser(ctx context.Context, email, nombre string, role domain.UserRole) (*domain.User, error) {
	user, err := domain.NewUser(email, nombre, role)
	if err != nil {
		return nil, err
	}

	evts := user.PullDomainEvents()
	if err := s.repo.Create(ctx, user, sharedDomain.RecordsFromEvents(evts)); err != nil {
		return nil, err
	}
	s.dispatchAll(ctx, evts)
	s.cacheSet(user)

	return user, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.mutate(ctx, userID, func(u *domain.User) error {
		return u.VerifyEmail()
	})
}

func (s *UserService) VerifyPhone(ctx context.Context, userID uuid.UUID, phoneNumber string) (*domain.User, error) {
	return s.mutate(ctx, userID, func(u *domain.User) error {
		u.VerifyPhone(phoneNumber)
		return nil
	})
}

func (s *UserService) SuspendUser(ctx context.Context, userID uuid.UUID, reason string) (*domain.User, error) {
	return s.mutate(ctx, userID, func(u *domain.User) error {
		return u.Suspend(reason)
	})
}

func (s *UserService) ReactivateUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.mutate(ctx, userID, func(u *domain.User) error {
		return u.Reactivate()
	})
}

// GetUser obtiene un usuario (primero intenta desde cache).
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.cache != nil {
		var u domain.User
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &u); ok {
			return &u, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(user)
	return user, nil
}

// mutate carga el agregado, aplica la transición y persiste agregado + outbox
// en una transacción. Los errores de dominio (estado inválido, no autorizado)
// se devuelven al caller sin tocar la persistencia.
func (s *UserService) mutate(ctx context.Context, userID uuid.UUID, fn func(*domain.User) error) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	evts := user.PullDomainEvents()
	if err := s.repo.Update(ctx, user, sharedDomain.RecordsFromEvents(evts)); err != nil {
		return nil, err
	}
	s.dispatchAll(ctx, evts)
	s.cacheSet(user)

	return user, nil
}

func (s *UserService) dispatchAll(ctx context.Context, evts []sharedEvents.DomainEvent) {
	for _, evt := range evts {
		_ = s.bus.Dispatch(ctx, evt)
	}
}

func (s *UserService) cacheSet(u *domain.User) {
	if s.cache == nil {
		return
	}
	go func(u *domain.User) {
		ctxCache, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		if err := s.cache.Set(ctxCache, domain.CacheKeyByID(u.ID), u, 0); err != nil {
			s.log.Warn("⚠️ Cache update failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		}
	}(u)
}
