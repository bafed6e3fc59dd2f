package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/sponsor/domain"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
)

// SponsorService define los casos de uso del perfil de sponsor.
// El repositorio Mongo no ofrece transacción con el outbox, así que aquí los
// eventos se publican vía EventBus.Publish, que los persiste en el momento
// de la publicación (un fallo de esa escritura se absorbe y se loguea).
type SponsorService struct {
	repo domain.ProfileRepository
	bus  *sharedBus.EventBus
	log  *zap.Logger
}

func NewSponsorService(repo domain.ProfileRepository, bus *sharedBus.EventBus, log *zap.Logger) *SponsorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SponsorService{repo: repo, bus: bus, log: log}
}

// CreateProfile crea un perfil draft para el usuario.
func (s *SponsorService) CreateProfile(ctx context.Context, userID uuid.UUID) (*domain.SponsorProfile, error) {
	profile, err := domain.NewSponsorProfile(userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.publishAll(ctx, profile)
	return profile, nil
}

func (s *SponsorService) UpdateBasicInfo(ctx context.Context, id uuid.UUID, nombre, phone, country, city, address string) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.UpdateBasicInfo(nombre, phone, country, city, address)
	})
}

func (s *SponsorService) UpdateHouseholdInfo(ctx context.Context, id uuid.UUID, householdSize int) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.UpdateHouseholdInfo(householdSize)
	})
}

func (s *SponsorService) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs map[string]interface{}) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.UpdatePreferences(prefs)
	})
}

func (s *SponsorService) UploadDocument(ctx context.Context, id uuid.UUID, docType, url string) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.UploadDocument(docType, url)
	})
}

func (s *SponsorService) SubmitForVerification(ctx context.Context, id uuid.UUID) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.SubmitForVerification()
	})
}

func (s *SponsorService) Verify(ctx context.Context, id uuid.UUID, verifiedBy string) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.Verify(verifiedBy)
	})
}

func (s *SponsorService) Reject(ctx context.Context, id uuid.UUID, reason, rejectedBy string) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.Reject(reason, rejectedBy)
	})
}

func (s *SponsorService) Archive(ctx context.Context, id uuid.UUID, reason string) (*domain.SponsorProfile, error) {
	return s.mutate(ctx, id, func(p *domain.SponsorProfile) error {
		return p.Archive(reason)
	})
}

func (s *SponsorService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.SponsorProfile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SponsorService) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*domain.SponsorProfile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *SponsorService) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.SponsorProfile) error) (*domain.SponsorProfile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.publishAll(ctx, profile)
	return profile, nil
}

func (s *SponsorService) publishAll(ctx context.Context, profile *domain.SponsorProfile) {
	for _, evt := range profile.PullDomainEvents() {
		s.bus.Publish(ctx, evt)
	}
}
