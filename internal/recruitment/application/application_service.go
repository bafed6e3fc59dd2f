package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/recruitment/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
)

// ApplicationService define los casos de uso de candidaturas.
type ApplicationService struct {
	repo domain.ApplicationRepository
	bus  *sharedBus.EventBus
	log  *zap.Logger
}

func NewApplicationService(repo domain.ApplicationRepository, bus *sharedBus.EventBus, log *zap.Logger) *ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApplicationService{repo: repo, bus: bus, log: log}
}

// Apply crea una candidatura pending de una maid a una oferta.
func (s *ApplicationService) Apply(ctx context.Context, jobID, maidID, sponsorID uuid.UUID, coverLetter string) (*domain.JobApplication, error) {
	app, err := domain.NewJobApplication(jobID, maidID, sponsorID, coverLetter)
	if err != nil {
		return nil, err
	}

	evts := app.PullDomainEvents()
	if err := s.repo.Create(ctx, app, sharedDomain.RecordsFromEvents(evts)); err != nil {
		return nil, err
	}
	s.dispatchAll(ctx, evts)
	return app, nil
}

func (s *ApplicationService) UpdateCoverLetter(ctx context.Context, id uuid.UUID, text string) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.UpdateCoverLetter(text)
	})
}

func (s *ApplicationService) MarkAsReviewed(ctx context.Context, id, sponsorID uuid.UUID) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.MarkAsReviewed(sponsorID)
	})
}

func (s *ApplicationService) ScheduleInterview(ctx context.Context, id uuid.UUID, date time.Time, sponsorID uuid.UUID) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.ScheduleInterview(date, sponsorID)
	})
}

func (s *ApplicationService) CompleteInterview(ctx context.Context, id uuid.UUID, notes string) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.CompleteInterview(notes)
	})
}

func (s *ApplicationService) Accept(ctx context.Context, id, sponsorID uuid.UUID, notes string) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.Accept(sponsorID, notes)
	})
}

func (s *ApplicationService) Reject(ctx context.Context, id, sponsorID uuid.UUID, reason string) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.Reject(sponsorID, reason)
	})
}

func (s *ApplicationService) Withdraw(ctx context.Context, id, maidID uuid.UUID, reason string) (*domain.JobApplication, error) {
	return s.mutate(ctx, id, func(a *domain.JobApplication) error {
		return a.Withdraw(maidID, reason)
	})
}

func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ApplicationService) ListByMaid(ctx context.Context, maidID uuid.UUID, limit, offset int) ([]*domain.JobApplication, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByMaid(ctx, maidID, limit, offset)
}

// mutate carga la candidatura, aplica la transición y persiste agregado +
// filas outbox en una transacción. Un error de dominio no toca persistencia.
func (s *ApplicationService) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.JobApplication) error) (*domain.JobApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(app); err != nil {
		return nil, err
	}

	evts := app.PullDomainEvents()
	if err := s.repo.Update(ctx, app, sharedDomain.RecordsFromEvents(evts)); err != nil {
		return nil, err
	}
	s.dispatchAll(ctx, evts)
	return app, nil
}

func (s *ApplicationService) dispatchAll(ctx context.Context, evts []sharedEvents.DomainEvent) {
	for _, evt := range evts {
		_ = s.bus.Dispatch(ctx, evt)
	}
}
