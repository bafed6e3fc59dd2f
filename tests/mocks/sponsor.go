package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	sponsorDomain "github.com/davicafu/maidlink/internal/sponsor/domain"
)

// InMemoryProfileRepo simula ProfileRepository. Sin outbox: el contexto
// sponsor persiste sus eventos al publicarlos, no en el repositorio.
type InMemoryProfileRepo struct {
	Profiles map[uuid.UUID]*sponsorDomain.SponsorProfile
	mu       sync.Mutex
}

var _ sponsorDomain.ProfileRepository = (*InMemoryProfileRepo)(nil)

func NewInMemoryProfileRepo() *InMemoryProfileRepo {
	return &InMemoryProfileRepo{
		Profiles: make(map[uuid.UUID]*sponsorDomain.SponsorProfile),
	}
}

func (r *InMemoryProfileRepo) Create(ctx context.Context, p *sponsorDomain.SponsorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Profiles {
		if existing.UserID == p.UserID {
			return sponsorDomain.ErrInvalidProfile
		}
	}
	cp := *p
	r.Profiles[p.ID] = &cp
	return nil
}

func (r *InMemoryProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*sponsorDomain.SponsorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Profiles[id]
	if !ok {
		return nil, sponsorDomain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*sponsorDomain.SponsorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sponsorDomain.ErrProfileNotFound
}

func (r *InMemoryProfileRepo) Update(ctx context.Context, p *sponsorDomain.SponsorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Profiles[p.ID]; !ok {
		return sponsorDomain.ErrProfileNotFound
	}
	cp := *p
	r.Profiles[p.ID] = &cp
	return nil
}
