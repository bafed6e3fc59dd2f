package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	recruitmentDomain "github.com/davicafu/maidlink/internal/recruitment/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// InMemoryApplicationRepo simula ApplicationRepository con outbox incluido.
type InMemoryApplicationRepo struct {
	Applications map[uuid.UUID]*recruitmentDomain.JobApplication
	Outbox       []sharedDomain.OutboxRecord
	mu           sync.Mutex
}

var _ recruitmentDomain.ApplicationRepository = (*InMemoryApplicationRepo)(nil)

func NewInMemoryApplicationRepo() *InMemoryApplicationRepo {
	return &InMemoryApplicationRepo{
		Applications: make(map[uuid.UUID]*recruitmentDomain.JobApplication),
	}
}

func (r *InMemoryApplicationRepo) Create(ctx context.Context, a *recruitmentDomain.JobApplication, records []sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.Applications[a.ID] = &cp
	r.Outbox = append(r.Outbox, records...)
	return nil
}

func (r *InMemoryApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*recruitmentDomain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.Applications[id]
	if !ok {
		return nil, recruitmentDomain.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *InMemoryApplicationRepo) Update(ctx context.Context, a *recruitmentDomain.JobApplication, records []sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Applications[a.ID]; !ok {
		return recruitmentDomain.ErrApplicationNotFound
	}
	cp := *a
	r.Applications[a.ID] = &cp
	r.Outbox = append(r.Outbox, records...)
	return nil
}

func (r *InMemoryApplicationRepo) ListByMaid(ctx context.Context, maidID uuid.UUID, limit, offset int) ([]*recruitmentDomain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []*recruitmentDomain.JobApplication
	for _, a := range r.Applications {
		if a.MaidID == maidID {
			cp := *a
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if offset > len(list) {
		return []*recruitmentDomain.JobApplication{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
