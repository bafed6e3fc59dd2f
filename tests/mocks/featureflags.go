package mocks

import (
	"context"
	"sync"

	flagsDomain "github.com/davicafu/maidlink/internal/featureflags/domain"
)

// InMemoryFlagRepo simula FlagRepository. GetErr fuerza un error de
// infraestructura para probar la degradación fail-closed del servicio.
type InMemoryFlagRepo struct {
	Flags  map[string]*flagsDomain.FeatureFlag
	GetErr error

	mu    sync.Mutex
	Calls int
}

var _ flagsDomain.FlagRepository = (*InMemoryFlagRepo)(nil)

func NewInMemoryFlagRepo() *InMemoryFlagRepo {
	return &InMemoryFlagRepo{
		Flags: make(map[string]*flagsDomain.FeatureFlag),
	}
}

func (r *InMemoryFlagRepo) GetByName(ctx context.Context, name string) (*flagsDomain.FeatureFlag, error) {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()

	if r.GetErr != nil {
		return nil, r.GetErr
	}
	f, ok := r.Flags[name]
	if !ok {
		return nil, flagsDomain.ErrFlagNotFound
	}
	cp := *f
	return &cp, nil
}
