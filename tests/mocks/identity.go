package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/davicafu/maidlink/internal/identity/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// InMemoryUserRepo simula UserRepository con outbox incluido.
type InMemoryUserRepo struct {
	Users  map[uuid.UUID]*identityDomain.User
	Outbox []sharedDomain.OutboxRecord
	mu     sync.Mutex

	// UpdateErr fuerza el fallo de Update para simular una escritura caída.
	UpdateErr error
}

var _ identityDomain.UserRepository = (*InMemoryUserRepo)(nil)

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		Users: make(map[uuid.UUID]*identityDomain.User),
	}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *identityDomain.User, records []sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Email == u.Email {
			return identityDomain.ErrUserAlreadyExists
		}
	}
	cp := *u
	r.Users[u.ID] = &cp
	r.Outbox = append(r.Outbox, records...)
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*identityDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, identityDomain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepo) Update(ctx context.Context, u *identityDomain.User, records []sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.Users[u.ID]; !ok {
		return identityDomain.ErrUserNotFound
	}
	cp := *u
	r.Users[u.ID] = &cp
	r.Outbox = append(r.Outbox, records...)
	return nil
}

// InMemoryPasswordResetRepo simula PasswordResetRepository.
type InMemoryPasswordResetRepo struct {
	Resets map[uuid.UUID]*identityDomain.PasswordReset
	Outbox []sharedDomain.OutboxRecord
	mu     sync.Mutex
}

var _ identityDomain.PasswordResetRepository = (*InMemoryPasswordResetRepo)(nil)

func NewInMemoryPasswordResetRepo() *InMemoryPasswordResetRepo {
	return &InMemoryPasswordResetRepo{
		Resets: make(map[uuid.UUID]*identityDomain.PasswordReset),
	}
}

func (r *InMemoryPasswordResetRepo) Create(ctx context.Context, pr *identityDomain.PasswordReset, records []sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pr
	r.Resets[pr.ID] = &cp
	r.Outbox = append(r.Outbox, records...)
	return nil
}

func (r *InMemoryPasswordResetRepo) GetByToken(ctx context.Context, token string) (*identityDomain.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pr := range r.Resets {
		if pr.Token == token {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, identityDomain.ErrResetNotFound
}

func (r *InMemoryPasswordResetRepo) Update(ctx context.Context, pr *identityDomain.PasswordReset, records []sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Resets[pr.ID]; !ok {
		return identityDomain.ErrResetNotFound
	}
	cp := *pr
	r.Resets[pr.ID] = &cp
	r.Outbox = append(r.Outbox, records...)
	return nil
}

func (r *InMemoryPasswordResetRepo) ListPendingExpired(ctx context.Context, limit int) ([]*identityDomain.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()

	var stale []*identityDomain.PasswordReset
	for _, pr := range r.Resets {
		if pr.Status == identityDomain.ResetPending && now.After(pr.ExpiresAt) {
			cp := *pr
			stale = append(stale, &cp)
			if len(stale) >= limit {
				break
			}
		}
	}
	return stale, nil
}
