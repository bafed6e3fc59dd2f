package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// InMemoryOutboxRepo simula OutboxRepository con un slice protegido por mutex.
type InMemoryOutboxRepo struct {
	Records []sharedDomain.OutboxRecord
	mu      sync.Mutex

	// InsertErr fuerza el fallo de Insert para simular un outbox caído.
	InsertErr error
}

var _ sharedDomain.OutboxRepository = (*InMemoryOutboxRepo)(nil)

func NewInMemoryOutboxRepo() *InMemoryOutboxRepo {
	return &InMemoryOutboxRepo{}
}

func (r *InMemoryOutboxRepo) Insert(ctx context.Context, rec sharedDomain.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return r.InsertErr
	}
	r.Records = append(r.Records, rec)
	return nil
}

func (r *InMemoryOutboxRepo) FetchPending(ctx context.Context, limit int) ([]sharedDomain.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []sharedDomain.OutboxRecord
	for _, rec := range r.Records {
		if rec.Status == sharedDomain.OutboxPending {
			pending = append(pending, rec)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit < len(pending) {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *InMemoryOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	return r.mark(id, func(rec *sharedDomain.OutboxRecord) {
		rec.Status = sharedDomain.OutboxProcessed
		t := processedAt
		rec.ProcessedAt = &t
		rec.UpdatedAt = processedAt
	})
}

func (r *InMemoryOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.mark(id, func(rec *sharedDomain.OutboxRecord) {
		rec.Status = sharedDomain.OutboxFailed
		rec.ErrorMessage = errMsg
		rec.UpdatedAt = time.Now().UTC()
	})
}

func (r *InMemoryOutboxRepo) mark(id uuid.UUID, fn func(*sharedDomain.OutboxRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Records {
		if r.Records[i].ID == id && r.Records[i].Status == sharedDomain.OutboxPending {
			fn(&r.Records[i])
			return nil
		}
	}
	return fmt.Errorf("outbox record not found or not pending: %s", id)
}

// ByID devuelve una copia de la fila indicada, para aserciones en tests.
func (r *InMemoryOutboxRepo) ByID(id uuid.UUID) (sharedDomain.OutboxRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.Records {
		if rec.ID == id {
			return rec, true
		}
	}
	return sharedDomain.OutboxRecord{}, false
}
