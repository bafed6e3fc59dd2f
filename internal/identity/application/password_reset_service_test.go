package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/identity/domain"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
	"github.com/davicafu/maidlink/tests/mocks"
)

func newResetService(resets *mocks.InMemoryPasswordResetRepo, users *mocks.InMemoryUserRepo, ttl time.Duration) *PasswordResetService {
	bus := sharedBus.NewEventBus(zap.NewNop())
	return NewPasswordResetService(resets, users, bus, ttl, zap.NewNop())
}

func seedUser(t *testing.T, users *mocks.InMemoryUserRepo) *domain.User {
	t.Helper()
	u, err := domain.NewUser("maria@example.com", "María", domain.RoleMaid)
	assert.NoError(t, err)
	u.PullDomainEvents()
	assert.NoError(t, users.Create(context.Background(), u, nil))
	return u
}

func TestRequestReset_Success(t *testing.T) {
	users := mocks.NewInMemoryUserRepo()
	resets := mocks.NewInMemoryPasswordResetRepo()
	service := newResetService(resets, users, 0)

	user := seedUser(t, users)

	pr, err := service.RequestReset(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, pr.Email)
	assert.Equal(t, domain.ResetPending, pr.Status)

	assert.Len(t, resets.Outbox, 1)
	assert.Equal(t, domain.PasswordResetRequested, resets.Outbox[0].EventType)
}

func TestRequestReset_UserNotFound(t *testing.T) {
	service := newResetService(mocks.NewInMemoryPasswordResetRepo(), mocks.NewInMemoryUserRepo(), 0)

	_, err := service.RequestReset(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestConfirmReset_Success(t *testing.T) {
	users := mocks.NewInMemoryUserRepo()
	resets := mocks.NewInMemoryPasswordResetRepo()
	service := newResetService(resets, users, 0)

	user := seedUser(t, users)
	pr, _ := service.RequestReset(context.Background(), user.ID)

	used, err := service.ConfirmReset(context.Background(), pr.Token)
	assert.NoError(t, err)
	assert.Equal(t, domain.ResetUsed, used.Status)
	assert.NotNil(t, used.UsedAt)

	// requested + used
	assert.Len(t, resets.Outbox, 2)
	assert.Equal(t, domain.PasswordResetUsed, resets.Outbox[1].EventType)

	// El token quemado no puede reutilizarse
	_, err = service.ConfirmReset(context.Background(), pr.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestConfirmReset_ExpiredPersistsTransition(t *testing.T) {
	users := mocks.NewInMemoryUserRepo()
	resets := mocks.NewInMemoryPasswordResetRepo()
	service := newResetService(resets, users, time.Millisecond)

	user := seedUser(t, users)
	pr, _ := service.RequestReset(context.Background(), user.ID)

	time.Sleep(5 * time.Millisecond)

	_, err := service.ConfirmReset(context.Background(), pr.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// La expiración colateral quedó persistida aunque el caso de uso falló
	stored, _ := resets.GetByToken(context.Background(), pr.Token)
	assert.Equal(t, domain.ResetExpired, stored.Status)
	assert.Equal(t, domain.PasswordResetExpired, resets.Outbox[len(resets.Outbox)-1].EventType)
}

func TestCancelReset(t *testing.T) {
	users := mocks.NewInMemoryUserRepo()
	resets := mocks.NewInMemoryPasswordResetRepo()
	service := newResetService(resets, users, 0)

	user := seedUser(t, users)
	pr, _ := service.RequestReset(context.Background(), user.ID)

	assert.NoError(t, service.CancelReset(context.Background(), pr.Token, "lo pidió el usuario"))

	stored, _ := resets.GetByToken(context.Background(), pr.Token)
	assert.Equal(t, domain.ResetCancelled, stored.Status)

	// Cancelar de nuevo no es válido
	assert.ErrorIs(t, service.CancelReset(context.Background(), pr.Token, "otra vez"), domain.ErrInvalidState)
}

func TestExpireStale(t *testing.T) {
	users := mocks.NewInMemoryUserRepo()
	resets := mocks.NewInMemoryPasswordResetRepo()
	service := newResetService(resets, users, time.Millisecond)

	user := seedUser(t, users)
	first, _ := service.RequestReset(context.Background(), user.ID)
	second, _ := service.RequestReset(context.Background(), user.ID)

	time.Sleep(5 * time.Millisecond)

	expired := service.ExpireStale(context.Background(), 100)
	assert.Equal(t, 2, expired)

	got1, _ := resets.GetByToken(context.Background(), first.Token)
	got2, _ := resets.GetByToken(context.Background(), second.Token)
	assert.Equal(t, domain.ResetExpired, got1.Status)
	assert.Equal(t, domain.ResetExpired, got2.Status)

	// Un segundo barrido no encuentra nada pendiente
	assert.Equal(t, 0, service.ExpireStale(context.Background(), 100))
}
