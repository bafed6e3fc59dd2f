package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/identity/domain"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
	"github.com/davicafu/maidlink/tests/mocks"
)

func newUserService(repo *mocks.InMemoryUserRepo) *UserService {
	bus := sharedBus.NewEventBus(zap.NewNop())
	return NewUserService(repo, mocks.NewDummyCache(), bus, zap.NewNop())
}

func TestRegisterUser_Success(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newUserService(repo)

	user, err := service.RegisterUser(context.Background(), "maria@example.com", "María", domain.RoleMaid)
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, domain.UserActive, user.Status)

	// ✅ Verificar que se creó la fila outbox junto al agregado
	assert.Len(t, repo.Outbox, 1)
	assert.Equal(t, domain.UserCreated, repo.Outbox[0].EventType)
	assert.Equal(t, user.ID.String(), repo.Outbox[0].AggregateID)
}

func TestRegisterUser_Duplicate(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newUserService(repo)

	_, err := service.RegisterUser(context.Background(), "dup@example.com", "Juan", domain.RoleSponsor)
	assert.NoError(t, err)

	_, err = service.RegisterUser(context.Background(), "dup@example.com", "Juan II", domain.RoleSponsor)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestRegisterUser_InvalidRole(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newUserService(repo)

	_, err := service.RegisterUser(context.Background(), "x@example.com", "X", domain.UserRole("admin"))
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
	assert.Empty(t, repo.Outbox)
}

func TestVerifyEmail_Flow(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newUserService(repo)

	user, _ := service.RegisterUser(context.Background(), "maria@example.com", "María", domain.RoleMaid)

	updated, err := service.VerifyEmail(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.True(t, updated.EmailVerified)

	assert.Len(t, repo.Outbox, 2)
	assert.Equal(t, domain.UserEmailVerified, repo.Outbox[1].EventType)

	// La segunda verificación falla y no añade fila outbox
	_, err = service.VerifyEmail(context.Background(), user.ID)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyVerified)
	assert.Len(t, repo.Outbox, 2)
}

func TestSuspendReactivate_Flow(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newUserService(repo)

	user, _ := service.RegisterUser(context.Background(), "maria@example.com", "María", domain.RoleMaid)

	suspended, err := service.SuspendUser(context.Background(), user.ID, "fraude")
	assert.NoError(t, err)
	assert.Equal(t, domain.UserSuspended, suspended.Status)

	reactivated, err := service.ReactivateUser(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.UserActive, reactivated.Status)

	// user.created + user.suspended + user.reactivated
	assert.Len(t, repo.Outbox, 3)
}

func TestMutate_RepoFailureReturnsError(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newUserService(repo)

	user, _ := service.RegisterUser(context.Background(), "maria@example.com", "María", domain.RoleMaid)

	repo.UpdateErr = assert.AnError
	_, err := service.SuspendUser(context.Background(), user.ID, "x")
	assert.ErrorIs(t, err, assert.AnError)

	// El agregado persistido no cambió
	u, _ := repo.GetByID(context.Background(), user.ID)
	assert.Equal(t, domain.UserActive, u.Status)
}

func TestGetUser_NotFound(t *testing.T) {
	service := newUserService(mocks.NewInMemoryUserRepo())

	_, err := service.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUser_CacheHit(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	cache := mocks.NewDummyCache()
	bus := sharedBus.NewEventBus(zap.NewNop())
	service := NewUserService(repo, cache, bus, zap.NewNop())

	user, _ := service.RegisterUser(context.Background(), "maria@example.com", "María", domain.RoleMaid)
	_ = cache.Set(context.Background(), domain.CacheKeyByID(user.ID), user, 0)

	// Se puede leer aunque el repo esté vacío para ese ID
	delete(repo.Users, user.ID)
	got, err := service.GetUser(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}
