package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		nombre  string
		role    UserRole
		wantErr error
	}{
		{name: "maid válida", email: "maria@example.com", nombre: "María", role: RoleMaid},
		{name: "sponsor válido", email: "ali@example.com", nombre: "Ali", role: RoleSponsor},
		{name: "email vacío", email: "", nombre: "María", role: RoleMaid, wantErr: ErrInvalidUser},
		{name: "nombre vacío", email: "maria@example.com", nombre: "", role: RoleMaid, wantErr: ErrInvalidUser},
		{name: "rol desconocido", email: "maria@example.com", nombre: "María", role: UserRole("admin"), wantErr: ErrInvalidUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.email, tt.nombre, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, UserActive, u.Status)
			assert.False(t, u.EmailVerified)
			assert.False(t, u.PhoneVerified)

			evts := u.PullDomainEvents()
			assert.Len(t, evts, 1)
			assert.Equal(t, UserCreated, evts[0].Type)
			assert.Equal(t, u.ID.String(), evts[0].AggregateID)
		})
	}
}

func TestUser_VerifyEmail(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)
	u.PullDomainEvents()

	assert.NoError(t, u.VerifyEmail())
	assert.True(t, u.EmailVerified)

	evts := u.PullDomainEvents()
	assert.Len(t, evts, 1)
	assert.Equal(t, UserEmailVerified, evts[0].Type)

	// Verificar dos veces es un error y no emite evento
	assert.ErrorIs(t, u.VerifyEmail(), ErrEmailAlreadyVerified)
	assert.Empty(t, u.PullDomainEvents())
}

func TestUser_VerifyPhone(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)
	u.PullDomainEvents()

	u.VerifyPhone("+34600111222")
	assert.True(t, u.PhoneVerified)
	assert.Equal(t, "+34600111222", u.Phone)

	// Sin guard de duplicado: cada llamada registra evento
	u.VerifyPhone("+34600333444")
	assert.Equal(t, "+34600333444", u.Phone)

	evts := u.PullDomainEvents()
	assert.Len(t, evts, 2)
	assert.Equal(t, UserPhoneVerified, evts[0].Type)
	assert.Equal(t, UserPhoneVerified, evts[1].Type)
}

func TestUser_IsVerified(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)

	assert.False(t, u.IsVerified())
	_ = u.VerifyEmail()
	assert.False(t, u.IsVerified()) // falta el teléfono
	u.VerifyPhone("+34600111222")
	assert.True(t, u.IsVerified())
}

func TestUser_SuspendReactivate(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)
	u.PullDomainEvents()

	assert.NoError(t, u.Suspend("fraude"))
	assert.Equal(t, UserSuspended, u.Status)
	assert.False(t, u.IsActive())

	// Suspender un usuario ya suspendido es idempotente (y vuelve a emitir)
	assert.NoError(t, u.Suspend("otra vez"))

	assert.NoError(t, u.Reactivate())
	assert.Equal(t, UserActive, u.Status)

	evts := u.PullDomainEvents()
	assert.Len(t, evts, 3)
	assert.Equal(t, UserSuspendedEvent, evts[0].Type)
	assert.Equal(t, UserSuspendedEvent, evts[1].Type)
	assert.Equal(t, UserReactivated, evts[2].Type)
}

func TestUser_ReactivateRequiresSuspended(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)
	u.PullDomainEvents()

	assert.ErrorIs(t, u.Reactivate(), ErrInvalidState)
	assert.Empty(t, u.PullDomainEvents())
}

func TestUser_SuspendDeleted(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)
	u.Status = UserDeleted
	u.PullDomainEvents()

	assert.ErrorIs(t, u.Suspend("x"), ErrInvalidState)
	assert.Empty(t, u.PullDomainEvents())
}

func TestUser_PullDomainEventsDrains(t *testing.T) {
	u, _ := NewUser("maria@example.com", "María", RoleMaid)

	first := u.PullDomainEvents()
	assert.Len(t, first, 1)
	// Segundo drain sin transiciones nuevas: vacío
	assert.Empty(t, u.PullDomainEvents())
}
