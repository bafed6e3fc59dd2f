package domain

import (
	"time"

	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
)

// UserStatus es el estado del ciclo de vida de un usuario.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserDeleted   UserStatus = "deleted"
)

// UserRole distingue los tres lados del marketplace.
type UserRole string

const (
	RoleMaid    UserRole = "maid"
	RoleSponsor UserRole = "sponsor"
	RoleAgency  UserRole = "agency"
)

// User es el agregado de identidad. Todas las transiciones de estado pasan
// por sus métodos; cada transición aceptada actualiza UpdatedAt y registra
// exactamente un evento de dominio.
type User struct {
	sharedEvents.Recorder

	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Nombre        string     `json:"nombre"`
	Phone         string     `json:"phone,omitempty"`
	Role          UserRole   `json:"role"`
	Status        UserStatus `json:"status"`
	EmailVerified bool       `json:"email_verified"`
	PhoneVerified bool       `json:"phone_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewUser crea un usuario activo sin verificar.
func NewUser(email, nombre string, role UserRole) (*User, error) {
	if email == "" || nombre == "" {
		return nil, ErrInvalidUser
	}
	switch role {
	case RoleMaid, RoleSponsor, RoleAgency:
	default:
		return nil, ErrInvalidUser
	}

	now := time.Now().UTC()
	u := &User{
		ID:        uuid.New(),
		Email:     email,
		Nombre:    nombre,
		Role:      role,
		Status:    UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.Record(UserCreated, u.ID.String(), map[string]interface{}{
		"userId": u.ID.String(),
		"email":  u.Email,
		"role":   string(u.Role),
	})
	return u, nil
}

// VerifyEmail marca el email como verificado. Verificar dos veces es un error.
func (u *User) VerifyEmail() error {
	if u.EmailVerified {
		return ErrEmailAlreadyVerified
	}
	u.EmailVerified = true
	u.touch()
	u.Record(UserEmailVerified, u.ID.String(), map[string]interface{}{
		"userId": u.ID.String(),
		"email":  u.Email,
	})
	return nil
}

// VerifyPhone guarda el teléfono y lo marca verificado sin guard de duplicado.
func (u *User) VerifyPhone(phoneNumber string) {
	u.Phone = phoneNumber
	u.PhoneVerified = true
	u.touch()
	u.Record(UserPhoneVerified, u.ID.String(), map[string]interface{}{
		"userId":      u.ID.String(),
		"phoneNumber": phoneNumber,
	})
}

// Suspend suspende al usuario. Es idempotente sobre un usuario ya suspendido,
// pero un usuario eliminado no puede suspenderse.
func (u *User) Suspend(reason string) error {
	if u.Status == UserDeleted {
		return ErrInvalidState
	}
	u.Status = UserSuspended
	u.touch()
	u.Record(UserSuspendedEvent, u.ID.String(), map[string]interface{}{
		"userId": u.ID.String(),
		"reason": reason,
	})
	return nil
}

// Reactivate reactiva un usuario suspendido.
func (u *User) Reactivate() error {
	if u.Status != UserSuspended {
		return ErrInvalidState
	}
	u.Status = UserActive
	u.touch()
	u.Record(UserReactivated, u.ID.String(), map[string]interface{}{
		"userId": u.ID.String(),
	})
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// IsVerified exige email y teléfono verificados.
func (u *User) IsVerified() bool {
	return u.EmailVerified && u.PhoneVerified
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
