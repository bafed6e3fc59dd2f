package domain

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	UserCreated        = "user.created"
	UserEmailVerified  = "user.email_verified"
	UserPhoneVerified  = "user.phone_verified"
	UserSuspendedEvent = "user.suspended"
	UserReactivated    = "user.reactivated"

	PasswordResetRequested = "password_reset.requested"
	PasswordResetExpired   = "password_reset.expired"
	PasswordResetUsed      = "password_reset.used"
	PasswordResetCancelled = "password_reset.cancelled"
)

// EventTypes devuelve todos los tipos de evento del contexto identity,
// para registrar los suscriptores transversales en el arranque.
func EventTypes() []string {
	return []string{
		UserCreated,
		UserEmailVerified,
		UserPhoneVerified,
		UserSuspendedEvent,
		UserReactivated,
		PasswordResetRequested,
		PasswordResetExpired,
		PasswordResetUsed,
		PasswordResetCancelled,
	}
}
