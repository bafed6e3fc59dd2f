package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/maidlink/internal/shared/domain/events"
)

// ResetStatus es el estado de una solicitud de restablecimiento de contraseña.
type ResetStatus string

const (
	ResetPending   ResetStatus = "pending"
	ResetUsed      ResetStatus = "used"
	ResetExpired   ResetStatus = "expired"
	ResetCancelled ResetStatus = "cancelled"
)

// DefaultResetTTL es la vigencia por defecto de un token de restablecimiento.
const DefaultResetTTL = 30 * time.Minute

// PasswordReset es el agregado de restablecimiento de contraseña.
type PasswordReset struct {
	sharedEvents.Recorder

	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Email     string      `json:"email"`
	Token     string      `json:"token"`
	Status    ResetStatus `json:"status"`
	ExpiresAt time.Time   `json:"expires_at"`
	UsedAt    *time.Time  `json:"used_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewPasswordReset crea una solicitud pendiente con token aleatorio.
func NewPasswordReset(userID uuid.UUID, email string, ttl time.Duration) (*PasswordReset, error) {
	if email == "" || userID == uuid.Nil {
		return nil, ErrInvalidUser
	}
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pr := &PasswordReset{
		ID:        uuid.New(),
		UserID:    userID,
		Email:     email,
		Token:     hex.EncodeToString(buf),
		Status:    ResetPending,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	pr.Record(PasswordResetRequested, pr.ID.String(), map[string]interface{}{
		"resetId": pr.ID.String(),
		"userId":  pr.UserID.String(),
		"email":   pr.Email,
	})
	return pr, nil
}

// IsValid indica si el token sigue siendo utilizable.
// Ojo: no es una query pura. Si la solicitud pendiente ya venció, la
// transiciona a expired y registra el evento correspondiente.
func (pr *PasswordReset) IsValid() bool {
	if pr.Status != ResetPending {
		return false
	}
	if time.Now().UTC().After(pr.ExpiresAt) {
		pr.Status = ResetExpired
		pr.touch()
		pr.Record(PasswordResetExpired, pr.ID.String(), pr.eventPayload())
		return false
	}
	return true
}

// Expire fuerza la expiración de una solicitud pendiente.
func (pr *PasswordReset) Expire() error {
	if pr.Status != ResetPending {
		return ErrInvalidState
	}
	pr.Status = ResetExpired
	pr.touch()
	pr.Record(PasswordResetExpired, pr.ID.String(), pr.eventPayload())
	return nil
}

// MarkAsUsed consume el token. Falla con ErrInvalidToken si ya no es válido.
func (pr *PasswordReset) MarkAsUsed() error {
	if !pr.IsValid() {
		return ErrInvalidToken
	}
	now := time.Now().UTC()
	pr.Status = ResetUsed
	pr.UsedAt = &now
	pr.touch()
	pr.Record(PasswordResetUsed, pr.ID.String(), pr.eventPayload())
	return nil
}

// Cancel anula una solicitud pendiente.
func (pr *PasswordReset) Cancel(reason string) error {
	if pr.Status != ResetPending {
		return ErrInvalidState
	}
	pr.Status = ResetCancelled
	pr.touch()
	payload := pr.eventPayload()
	payload["reason"] = reason
	pr.Record(PasswordResetCancelled, pr.ID.String(), payload)
	return nil
}

// IsApproachingExpiry es una query pura: true si quedan entre 0 (exclusivo)
// y thresholdMinutes (inclusivo) minutos de vigencia.
func (pr *PasswordReset) IsApproachingExpiry(thresholdMinutes int) bool {
	if thresholdMinutes <= 0 {
		thresholdMinutes = 10
	}
	remaining := time.Until(pr.ExpiresAt)
	return remaining > 0 && remaining <= time.Duration(thresholdMinutes)*time.Minute
}

func (pr *PasswordReset) eventPayload() map[string]interface{} {
	return map[string]interface{}{
		"resetId": pr.ID.String(),
		"userId":  pr.UserID.String(),
		"email":   pr.Email,
	}
}

func (pr *PasswordReset) touch() {
	pr.UpdatedAt = time.Now().UTC()
}
