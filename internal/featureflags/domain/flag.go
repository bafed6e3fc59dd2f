package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFlagNotFound = errors.New("feature flag not found")
)

// FeatureFlag es la regla de activación de una funcionalidad.
// Se administra fuera de este core (panel interno) y aquí solo se evalúa.
type FeatureFlag struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Enabled           bool      `json:"enabled"`
	RolloutPercentage int       `json:"rollout_percentage"` // 0..100
	TargetUsers       []string  `json:"target_users,omitempty"`
	TargetRoles       []string  `json:"target_roles,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EvalContext identifica al llamante para el bucketing del rollout.
type EvalContext struct {
	UserID    string
	SessionID string
	Role      string
}

// Key devuelve la identidad estable del llamante: userId, si no sessionId,
// si no "anonymous". Es lo que hace el rollout sticky por usuario y no por
// petición.
func (c EvalContext) Key() string {
	if c.UserID != "" {
		return c.UserID
	}
	if c.SessionID != "" {
		return c.SessionID
	}
	return "anonymous"
}

// HashContext calcula el bucket del llamante: hash rodante de 32 bits con
// signo (hash = hash*31 + byte) sobre la key, en valor absoluto. Es pura y
// determinista: la misma key cae siempre en el mismo bucket, entre procesos
// y reinicios.
func HashContext(c EvalContext) int32 {
	var h int32
	for _, b := range []byte(c.Key()) {
		h = h*31 + int32(b)
	}
	if h == -2147483648 {
		// abs(MinInt32) no es representable; cualquier valor fijo mantiene el determinismo
		return 0
	}
	if h < 0 {
		return -h
	}
	return h
}

// EvaluateFor aplica la regla del flag sobre el contexto, en orden:
// porcentaje de rollout, allow-list de usuarios, allow-list de roles.
// Asume Enabled=true; un flag deshabilitado se descarta antes de llegar aquí.
func (f *FeatureFlag) EvaluateFor(c EvalContext) bool {
	if f.RolloutPercentage < 100 {
		bucket := HashContext(c) % 100
		if int(bucket) >= f.RolloutPercentage {
			return false
		}
	}

	if len(f.TargetUsers) > 0 && !contains(f.TargetUsers, c.UserID) {
		return false
	}

	if len(f.TargetRoles) > 0 && !contains(f.TargetRoles, c.Role) {
		return false
	}

	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// FlagRepository define el acceso de solo lectura a la tabla de flags.
type FlagRepository interface {
	// Debe devolver ErrFlagNotFound si el flag no existe.
	GetByName(ctx context.Context, name string) (*FeatureFlag, error)
}
