package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalContext_Key(t *testing.T) {
	tests := []struct {
		name     string
		ctx      EvalContext
		expected string
	}{
		{name: "userId tiene prioridad", ctx: EvalContext{UserID: "u1", SessionID: "s1"}, expected: "u1"},
		{name: "sessionId como fallback", ctx: EvalContext{SessionID: "s1"}, expected: "s1"},
		{name: "anonymous por defecto", ctx: EvalContext{}, expected: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ctx.Key())
		})
	}
}

func TestHashContext_Deterministic(t *testing.T) {
	c := EvalContext{UserID: "user-42"}

	h1 := HashContext(c)
	h2 := HashContext(c)
	assert.Equal(t, h1, h2)
	assert.GreaterOrEqual(t, h1, int32(0))

	// Distintas keys caen (casi siempre) en buckets distintos
	assert.NotEqual(t, HashContext(EvalContext{UserID: "user-42"}), HashContext(EvalContext{UserID: "user-43"}))
}

func TestHashContext_KnownValue(t *testing.T) {
	// hash("ab") = 'a'*31 + 'b' = 97*31 + 98 = 3105
	assert.Equal(t, int32(3105), HashContext(EvalContext{UserID: "ab"}))
}

func TestFeatureFlag_EvaluateFor_Rollout(t *testing.T) {
	ctx := EvalContext{UserID: "user-42"}

	// Rollout 0: nadie entra
	zero := &FeatureFlag{Name: "f", Enabled: true, RolloutPercentage: 0}
	assert.False(t, zero.EvaluateFor(ctx))

	// Rollout 100: todos entran
	full := &FeatureFlag{Name: "f", Enabled: true, RolloutPercentage: 100}
	assert.True(t, full.EvaluateFor(ctx))

	// El bucket de un mismo usuario es estable: la decisión no cambia entre llamadas
	half := &FeatureFlag{Name: "f", Enabled: true, RolloutPercentage: 50}
	first := half.EvaluateFor(ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, half.EvaluateFor(ctx))
	}
}

func TestFeatureFlag_EvaluateFor_TargetUsers(t *testing.T) {
	f := &FeatureFlag{
		Name:              "f",
		Enabled:           true,
		RolloutPercentage: 100,
		TargetUsers:       []string{"user-1", "user-2"},
	}

	assert.True(t, f.EvaluateFor(EvalContext{UserID: "user-1"}))
	assert.False(t, f.EvaluateFor(EvalContext{UserID: "user-3"}))
	// Sin userId no se puede estar en la allow-list
	assert.False(t, f.EvaluateFor(EvalContext{SessionID: "s1"}))
}

func TestFeatureFlag_EvaluateFor_TargetRoles(t *testing.T) {
	f := &FeatureFlag{
		Name:              "f",
		Enabled:           true,
		RolloutPercentage: 100,
		TargetRoles:       []string{"maid"},
	}

	assert.True(t, f.EvaluateFor(EvalContext{UserID: "u", Role: "maid"}))
	assert.False(t, f.EvaluateFor(EvalContext{UserID: "u", Role: "sponsor"}))
	assert.False(t, f.EvaluateFor(EvalContext{UserID: "u"}))
}

func TestFeatureFlag_EvaluateFor_AllConditions(t *testing.T) {
	// Todas las condiciones aplican en conjunto: rollout Y usuarios Y roles
	f := &FeatureFlag{
		Name:              "f",
		Enabled:           true,
		RolloutPercentage: 100,
		TargetUsers:       []string{"user-1"},
		TargetRoles:       []string{"maid"},
	}

	assert.True(t, f.EvaluateFor(EvalContext{UserID: "user-1", Role: "maid"}))
	assert.False(t, f.EvaluateFor(EvalContext{UserID: "user-1", Role: "sponsor"}))
	assert.False(t, f.EvaluateFor(EvalContext{UserID: "user-2", Role: "maid"}))
}
