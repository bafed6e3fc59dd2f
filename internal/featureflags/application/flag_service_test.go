package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/featureflags/domain"
	"github.com/davicafu/maidlink/tests/mocks"
)

func TestFlagService_EnvVarName(t *testing.T) {
	svc := NewFlagService(nil, "FF_", 0, nil, zap.NewNop())

	tests := []struct {
		flag     string
		expected string
	}{
		{flag: "new_checkout", expected: "FF_NEW_CHECKOUT"},
		{flag: "identity.new-module", expected: "FF_IDENTITY_NEW_MODULE"},
		{flag: "v2", expected: "FF_V2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, svc.EnvVarName(tt.flag))
	}
}

func TestFlagService_EnvOverride(t *testing.T) {
	repo := mocks.NewInMemoryFlagRepo()
	svc := NewFlagService(repo, "FF_", 0, nil, zap.NewNop())
	ctx := context.Background()
	ectx := domain.EvalContext{UserID: "u1"}

	// El override de entorno gana sin consultar la base de datos
	t.Setenv("FF_MY_FLAG", "true")
	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 0, repo.Calls)

	t.Setenv("FF_MY_FLAG", "0")
	assert.False(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 0, repo.Calls)

	// Un valor no reconocido se ignora y se sigue con la base de datos
	t.Setenv("FF_MY_FLAG", "maybe")
	assert.False(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 1, repo.Calls)
}

func TestFlagService_CacheTTL(t *testing.T) {
	repo := mocks.NewInMemoryFlagRepo()
	repo.Flags["my_flag"] = &domain.FeatureFlag{Name: "my_flag", Enabled: true, RolloutPercentage: 100}

	clock := clockwork.NewFakeClock()
	svc := NewFlagService(repo, "FF_", 5*time.Minute, clock, zap.NewNop())
	ctx := context.Background()
	ectx := domain.EvalContext{UserID: "u1"}

	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 1, repo.Calls)

	// Dentro del TTL la decisión sale de caché
	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 1, repo.Calls)

	// Cambiar la regla no se nota hasta que expira el TTL
	repo.Flags["my_flag"].Enabled = false
	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 1, repo.Calls)

	clock.Advance(5*time.Minute + time.Second)
	assert.False(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 2, repo.Calls)
}

func TestFlagService_ClearCache(t *testing.T) {
	repo := mocks.NewInMemoryFlagRepo()
	repo.Flags["my_flag"] = &domain.FeatureFlag{Name: "my_flag", Enabled: true, RolloutPercentage: 100}

	svc := NewFlagService(repo, "FF_", 5*time.Minute, clockwork.NewFakeClock(), zap.NewNop())
	ctx := context.Background()
	ectx := domain.EvalContext{UserID: "u1"}

	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 1, repo.Calls)

	svc.ClearCache()
	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
	assert.Equal(t, 2, repo.Calls)
}

func TestFlagService_FailClosed(t *testing.T) {
	repo := mocks.NewInMemoryFlagRepo()
	repo.GetErr = errors.New("db down")

	svc := NewFlagService(repo, "FF_", 5*time.Minute, clockwork.NewFakeClock(), zap.NewNop())
	ctx := context.Background()
	ectx := domain.EvalContext{UserID: "u1"}

	// Error de infraestructura: false, y el fallo no se cachea
	assert.False(t, svc.IsEnabled(ctx, "other_flag", ectx))
	assert.False(t, svc.IsEnabled(ctx, "other_flag", ectx))
	assert.Equal(t, 2, repo.Calls)
}

func TestFlagService_FlagNotFound(t *testing.T) {
	repo := mocks.NewInMemoryFlagRepo()
	svc := NewFlagService(repo, "FF_", 5*time.Minute, clockwork.NewFakeClock(), zap.NewNop())

	assert.False(t, svc.IsEnabled(context.Background(), "missing", domain.EvalContext{UserID: "u1"}))
}

func TestFlagService_DisabledFlagNotCached(t *testing.T) {
	repo := mocks.NewInMemoryFlagRepo()
	repo.Flags["my_flag"] = &domain.FeatureFlag{Name: "my_flag", Enabled: false, RolloutPercentage: 100}

	svc := NewFlagService(repo, "FF_", 5*time.Minute, clockwork.NewFakeClock(), zap.NewNop())
	ctx := context.Background()
	ectx := domain.EvalContext{UserID: "u1"}

	assert.False(t, svc.IsEnabled(ctx, "my_flag", ectx))

	// Habilitar el flag se nota de inmediato: disabled no se cachea
	repo.Flags["my_flag"].Enabled = true
	assert.True(t, svc.IsEnabled(ctx, "my_flag", ectx))
}

func TestFlagService_NoRepo(t *testing.T) {
	svc := NewFlagService(nil, "FF_", 0, nil, zap.NewNop())
	assert.False(t, svc.IsEnabled(context.Background(), "anything", domain.EvalContext{}))
}
