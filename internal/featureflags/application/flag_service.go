package application

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/davicafu/maidlink/internal/featureflags/domain"
)

// DefaultCacheTTL es la ventana de caché de decisiones resueltas.
const DefaultCacheTTL = 5 * time.Minute

// cachedDecision guarda una decisión resuelta y su expiración.
type cachedDecision struct {
	value     bool
	expiresAt time.Time
}

// FlagService resuelve flags combinando override de entorno, caché local
// con TTL y la regla de base de datos. Degrada a false (fail-closed) si la
// base de datos no responde o no hay repositorio configurado.
type FlagService struct {
	repo      domain.FlagRepository // opcional
	envPrefix string
	ttl       time.Duration
	clock     clockwork.Clock
	log       *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedDecision
}

func NewFlagService(repo domain.FlagRepository, envPrefix string, ttl time.Duration, clock clockwork.Clock, log *zap.Logger) *FlagService {
	if envPrefix == "" {
		envPrefix = "FF_"
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FlagService{
		repo:      repo,
		envPrefix: envPrefix,
		ttl:       ttl,
		clock:     clock,
		log:       log,
		cache:     make(map[string]cachedDecision),
	}
}

// IsEnabled resuelve un flag para el contexto dado, cortocircuitando en la
// primera respuesta definitiva: entorno, caché y por último base de datos.
func (s *FlagService) IsEnabled(ctx context.Context, flagName string, ectx domain.EvalContext) bool {
	// 1. Override de entorno
	if v, ok := s.envOverride(flagName); ok {
		return v
	}

	// 2. Caché local (TTL fijo desde la escritura)
	if v, ok := s.cachedValue(flagName); ok {
		return v
	}

	// 3. Regla de base de datos
	if s.repo == nil {
		return false
	}

	flag, err := s.repo.GetByName(ctx, flagName)
	if err != nil {
		if !errors.Is(err, domain.ErrFlagNotFound) {
			// Fail-closed: el código protegido por flag cae al comportamiento
			// legacy. El fallo no se cachea para reintentar cuanto antes.
			s.log.Warn("⚠️ No se pudo resolver el flag, degradando a false",
				zap.String("flag", flagName),
				zap.Error(err),
			)
		}
		return false
	}
	if !flag.Enabled {
		return false
	}

	resolved := flag.EvaluateFor(ectx)

	// 4. Cachear la decisión resuelta
	s.mu.Lock()
	s.cache[flagName] = cachedDecision{value: resolved, expiresAt: s.clock.Now().Add(s.ttl)}
	s.mu.Unlock()

	return resolved
}

// ClearCache invalida todas las decisiones cacheadas de una vez, por ejemplo
// tras una edición administrativa de flags. Es la única invalidación
// soportada aparte de la expiración por TTL.
func (s *FlagService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedDecision)
}

// EnvVarName deriva el nombre de variable de entorno de un flag:
// mayúsculas, no-alfanuméricos a '_' y el prefijo configurado.
// Ej: "identity.new_module" -> "FF_IDENTITY_NEW_MODULE".
func (s *FlagService) EnvVarName(flagName string) string {
	var b strings.Builder
	for _, r := range flagName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune('_')
		}
	}
	return s.envPrefix + b.String()
}

func (s *FlagService) envOverride(flagName string) (bool, bool) {
	raw, ok := os.LookupEnv(s.EnvVarName(flagName))
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		// valor no reconocido: se ignora y se sigue con caché/DB
		return false, false
	}
}

func (s *FlagService) cachedValue(flagName string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cache[flagName]
	if !ok {
		return false, false
	}
	if s.clock.Now().After(d.expiresAt) {
		delete(s.cache, flagName)
		return false, false
	}
	return d.value, true
}
