package metrics

// Counter es un contador monótono para observabilidad.
// El bus lo usa para hacer visibles los fallos que absorbe
// (errores de handlers y de escritura en outbox).
type Counter interface {
	Inc(delta int64)
}

// NopCounter es la implementación por defecto cuando no se configura métrica.
type NopCounter struct{}

func (c *NopCounter) Inc(_ int64) {}

var _ Counter = (*NopCounter)(nil)
