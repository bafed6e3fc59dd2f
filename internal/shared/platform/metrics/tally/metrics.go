package tally

import (
	tallylib "github.com/uber-go/tally/v4"

	"github.com/davicafu/maidlink/internal/shared/platform/metrics"
)

// Counter adapta un tally.Counter a la interfaz metrics.Counter.
type Counter struct {
	ctr tallylib.Counter
}

func NewCounter(scope tallylib.Scope, name string) *Counter {
	return &Counter{ctr: scope.Counter(name)}
}

func (c *Counter) Inc(delta int64) {
	c.ctr.Inc(delta)
}

var _ metrics.Counter = (*Counter)(nil)
