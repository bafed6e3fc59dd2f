package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_PullDrainsBuffer(t *testing.T) {
	var r Recorder
	r.Record("user.created", "agg-1", map[string]interface{}{"email": "maria@example.com"})
	r.Record("user.suspended", "agg-1", nil)

	events := r.PullDomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, "user.created", events[0].Type)
	assert.Equal(t, "user.suspended", events[1].Type)
	assert.WithinDuration(t, time.Now().UTC(), events[0].OccurredAt, time.Second)

	// Un segundo drenado sin mutaciones intermedias devuelve vacío
	assert.Empty(t, r.PullDomainEvents())

	r.Record("user.reactivated", "agg-1", nil)
	assert.Len(t, r.PullDomainEvents(), 1)
}
