package relayer

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
)

// DefaultBatchSize es el máximo de filas pendientes por ciclo de polling.
const DefaultBatchSize = 100

// Worker reentrega los eventos pendientes de la tabla outbox a través del bus.
// Debe ejecutarse una sola instancia activa: no hay lock distribuido, dos
// workers concurrentes pueden entregar la misma fila dos veces (at-least-once).
type Worker struct {
	repo      sharedDomain.OutboxRepository
	bus       *sharedBus.EventBus
	interval  time.Duration
	batchSize int
	clock     clockwork.Clock
	log       *zap.Logger
}

func NewWorker(
	repo sharedDomain.OutboxRepository,
	bus *sharedBus.EventBus,
	interval time.Duration,
	batchSize int,
	clock clockwork.Clock,
	log *zap.Logger,
) *Worker {
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		repo:      repo,
		bus:       bus,
		interval:  interval,
		batchSize: batchSize,
		clock:     clock,
		log:       log,
	}
}

// Start inicia el bucle de polling del worker hasta que el contexto se cancele.
func (w *Worker) Start(ctx context.Context) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Outbox worker iniciado", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Outbox worker detenido")
			return
		case <-ticker.Chan():
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch procesa un lote de filas pendientes en orden de creación.
// Cada fila se reentrega y se marca processed o failed de forma individual;
// el fallo de una fila no aborta el resto del lote.
func (w *Worker) ProcessBatch(ctx context.Context) {
	records, err := w.repo.FetchPending(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener filas pendientes del outbox", zap.Error(err))
		return
	}
	if len(records) > 0 {
		w.log.Info("📬 Filas pendientes encontradas", zap.Int("count", len(records)))
	}

	for _, rec := range records {
		w.redeliver(ctx, rec)
	}
}

func (w *Worker) redeliver(ctx context.Context, rec sharedDomain.OutboxRecord) {
	evt := rec.ToDomainEvent()

	// Dispatch y no Publish: la fila ya está persistida, volver a insertarla
	// la haría renacer en cada ciclo.
	if err := w.bus.Dispatch(ctx, evt); err != nil {
		if markErr := w.repo.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			w.log.Warn("⚠️ No se pudo marcar la fila como failed",
				zap.String("outbox_id", rec.ID.String()),
				zap.Error(markErr),
			)
		}
		return
	}

	if err := w.repo.MarkProcessed(ctx, rec.ID, w.clock.Now().UTC()); err != nil {
		w.log.Warn("⚠️ No se pudo marcar la fila como processed",
			zap.String("outbox_id", rec.ID.String()),
			zap.Error(err),
		)
		return
	}

	w.log.Debug("✅ Fila reentregada y marcada",
		zap.String("outbox_id", rec.ID.String()),
		zap.String("event_type", rec.EventType),
	)
}
