// internal/platform/workerpool/worker_pool.go
package workerpool

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"webnmap/internal/platform/logx"
)

// DefaultBatchSize es el tamaño de lote usado por el brute forcer.
const DefaultBatchSize = 5

// Config configura el pool.
type Config struct {
	// BatchSize es el número de tareas por lote, y también el máximo en vuelo.
	BatchSize int
	Logger    logx.Logger
}

// Pool ejecuta tareas en lotes consecutivos de concurrencia acotada: un lote
// no empieza hasta que el anterior ha terminado por completo.
type Pool struct {
	batchSize int
	logger    logx.Logger

	batches atomic.Int64
	tasks   atomic.Int64
}

// Stats resume el trabajo realizado por el pool.
type Stats struct {
	Batches int64
	Tasks   int64
}

// New crea un nuevo pool.
func New(cfg Config) *Pool {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.NewDiscard()
	}
	return &Pool{
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger.With("component", "workerpool"),
	}
}

// BatchSize devuelve el tamaño de lote.
func (p *Pool) BatchSize() int {
	return p.batchSize
}

// Stats devuelve los contadores acumulados.
func (p *Pool) Stats() Stats {
	return Stats{Batches: p.batches.Load(), Tasks: p.tasks.Load()}
}

// Run aplica fn a cada item en lotes de p.BatchSize(). Los resultados
// conservan el orden de items. Tras cada lote se invoca onBatch(hechos, total)
// si no es nil. Si ctx se cancela, los lotes pendientes no se lanzan y sus
// posiciones quedan con el valor cero de O.
func Run[I, O any](ctx context.Context, p *Pool, items []I, fn func(ctx context.Context, item I) O, onBatch func(done, total int)) []O {
	out := make([]O, len(items))
	total := len(items)

	for start := 0; start < total; start += p.batchSize {
		if ctx.Err() != nil {
			p.logger.Debug("batch run interrupted", "done", start, "total", total)
			break
		}

		end := start + p.batchSize
		if end > total {
			end = total
		}

		began := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.batchSize)
		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i] = fn(gctx, items[i])
				return nil
			})
		}
		_ = g.Wait() // tasks report through their results, never as errors

		p.batches.Add(1)
		p.tasks.Add(int64(end - start))
		p.logger.Debug("batch completed",
			"from", start,
			"to", end,
			"duration_ms", time.Since(began).Milliseconds(),
		)

		if onBatch != nil {
			onBatch(end, total)
		}
	}

	return out
}
