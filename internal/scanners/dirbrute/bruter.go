// Package dirbrute checks wordlist paths against a base URL in consecutive
// batches of bounded concurrency.
package dirbrute

import (
	"context"
	"net/http"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/metrics"
	"webnmap/internal/platform/workerpool"
)

const (
	// DefaultProbeTimeout por petición HEAD.
	DefaultProbeTimeout = 3 * time.Second

	statusFound = "FOUND"
)

// Config configura el brute forcer.
type Config struct {
	ProbeTimeout time.Duration
	BatchSize    int
}

// Bruter implements ports.BruteForcer
type Bruter struct {
	client  *httpclient.Client
	pool    *workerpool.Pool
	timeout time.Duration
	logger  logx.Logger
	metrics *metrics.Recorder
}

var _ ports.BruteForcer = (*Bruter)(nil)

// New crea el brute forcer.
func New(cfg Config, logger logx.Logger, rec *metrics.Recorder) *Bruter {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = logx.NewDiscard()
	}
	logger = logger.With("component", "dirbrute")
	return &Bruter{
		client:  httpclient.New(httpclient.ProbeConfig(cfg.ProbeTimeout), logger),
		pool:    workerpool.New(workerpool.Config{BatchSize: cfg.BatchSize, Logger: logger}),
		timeout: cfg.ProbeTimeout,
		logger:  logger,
		metrics: rec,
	}
}

// BruteForce devuelve solo las rutas encontradas, en el orden de la wordlist.
// Tras cada lote emite {current, total}; por cada hallazgo, {path, FOUND}.
func (b *Bruter) BruteForce(ctx context.Context, baseURL string, wordlist []string, onProgress ports.ProgressFunc) []domain.BruteResult {
	base := strings.TrimSuffix(baseURL, "/")
	notify := b.safeNotify(onProgress)

	probes := workerpool.Run(ctx, b.pool, wordlist, func(ctx context.Context, entry string) *domain.BruteResult {
		url := base + "/" + strings.TrimPrefix(entry, "/")
		res := b.probe(ctx, url)
		b.metrics.BruteProbe(res != nil)
		if res != nil {
			notify(ports.ProgressEvent{Type: ports.EventTypeDirBrute, Path: url, Status: statusFound})
		}
		return res
	}, func(done, total int) {
		notify(ports.ProgressEvent{Type: ports.EventTypeDirBrute, Current: done, Total: total})
	})

	found := make([]domain.BruteResult, 0)
	for _, res := range probes {
		if res != nil {
			found = append(found, *res)
		}
	}
	b.logger.Debug("brute force finished", "base", base, "checked", len(wordlist), "found", len(found))
	return found
}

// probe hace HEAD. Cualquier fallo (timeout, red) es "no encontrado"; una
// respuesta 404/410 también, y las de saturación (429, 502, 503, 504) no
// dicen nada de la ruta, así que tampoco cuentan.
func (b *Bruter) probe(ctx context.Context, url string) *domain.BruteResult {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.Head(ctx, url)
	if err != nil {
		return nil
	}
	if !existing(resp.StatusCode) {
		return nil
	}
	return &domain.BruteResult{
		Path:   url,
		Status: domain.BruteLabelExisting,
		Found:  true,
		Code:   resp.StatusCode,
	}
}

func existing(code int) bool {
	switch code {
	case http.StatusNotFound, http.StatusGone,
		http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return false
	default:
		return true
	}
}

// safeNotify envuelve el callback: un pánico se registra y se ignora.
func (b *Bruter) safeNotify(fn ports.ProgressFunc) ports.ProgressFunc {
	if fn == nil {
		return func(ports.ProgressEvent) {}
	}
	return func(ev ports.ProgressEvent) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Warn("progress callback panicked", "panic", r)
			}
		}()
		fn(ev)
	}
}
