// Package portscan classifies ports with HTTP(S) connection attempts. It is a
// heuristic that needs no raw sockets: fast refusals read as CLOSED, silence
// as FILTERED, any response as OPEN.
package portscan

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/metrics"
)

const (
	// DefaultAttemptTimeout es el presupuesto de cada intento por protocolo.
	DefaultAttemptTimeout = 2 * time.Second

	// DefaultClosedThreshold separa un rechazo activo de un fallo ambiguo.
	DefaultClosedThreshold = 500 * time.Millisecond
)

// Config configura el scanner.
type Config struct {
	AttemptTimeout  time.Duration
	ClosedThreshold time.Duration
}

// Scanner implements ports.PortScanner
type Scanner struct {
	prober          Prober
	attemptTimeout  time.Duration
	closedThreshold time.Duration
	logger          logx.Logger
	metrics         *metrics.Recorder
}

var _ ports.PortScanner = (*Scanner)(nil)

// New crea el scanner. prober nil usa HTTPProber.
func New(cfg Config, prober Prober, logger logx.Logger, rec *metrics.Recorder) *Scanner {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.ClosedThreshold <= 0 {
		cfg.ClosedThreshold = DefaultClosedThreshold
	}
	if logger == nil {
		logger = logx.NewDiscard()
	}
	logger = logger.With("component", "portscan")
	if prober == nil {
		prober = NewHTTPProber(cfg.AttemptTimeout, logger)
	}
	return &Scanner{
		prober:          prober,
		attemptTimeout:  cfg.AttemptTimeout,
		closedThreshold: cfg.ClosedThreshold,
		logger:          logger,
		metrics:         rec,
	}
}

// ScanPort clasifica un puerto.
func (s *Scanner) ScanPort(ctx context.Context, host string, port int) domain.PortState {
	if IsUnsafe(port) {
		return domain.PortBlocked
	}

	protos := protocols(port)
	for i, proto := range protos {
		last := i == len(protos)-1
		url := fmt.Sprintf("%s://%s:%d/?nocache=%d", proto, host, port, rand.Int64())

		start := time.Now()
		err := s.attempt(ctx, url)
		elapsed := time.Since(start)

		switch {
		case err == nil:
			return domain.PortOpen
		case errors.IsTimeout(err) || errors.IsCanceled(err):
			return domain.PortFiltered
		case !last:
			s.logger.Debug("connection failed, trying next protocol", "port", port, "proto", proto, "error", err.Error())
			continue
		case elapsed < s.closedThreshold:
			return domain.PortClosed
		default:
			return domain.PortFiltered
		}
	}
	return domain.PortFiltered
}

func (s *Scanner) attempt(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	return s.prober.Probe(ctx, url)
}

// ScanTarget escanea CommonPorts, más extraPort si es > 0 y no está en la
// lista. Secuencial para no saturar al objetivo.
func (s *Scanner) ScanTarget(ctx context.Context, host string, extraPort int) []domain.PortRecord {
	list := append([]int(nil), CommonPorts...)
	if extraPort > 0 && !contains(list, extraPort) {
		list = append(list, extraPort)
	}

	out := make([]domain.PortRecord, 0, len(list))
	for _, port := range list {
		if ctx.Err() != nil {
			s.logger.Debug("port scan interrupted", "host", host, "done", len(out))
			break
		}
		state := s.ScanPort(ctx, host, port)
		s.metrics.PortState(string(state))
		out = append(out, domain.PortRecord{Port: port, State: state, Service: ServiceName(port)})
	}

	s.logger.Debug("port scan finished", "host", host, "ports", len(out))
	return out
}

func contains(list []int, v int) bool {
	for _, p := range list {
		if p == v {
			return true
		}
	}
	return false
}
