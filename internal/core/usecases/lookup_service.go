// internal/core/usecases/lookup_service.go
package usecases

import (
	"context"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/metrics"
	"webnmap/internal/platform/race"
	"webnmap/internal/platform/resilience"
)

// LookupService resuelve una herramienta de red compitiendo entre todas las
// sources que la declaran. Cada source pasa por su propio circuit breaker.
type LookupService struct {
	sources  []ports.Source
	breakers *resilience.Group
	timeout  time.Duration
	metrics  *metrics.Recorder
	logger   logx.Logger
}

var _ ports.ToolRunner = (*LookupService)(nil)

// LookupOptions configura el LookupService.
type LookupOptions struct {
	// Timeout global de cada carrera (0 = race.DefaultTimeout)
	Timeout time.Duration

	// Breaker configuración compartida por los breakers de cada source
	Breaker resilience.Settings

	// DisableBreakers llama a las sources sin circuit breaker
	DisableBreakers bool

	Metrics *metrics.Recorder
	Logger  logx.Logger
}

// NewLookupService crea el servicio. sources debe venir ya ordenado por
// prioridad (registry.Build lo hace).
func NewLookupService(sources []ports.Source, opts LookupOptions) *LookupService {
	if opts.Logger == nil {
		opts.Logger = logx.NewDiscard()
	}
	if opts.Breaker.FailureThreshold <= 0 {
		opts.Breaker = resilience.DefaultSettings()
	}
	svc := &LookupService{
		sources: sources,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		logger:  opts.Logger.With("component", "lookup"),
	}
	if !opts.DisableBreakers {
		svc.breakers = resilience.NewGroup(opts.Breaker)
	}
	return svc
}

// SourcesFor devuelve los nombres de las sources que compiten por tool.
func (s *LookupService) SourcesFor(tool domain.Tool) []string {
	names := make([]string, 0)
	for _, src := range s.sources {
		if supports(src, tool) {
			names = append(names, src.Name())
		}
	}
	return names
}

// Run implements ports.ToolRunner
func (s *LookupService) Run(ctx context.Context, tool domain.Tool, target string) race.Outcome {
	providers := make([]race.Provider, 0, len(s.sources))
	for _, src := range s.sources {
		if supports(src, tool) {
			providers = append(providers, s.provider(src, tool, target))
		}
	}

	start := time.Now()
	outcome := race.Run(ctx, providers, s.timeout)
	s.record(tool, outcome)

	s.logger.Debug("lookup finished",
		"tool", tool.String(),
		"target", target,
		"providers", len(providers),
		"winner", outcome.Winner,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome
}

// provider adapta una source a race.Provider detrás de su breaker.
// Una llamada cancelada porque otra source ganó no cuenta como fallo.
func (s *LookupService) provider(src ports.Source, tool domain.Tool, target string) race.Provider {
	if s.breakers == nil {
		return race.Func(src.Name(), func(ctx context.Context) (string, error) {
			payload, err := src.Lookup(ctx, tool, target)
			if err == nil && race.IsErrorPayload(payload) {
				err = payloadError(payload)
			}
			if err != nil {
				return "", err
			}
			return payload, nil
		})
	}

	cb := s.breakers.Get(src.Name())
	return race.Func(src.Name(), func(ctx context.Context) (string, error) {
		if !cb.Allow() {
			return "", resilience.ErrCircuitOpen
		}

		payload, err := src.Lookup(ctx, tool, target)
		if err == nil && race.IsErrorPayload(payload) {
			err = payloadError(payload)
		}

		switch {
		case err == nil:
			cb.RecordSuccess()
			return payload, nil
		case ctx.Err() != nil && (errors.IsCanceled(err) || errors.IsTimeout(err)):
			cb.Release()
		default:
			cb.RecordFailure()
			s.logger.Debug("source failed", "source", src.Name(), "tool", tool.String(), "error", err.Error())
		}
		return "", err
	})
}

func (s *LookupService) record(tool domain.Tool, o race.Outcome) {
	switch {
	case o.Succeeded():
		s.metrics.RaceOutcome(tool.String(), "winner", o.Winner)
	case o.TimedOut:
		s.metrics.RaceOutcome(tool.String(), "timed_out", "")
	default:
		s.metrics.RaceOutcome(tool.String(), "all_failed", "")
	}
}

// BreakerStates expone el estado de los breakers (modo verbose del CLI).
func (s *LookupService) BreakerStates() map[string]string {
	out := make(map[string]string)
	if s.breakers == nil {
		return out
	}
	for name, st := range s.breakers.States() {
		out[name] = st.String()
	}
	return out
}

// payloadError convierte un payload centinela ("Error: ...", vacío) en error.
func payloadError(payload string) error {
	if strings.TrimSpace(payload) == "" {
		return errors.Wrap(errors.ErrInvalidResponse, "empty response")
	}
	return errors.New(strings.TrimSpace(payload))
}

func supports(src ports.Source, tool domain.Tool) bool {
	for _, t := range src.Tools() {
		if t == tool {
			return true
		}
	}
	return false
}
