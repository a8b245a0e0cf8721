// internal/platform/registry/source_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/logx"
)

// SourceRegistry gestiona el registro y construcción de providers.
// Cada paquete de internal/sources se registra desde init().
type SourceRegistry struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
	metadata  map[string]ports.SourceMetadata
	logger    logx.Logger
}

// SourceFactory es una función que crea una instancia de Source.
type SourceFactory func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error)

var (
	globalRegistry *SourceRegistry
	once           sync.Once
)

// Global retorna la instancia global del registry.
func Global() *SourceRegistry {
	once.Do(func() {
		globalRegistry = NewSourceRegistry(logx.NewSilent())
	})
	return globalRegistry
}

// NewSourceRegistry crea un nuevo registry de sources.
func NewSourceRegistry(logger logx.Logger) *SourceRegistry {
	return &SourceRegistry{
		factories: make(map[string]SourceFactory),
		metadata:  make(map[string]ports.SourceMetadata),
		logger:    logger.With("component", "source-registry"),
	}
}

// Register registra una source factory con su metadata.
func (r *SourceRegistry) Register(name string, factory SourceFactory, meta ports.SourceMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for source %s", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("source %s is already registered", name)
	}
	if meta.Name == "" {
		meta.Name = name
	}

	r.factories[name] = factory
	r.metadata[name] = meta
	r.logger.Debug("source registered", "name", name, "tools", len(meta.Tools))
	return nil
}

// MustRegister es Register para init(): un registro inválido es un bug.
func (r *SourceRegistry) MustRegister(name string, factory SourceFactory, meta ports.SourceMetadata) {
	if err := r.Register(name, factory, meta); err != nil {
		panic(err)
	}
}

// DefaultConfigs devuelve una configuración habilitada por cada source
// registrada, con la prioridad y el rate limit de su metadata.
func (r *SourceRegistry) DefaultConfigs() map[string]ports.SourceConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ports.SourceConfig, len(r.metadata))
	for name, meta := range r.metadata {
		cfg := ports.DefaultSourceConfig()
		if meta.Priority > 0 {
			cfg.Priority = meta.Priority
		}
		cfg.RateLimit = meta.RateLimit
		out[name] = cfg
	}
	return out
}

// Build construye todas las sources habilitadas, de mayor a menor prioridad.
// A igual prioridad se ordena por nombre para que el orden sea estable.
func (r *SourceRegistry) Build(configs map[string]ports.SourceConfig, logger logx.Logger) ([]ports.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if configs == nil {
		return nil, fmt.Errorf("configs cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	type prioritizedSource struct {
		name   string
		config ports.SourceConfig
	}

	prioritized := make([]prioritizedSource, 0, len(configs))
	var errs []error
	for name, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if _, exists := r.factories[name]; !exists {
			errs = append(errs, fmt.Errorf("source %s not registered in registry", name))
			continue
		}
		if cfg.Priority < 0 {
			r.logger.Warn("invalid priority, using default", "source", name, "priority", cfg.Priority)
			cfg.Priority = 5
		}
		prioritized = append(prioritized, prioritizedSource{name: name, config: cfg})
	}

	sort.Slice(prioritized, func(i, j int) bool {
		if prioritized[i].config.Priority != prioritized[j].config.Priority {
			return prioritized[i].config.Priority > prioritized[j].config.Priority
		}
		return prioritized[i].name < prioritized[j].name
	})

	sources := make([]ports.Source, 0, len(prioritized))
	for _, ps := range prioritized {
		source, err := r.factories[ps.name](ps.config, logger)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to build source %s: %w", ps.name, err))
			continue
		}
		sources = append(sources, source)
		r.logger.Debug("source built", "name", ps.name, "priority", ps.config.Priority)
	}

	for _, err := range errs {
		r.logger.Warn("source build error", "error", err.Error())
	}

	if len(sources) == 0 && len(prioritized) > 0 {
		return nil, fmt.Errorf("no sources could be built")
	}

	logger.Debug("sources built", "count", len(sources), "requested", len(configs))
	return sources, nil
}

// ForTool devuelve los nombres registrados que declaran la herramienta.
func (r *SourceRegistry) ForTool(tool domain.Tool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0)
	for name, meta := range r.metadata {
		if meta.Supports(tool) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// List retorna los nombres de todas las sources registradas.
func (r *SourceRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata retorna el metadata de una source.
func (r *SourceRegistry) GetMetadata(name string) (ports.SourceMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[name]
	return meta, exists
}

// GetAllMetadata retorna una copia del metadata de todas las sources.
func (r *SourceRegistry) GetAllMetadata() map[string]ports.SourceMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]ports.SourceMetadata, len(r.metadata))
	for name, meta := range r.metadata {
		result[name] = meta
	}
	return result
}

// IsRegistered verifica si una source está registrada.
func (r *SourceRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Clear elimina todas las sources registradas (útil para testing).
func (r *SourceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]SourceFactory)
	r.metadata = make(map[string]ports.SourceMetadata)
}
