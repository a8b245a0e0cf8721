// internal/core/ports/source.go
package ports

import (
	"context"
	"time"

	"webnmap/internal/core/domain"
)

// Source es el port para los providers externos de datos.
// Cada provider responde a un subconjunto de herramientas de red con texto
// ya renderizado; la carrera de providers solo ve ese texto.
type Source interface {
	// Name retorna el nombre único del provider (ej: "hackertarget", "rdap")
	Name() string

	// Tools retorna las herramientas que el provider sabe resolver
	Tools() []domain.Tool

	// Lookup ejecuta la herramienta contra target
	Lookup(ctx context.Context, tool domain.Tool, target string) (string, error)
}

// SourceConfig contiene la configuración específica de una fuente.
type SourceConfig struct {
	// Enabled indica si la fuente está habilitada
	Enabled bool

	// Timeout tiempo máximo por petición
	Timeout time.Duration

	// Retries número de reintentos en caso de fallo
	Retries int

	// RateLimit límite de peticiones por segundo (0 = sin límite)
	RateLimit float64

	// Priority prioridad de ejecución (mayor = más prioritario)
	Priority int

	// BaseURL sobrescribe el endpoint del provider (tests, mirrors)
	BaseURL string

	// Custom configuración específica de la fuente
	Custom map[string]interface{}
}

// DefaultSourceConfig retorna una configuración por defecto.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Enabled:   true,
		Timeout:   30 * time.Second,
		Retries:   1,
		RateLimit: 0,
		Priority:  5,
		Custom:    make(map[string]interface{}),
	}
}

// SourceMetadata contiene metadatos sobre una fuente.
type SourceMetadata struct {
	Name        string
	Description string
	Tools       []domain.Tool
	Priority    int     // prioridad por defecto
	RateLimit   float64 // límite recomendado de requests/segundo
	Endpoint    string  // endpoint por defecto
}

// Supports indica si el provider declara la herramienta.
func (m SourceMetadata) Supports(tool domain.Tool) bool {
	for _, t := range m.Tools {
		if t == tool {
			return true
		}
	}
	return false
}
