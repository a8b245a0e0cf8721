// internal/core/ports/scanner.go
package ports

import (
	"context"

	"webnmap/internal/core/domain"
	"webnmap/internal/platform/race"
)

// Contratos de los componentes que consume el orquestador.

// PortScanner clasifica una lista fija de puertos del host.
type PortScanner interface {
	ScanTarget(ctx context.Context, host string, extraPort int) []domain.PortRecord
}

// DNSEnumerator resuelve registros y enumera subdominios.
// Nunca devuelve error: la ausencia de datos es una lista vacía.
type DNSEnumerator interface {
	Resolve(ctx context.Context, name string, qtype uint16) []domain.DNSRecord
	ReversePTR(ctx context.Context, ip string) []domain.DNSRecord
	FindSubdomains(ctx context.Context, domain string) []string
}

// StructureMapper analiza robots.txt y sitemaps.
type StructureMapper interface {
	Analyze(ctx context.Context, domain string) domain.SiteStructure
}

// BruteForcer comprueba la existencia de rutas de una wordlist.
type BruteForcer interface {
	BruteForce(ctx context.Context, baseURL string, wordlist []string, onProgress ProgressFunc) []domain.BruteResult
}

// ExposureProber busca ficheros sensibles accesibles.
type ExposureProber interface {
	Probe(ctx context.Context, host string) []domain.Finding
}

// ToolRunner resuelve una herramienta de red mediante carrera de providers.
type ToolRunner interface {
	Run(ctx context.Context, tool domain.Tool, target string) race.Outcome
}
