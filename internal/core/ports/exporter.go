// internal/core/ports/exporter.go
package ports

import (
	"io"

	"webnmap/internal/core/domain"
)

// Exporter es el port para exportar resultados en diferentes formatos.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "json", "table")
	Name() string

	// Export escribe el resultado en w
	Export(result *domain.ScanResult, w io.Writer) error
}
