// internal/core/ports/repository.go
package ports

import (
	"webnmap/internal/core/domain"
)

// ResultStore es el port para la caché de resultados por host.
// Toda mutación persiste el mapa completo antes de ser visible.
type ResultStore interface {
	// Get devuelve una copia de la entrada del host
	Get(host string) (domain.Record, bool)

	// Merge fusiona rec sobre la entrada existente (superficial) y persiste
	Merge(host string, rec domain.Record) (domain.Record, error)

	// Update hace read-modify-write atómico sobre la entrada del host
	Update(host string, fn func(current domain.Record) (domain.Record, error)) (domain.Record, error)

	// Snapshot devuelve una copia de todas las entradas
	Snapshot() map[string]domain.Record

	// Close libera el store; operaciones posteriores devuelven ErrStoreClosed
	Close() error
}
