// internal/core/ports/resolver.go
package ports

import (
	"context"

	"webnmap/internal/core/domain"
)

// DNSResolver resuelve un nombre y tipo contra un resolver DoH.
// Un error indica fallo de transporte o respuesta malformada; una respuesta
// sin registros es una lista vacía.
type DNSResolver interface {
	Name() string
	Resolve(ctx context.Context, name string, qtype uint16) ([]domain.DNSRecord, error)
}

// CTSearcher consulta un log de Certificate Transparency y devuelve los
// nombres tal como vienen en los certificados (pueden contener "\n").
type CTSearcher interface {
	Search(ctx context.Context, domain string) ([]string, error)
}

// RegistrationLookup obtiene el resumen RDAP estructurado de un dominio.
type RegistrationLookup interface {
	Registration(ctx context.Context, domain string) (domain.Registration, error)
}
