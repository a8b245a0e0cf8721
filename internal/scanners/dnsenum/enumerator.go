// Package dnsenum resolves DNS records through DoH with a single fallback
// resolver and enumerates subdomains from certificate transparency logs.
// Absence of data is never an error here: failures degrade to empty lists.
package dnsenum

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/cache"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/validator"
)

// Enumerator implements ports.DNSEnumerator
type Enumerator struct {
	primary  ports.DNSResolver
	fallback ports.DNSResolver
	ct       ports.CTSearcher
	answers  *cache.MemoryCache[[]domain.DNSRecord]
	logger   logx.Logger
}

var _ ports.DNSEnumerator = (*Enumerator)(nil)

// New crea el enumerador. fallback y ct pueden ser nil; answers nil
// desactiva la memoización.
func New(primary, fallback ports.DNSResolver, ct ports.CTSearcher, answers *cache.MemoryCache[[]domain.DNSRecord], logger logx.Logger) *Enumerator {
	if logger == nil {
		logger = logx.NewDiscard()
	}
	return &Enumerator{
		primary:  primary,
		fallback: fallback,
		ct:       ct,
		answers:  answers,
		logger:   logger.With("component", "dnsenum"),
	}
}

// Resolve consulta el resolver primario y, ante cualquier fallo, exactamente
// un resolver alternativo. Si ambos fallan devuelve una lista vacía.
func (e *Enumerator) Resolve(ctx context.Context, name string, qtype uint16) []domain.DNSRecord {
	key := fmt.Sprintf("%s|%d", strings.ToLower(name), qtype)
	if e.answers != nil {
		if cached, ok := e.answers.Get(key); ok {
			return cached
		}
	}

	records, err := e.resolveWith(ctx, e.primary, name, qtype)
	if err != nil && e.fallback != nil {
		e.logger.Debug("primary resolver failed, using fallback",
			"name", name, "type", dns.TypeToString[qtype], "error", err.Error())
		records, err = e.resolveWith(ctx, e.fallback, name, qtype)
	}
	if err != nil {
		e.logger.Debug("dns resolution failed", "name", name, "type", dns.TypeToString[qtype], "error", err.Error())
		return []domain.DNSRecord{}
	}

	records = dedupe(records)
	if ttl := minTTL(records); e.answers != nil && ttl > 0 {
		e.answers.Set(key, records, ttl)
	}
	return records
}

func (e *Enumerator) resolveWith(ctx context.Context, r ports.DNSResolver, name string, qtype uint16) ([]domain.DNSRecord, error) {
	if r == nil {
		return nil, fmt.Errorf("no resolver configured")
	}
	return r.Resolve(ctx, name, qtype)
}

// ReversePTR resuelve el PTR de una IPv4. Entradas que no son IP devuelven vacío.
func (e *Enumerator) ReversePTR(ctx context.Context, ip string) []domain.DNSRecord {
	name, ok := validator.ReverseIPv4Name(ip)
	if !ok {
		e.logger.Debug("reverse lookup skipped, not an IPv4", "input", ip)
		return []domain.DNSRecord{}
	}
	return e.Resolve(ctx, name, dns.TypePTR)
}

// FindSubdomains busca domain en CT y devuelve los subdominios únicos y
// ordenados. Descarta comodines y nombres fuera del dominio. Un fallo de la
// consulta se registra y devuelve una lista vacía.
func (e *Enumerator) FindSubdomains(ctx context.Context, target string) []string {
	if e.ct == nil {
		return []string{}
	}
	target = validator.NormalizeHost(target)

	names, err := e.ct.Search(ctx, target)
	if err != nil {
		e.logger.Warn("certificate transparency search failed", "domain", target, "error", err.Error())
		return []string{}
	}

	set := make(map[string]struct{})
	for _, raw := range names {
		for _, name := range strings.Split(raw, "\n") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || strings.Contains(name, "*") {
				continue
			}
			if !validator.InDomain(name, target) {
				continue
			}
			set[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func dedupe(records []domain.DNSRecord) []domain.DNSRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.DNSRecord, 0, len(records))
	for _, r := range records {
		key := fmt.Sprintf("%s|%d|%s", strings.ToLower(r.Name), r.Type, r.Data)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func minTTL(records []domain.DNSRecord) time.Duration {
	if len(records) == 0 {
		return 0
	}
	lowest := records[0].TTL
	for _, r := range records[1:] {
		lowest = min(lowest, r.TTL)
	}
	return time.Duration(lowest) * time.Second
}
