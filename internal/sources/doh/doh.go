// Package doh implements the DNS-over-HTTPS providers: Google's JSON API and
// Cloudflare's RFC 8484 wire format endpoint. Both serve the dns and
// reverse_dns tools and also act as resolvers for the DNS enumerator.
package doh

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"webnmap/internal/core/domain"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/validator"
)

var tools = []domain.Tool{domain.ToolDNS, domain.ToolReverseDNS}

// resolveFunc es la operación que cada operador implementa.
type resolveFunc func(ctx context.Context, name string, qtype uint16) ([]domain.DNSRecord, error)

// dnsReport resuelve cada tipo y lo renderiza como "name\tTYPE\tdata".
// La etiqueta es el tipo consultado, no el de la respuesta (un CNAME
// devuelto a una consulta A se lista como A).
func dnsReport(ctx context.Context, resolve resolveFunc, target string, types []string) (string, error) {
	var sb strings.Builder
	for _, label := range types {
		qtype, ok := dns.StringToType[strings.ToUpper(label)]
		if !ok {
			continue
		}
		records, err := resolve(ctx, target, qtype)
		if err != nil {
			return "", err
		}
		for _, rec := range records {
			fmt.Fprintf(&sb, "%s\t%s\t%s\n", rec.Name, strings.ToUpper(label), rec.Data)
		}
	}
	if sb.Len() == 0 {
		return "", errors.Wrap(errors.ErrNotFound, "No DNS records found")
	}
	return sb.String(), nil
}

// ptrReport resuelve el PTR de una IPv4 y lo renderiza como "ip\t→\tname".
func ptrReport(ctx context.Context, resolve resolveFunc, target string) (string, error) {
	name, ok := validator.ReverseIPv4Name(target)
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidInput, "reverse dns needs an IPv4 address, got %q", target)
	}
	records, err := resolve(ctx, name, dns.TypePTR)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.Wrap(errors.ErrNotFound, "No PTR records found")
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%s\t→\t%s", target, rec.Data))
	}
	return strings.Join(lines, "\n"), nil
}

// rrData devuelve la parte de datos de un RR en formato de presentación.
func rrData(rr dns.RR) string {
	return strings.TrimPrefix(rr.String(), rr.Header().String())
}

// fromRR convierte una respuesta wire al registro de dominio.
func fromRR(rr dns.RR) domain.DNSRecord {
	h := rr.Header()
	return domain.DNSRecord{
		Name: h.Name,
		Type: h.Rrtype,
		TTL:  h.Ttl,
		Data: rrData(rr),
	}
}

// rcodeErr clasifica el código de respuesta. NXDOMAIN no es un error:
// el nombre no existe y la respuesta es una lista vacía.
func rcodeErr(rcode int) (bool, error) {
	switch rcode {
	case dns.RcodeSuccess:
		return true, nil
	case dns.RcodeNameError:
		return false, nil
	default:
		return false, errors.Wrapf(errors.ErrInvalidResponse, "dns rcode %s", dns.RcodeToString[rcode])
	}
}
