// internal/platform/validator/validator.go
package validator

import (
	"net"
	"regexp"
	"strconv"
	"strings"
)

var (
	domainRegex     = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)
	dottedQuadRegex = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// Domain validators

// IsDomain verifica si un string es un nombre de host válido (no una IP).
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	if !domainRegex.MatchString(domain) {
		return false
	}
	return net.ParseIP(domain) == nil
}

// InDomain indica si name es domain o cuelga de él ("."+domain).
// El sufijo se compara por etiquetas: "evilexample.com" no pertenece a "example.com".
func InDomain(name, domain string) bool {
	name = NormalizeHost(name)
	domain = NormalizeHost(domain)
	if name == "" || domain == "" {
		return false
	}
	return name == domain || strings.HasSuffix(name, "."+domain)
}

// NormalizeHost pasa a minúsculas, recorta espacios y el punto final.
// A diferencia de una normalización de dominio, conserva "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimSuffix(host, ".")
}

// IP validators

// IsDottedQuad reproduce la comprobación usada para clasificar objetivos:
// cuatro grupos de 1 a 3 dígitos. No valida rangos (999.1.1.1 pasa).
func IsDottedQuad(s string) bool {
	return dottedQuadRegex.MatchString(s)
}

// IsIPv4 verifica si un string es una IPv4 válida.
func IsIPv4(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() != nil && strings.Count(ip, ".") == 3
}

// IsIPv6 verifica si un string es una IPv6 válida.
func IsIPv6(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() == nil
}

// ReverseIPv4Name construye el nombre in-addr.arpa de una IPv4 con puntos.
// Devuelve ok=false si ip no es un dotted-quad.
func ReverseIPv4Name(ip string) (string, bool) {
	ip = strings.TrimSpace(ip)
	if !IsDottedQuad(ip) {
		return "", false
	}
	octets := strings.Split(ip, ".")
	for i, j := 0, len(octets)-1; i < j; i, j = i+1, j-1 {
		octets[i], octets[j] = octets[j], octets[i]
	}
	return strings.Join(octets, ".") + ".in-addr.arpa", true
}

// Port validators

// ParsePort convierte un puerto textual validando el rango [1-65535].
func ParsePort(portStr string) (int, bool) {
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}

// IsPort valida que un puerto esté en el rango válido [1-65535].
func IsPort(portStr string) bool {
	_, ok := ParsePort(portStr)
	return ok
}
