// internal/core/domain/enums.go
package domain

import "strings"

// TargetKind discrimina entre objetivos IP y hostname.
type TargetKind int

const (
	// TargetKindHostname es un nombre DNS: se enumeran registros y subdominios
	TargetKindHostname TargetKind = iota

	// TargetKindIP es una IPv4: solo se resuelve el PTR
	TargetKindIP
)

// String retorna la representación string del tipo.
func (k TargetKind) String() string {
	if k == TargetKindIP {
		return "ip"
	}
	return "hostname"
}

// PortState es la clasificación de un puerto por la heurística de conexión.
type PortState string

const (
	PortOpen     PortState = "OPEN"
	PortClosed   PortState = "CLOSED"
	PortFiltered PortState = "FILTERED"
	PortBlocked  PortState = "BLOCKED"
)

// RobotsStatus distingue un robots.txt encontrado, ausente o inalcanzable.
type RobotsStatus string

const (
	RobotsFound    RobotsStatus = "Found"
	RobotsNotFound RobotsStatus = "Not Found"
	RobotsError    RobotsStatus = "Error"
)

// Severity de un hallazgo.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Tool identifica una herramienta de red resuelta mediante carrera de providers.
type Tool string

const (
	ToolDNS         Tool = "dns"
	ToolReverseDNS  Tool = "reverse_dns"
	ToolWhois       Tool = "whois"
	ToolGeoIP       Tool = "geoip"
	ToolASN         Tool = "asn"
	ToolHTTPHeaders Tool = "http_headers"
	ToolTraceroute  Tool = "traceroute"
	ToolPing        Tool = "ping"
	ToolNmap        Tool = "nmap"
	ToolPageLinks   Tool = "page_links"
	ToolReverseIP   Tool = "reverse_ip"
	ToolSubnet      Tool = "subnet"
)

// AllTools lista las herramientas en orden de presentación.
var AllTools = []Tool{
	ToolDNS, ToolReverseDNS, ToolWhois, ToolGeoIP, ToolASN, ToolHTTPHeaders,
	ToolTraceroute, ToolPing, ToolNmap, ToolPageLinks, ToolReverseIP, ToolSubnet,
}

// ParseTool acepta el nombre de una herramienta, con guiones o guiones bajos.
func ParseTool(s string) (Tool, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, t := range AllTools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrUnknownTool
}

// String retorna la representación string de la herramienta.
func (t Tool) String() string {
	return string(t)
}
