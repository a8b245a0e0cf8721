// internal/core/domain/records.go
package domain

import "github.com/miekg/dns"

// PortRecord es la clasificación de un puerto escaneado.
type PortRecord struct {
	Port    int       `json:"port"`
	State   PortState `json:"state"`
	Service string    `json:"service"`
}

// DNSRecord es una respuesta de resolver sin interpretar.
// Las claves JSON siguen el formato de la API JSON de DoH.
type DNSRecord struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

// TypeName devuelve el mnemónico del tipo ("A", "PTR", ...).
func (r DNSRecord) TypeName() string {
	if name, ok := dns.TypeToString[r.Type]; ok {
		return name
	}
	return dns.Type(r.Type).String()
}

// Finding es un hallazgo de seguridad (fichero expuesto, versión vulnerable).
type Finding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// SiteStructure resume robots.txt y sitemaps.
type SiteStructure struct {
	Robots     RobotsStatus `json:"robots,omitempty"`
	Sitemaps   []string     `json:"sitemaps,omitempty"`
	Disallowed []string     `json:"disallowed,omitempty"`
}

// BruteLabelExisting es la etiqueta de estado de una ruta descubierta.
const BruteLabelExisting = "EXISTING (opaque)"

// BruteResult es una ruta descubierta por el brute forcer.
type BruteResult struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Found  bool   `json:"found"`
	Code   int    `json:"code,omitempty"`
}

// Registration es el resumen estructurado de un documento RDAP.
type Registration struct {
	Registrar   string   `json:"registrar,omitempty"`
	Handle      string   `json:"handle,omitempty"`
	Created     string   `json:"created,omitempty"`
	Updated     string   `json:"updated,omitempty"`
	Expires     string   `json:"expires,omitempty"`
	Status      []string `json:"status,omitempty"`
	Nameservers []string `json:"nameservers,omitempty"`
	DNSSEC      *bool    `json:"dnssec,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Fingerprint es la deducción de SO / servidor / CMS a partir de cabeceras.
type Fingerprint struct {
	OS         string `json:"os"`
	Server     string `json:"server"`
	CMS        string `json:"cms"`
	Confidence int    `json:"confidence"`
}

// StageError registra una etapa que falló y fue recuperada.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}
