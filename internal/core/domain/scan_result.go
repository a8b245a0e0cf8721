// internal/core/domain/scan_result.go
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScanResult es el agregado producido por un escaneo activo.
type ScanResult struct {
	ScanID     string `json:"scan_id"`
	Domain     string `json:"domain"`
	FullTarget string `json:"full_target"`
	TargetPort *int   `json:"target_port"`

	Ports   []PortRecord `json:"ports"`
	NmapRaw string       `json:"nmap_raw"`

	// rama hostname
	RecA    []DNSRecord `json:"rec_a"`
	RecAAAA []DNSRecord `json:"rec_aaaa"`
	RecMX   []DNSRecord `json:"rec_mx"`
	RecNS   []DNSRecord `json:"rec_ns"`
	RecTXT  []DNSRecord `json:"rec_txt"`

	// rama IP
	RecPTR []DNSRecord `json:"rec_ptr"`

	Subdomains []string  `json:"subdomains"`
	Vulns      []Finding `json:"vulns"`

	WhoisRaw       string       `json:"whois_raw"`
	Whois          Registration `json:"whois"`
	GeoIPRaw       string       `json:"geoip_raw"`
	TracerouteRaw  string       `json:"traceroute_raw"`
	HTTPHeadersRaw string       `json:"http_headers_raw"`

	Structure SiteStructure `json:"structure"`
	DirBrute  []BruteResult `json:"dir_brute"`

	Errors    []StageError `json:"errors"`
	Timestamp int64        `json:"timestamp"` // Unix ms

	kind TargetKind
}

// Claves exclusivas de cada rama del escaneo.
var (
	hostnameOnlyKeys = []string{"rec_a", "rec_aaaa", "rec_mx", "rec_ns", "rec_txt"}
	ipOnlyKeys       = []string{"rec_ptr"}
)

// NewScanResult crea un resultado vacío para target.
func NewScanResult(id string, target Target, now time.Time) *ScanResult {
	return &ScanResult{
		ScanID:     id,
		Domain:     target.Host,
		FullTarget: target.Raw,
		TargetPort: target.Port,
		Ports:      []PortRecord{},
		RecA:       []DNSRecord{},
		RecAAAA:    []DNSRecord{},
		RecMX:      []DNSRecord{},
		RecNS:      []DNSRecord{},
		RecTXT:     []DNSRecord{},
		RecPTR:     []DNSRecord{},
		Subdomains: []string{},
		Vulns:      []Finding{},
		DirBrute:   []BruteResult{},
		Errors:     []StageError{},
		Timestamp:  now.UnixMilli(),
		kind:       target.Kind,
	}
}

// Kind devuelve la rama con la que se creó el resultado.
func (r *ScanResult) Kind() TargetKind {
	return r.kind
}

// AddError añade un error de etapa al resultado.
func (r *ScanResult) AddError(stage, message string) {
	r.Errors = append(r.Errors, StageError{Stage: stage, Message: message})
}

// HasErrors indica si alguna etapa falló.
func (r *ScanResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// OpenPorts devuelve los puertos clasificados como OPEN.
func (r *ScanResult) OpenPorts() []int {
	open := make([]int, 0)
	for _, p := range r.Ports {
		if p.State == PortOpen {
			open = append(open, p.Port)
		}
	}
	return open
}

// Record convierte el resultado en la entrada de caché que se fusiona.
// Las claves de la rama que no se ejecutó no aparecen, de modo que nunca
// pisan datos anteriores; todo lo demás sí, incluidos valores vacíos.
func (r *ScanResult) Record() (Record, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	skip := ipOnlyKeys
	if r.kind == TargetKindIP {
		skip = hostnameOnlyKeys
	}
	for _, k := range skip {
		delete(rec, k)
	}
	return rec, nil
}

// Summary retorna un resumen legible del resultado.
func (r *ScanResult) Summary() string {
	return fmt.Sprintf(
		"ScanResult{domain=%s, open_ports=%d, subdomains=%d, vulns=%d, errors=%d}",
		r.Domain,
		len(r.OpenPorts()),
		len(r.Subdomains),
		len(r.Vulns),
		len(r.Errors),
	)
}
