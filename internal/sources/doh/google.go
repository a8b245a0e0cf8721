package doh

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/miekg/dns"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/sources/common"
)

const (
	googleName = "google-doh"
	googleURL  = "https://dns.google"
)

var googleTypes = []string{"A", "AAAA", "MX", "NS", "TXT", "CNAME", "SOA"}

func init() {
	registry.Global().MustRegister(googleName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return NewGoogle(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "Google Public DNS JSON API (dns.google/resolve)",
			Tools:       tools,
			Priority:    8,
			Endpoint:    googleURL,
		},
	)
}

// Google resuelve vía la API JSON de dns.google.
type Google struct {
	common.BaseHTTPSource
	types []string
}

// googleResponse es la respuesta de /resolve.
type googleResponse struct {
	Status int                `json:"Status"`
	Answer []domain.DNSRecord `json:"Answer"`
}

// NewGoogle crea el provider. cfg.Custom["record_types"] reemplaza los tipos
// que consulta la herramienta dns.
func NewGoogle(cfg ports.SourceConfig, logger logx.Logger) *Google {
	return &Google{
		BaseHTTPSource: common.NewBaseHTTPSource(googleName, tools, googleURL, cfg, logger),
		types:          registry.GetSliceConfig(cfg.Custom, "record_types", googleTypes),
	}
}

// Resolve implements ports.DNSResolver
func (g *Google) Resolve(ctx context.Context, name string, qtype uint16) ([]domain.DNSRecord, error) {
	query := url.Values{
		"name": {name},
		"type": {strconv.Itoa(int(qtype))},
	}

	var resp googleResponse
	if err := g.Client.DecodeJSON(ctx, g.Endpoint("resolve")+"?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	ok, err := rcodeErr(resp.Status)
	if err != nil || !ok {
		return []domain.DNSRecord{}, err
	}
	if resp.Answer == nil {
		return []domain.DNSRecord{}, nil
	}
	g.Logger.Debug("resolved", "name", name, "type", dns.TypeToString[qtype], "answers", len(resp.Answer))
	return resp.Answer, nil
}

// Lookup implements ports.Source
func (g *Google) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	defer g.Elapsed(tool, target, time.Now())
	switch tool {
	case domain.ToolDNS:
		return dnsReport(ctx, g.Resolve, target, g.types)
	case domain.ToolReverseDNS:
		return ptrReport(ctx, g.Resolve, target)
	default:
		return "", g.Unsupported(tool)
	}
}
