// Package hackertarget implements the HackerTarget API provider. It is the
// only provider that covers all twelve network tools.
package hackertarget

import (
	"context"
	"net/url"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/sources/common"
)

const (
	sourceName = "hackertarget"
	defaultURL = "https://api.hackertarget.com"
)

// endpoints mapea cada herramienta a su endpoint de la API.
var endpoints = map[domain.Tool]string{
	domain.ToolDNS:         "dnslookup",
	domain.ToolReverseDNS:  "reversedns",
	domain.ToolWhois:       "whois",
	domain.ToolGeoIP:       "geoip",
	domain.ToolASN:         "aslookup",
	domain.ToolHTTPHeaders: "httpheaders",
	domain.ToolTraceroute:  "mtr",
	domain.ToolPing:        "nping",
	domain.ToolNmap:        "nmap",
	domain.ToolPageLinks:   "pagelinks",
	domain.ToolReverseIP:   "reverseiplookup",
	domain.ToolSubnet:      "subnetcalc",
}

// Auto-registro de la source al importar el package
func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "HackerTarget free API (all network tools)",
			Tools:       domain.AllTools,
			Priority:    10,
			Endpoint:    defaultURL,
		},
	)
}

// HackerTarget consulta api.hackertarget.com.
type HackerTarget struct {
	common.BaseHTTPSource
	apiKey string
}

// New crea el provider. cfg.Custom["api_key"] se envía como apikey si existe.
func New(cfg ports.SourceConfig, logger logx.Logger) *HackerTarget {
	return &HackerTarget{
		BaseHTTPSource: common.NewBaseHTTPSource(sourceName, domain.AllTools, defaultURL, cfg, logger),
		apiKey:         registry.GetStringConfig(cfg.Custom, "api_key", ""),
	}
}

// Lookup implements ports.Source
func (h *HackerTarget) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	endpoint, ok := endpoints[tool]
	if !ok {
		return "", h.Unsupported(tool)
	}
	defer h.Elapsed(tool, target, time.Now())

	query := url.Values{"q": {target}}
	if h.apiKey != "" {
		query.Set("apikey", h.apiKey)
	}

	text, err := h.Client.GetText(ctx, h.Endpoint(endpoint)+"/?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	// la API responde 200 con el error en el cuerpo
	if strings.HasPrefix(text, "error") {
		return "", errors.New(strings.TrimSpace(text))
	}
	if strings.HasPrefix(text, "API count exceeded") {
		return "", errors.Wrap(errors.ErrRateLimit, strings.TrimSpace(text))
	}
	return text, nil
}
