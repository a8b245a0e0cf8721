// Package rdap implements a RDAP (Registration Data Access Protocol) source.
// It serves the whois tool with a text rendering of the RDAP document and
// the orchestrator with a structured registration summary.
package rdap

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/cache"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/platform/validator"
	"webnmap/internal/sources/common"
)

const (
	sourceName = "rdap"

	// rdap.org redirige al servidor RDAP autoritativo
	defaultURL = "https://rdap.org"

	// Cache TTL for RDAP responses (24 hours)
	cacheTTL = 24 * time.Hour
)

// Auto-registro de la source al importar el package
func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "RDAP registration data via the rdap.org bootstrap redirector",
			Tools:       []domain.Tool{domain.ToolWhois},
			Priority:    9,
			Endpoint:    defaultURL,
		},
	)
}

// RDAP implements ports.Source and ports.RegistrationLookup.
type RDAP struct {
	common.BaseHTTPSource
	cache *cache.MemoryCache[*rdapResponse]
}

// New crea la source RDAP con una caché de 1000 documentos.
func New(cfg ports.SourceConfig, logger logx.Logger) *RDAP {
	return &RDAP{
		BaseHTTPSource: common.NewBaseHTTPSource(sourceName, []domain.Tool{domain.ToolWhois}, defaultURL, cfg, logger),
		cache:          cache.New[*rdapResponse](1000),
	}
}

// Lookup implements ports.Source
func (r *RDAP) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	if tool != domain.ToolWhois {
		return "", r.Unsupported(tool)
	}
	defer r.Elapsed(tool, target, time.Now())

	doc, err := r.fetch(ctx, target)
	if err != nil {
		return "", err
	}
	text := renderText(doc)
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrap(errors.ErrInvalidResponse, "Empty RDAP response")
	}
	return text, nil
}

// Registration implements ports.RegistrationLookup
func (r *RDAP) Registration(ctx context.Context, domainName string) (domain.Registration, error) {
	if validator.IsDottedQuad(domainName) {
		return domain.Registration{}, errors.Wrapf(errors.ErrInvalidInput, "registration summary needs a domain, got %q", domainName)
	}
	doc, err := r.fetch(ctx, domainName)
	if err != nil {
		return domain.Registration{}, err
	}
	return summarize(doc), nil
}

// fetch consulta /ip/<ip> o /domain/<eTLD+1>, con caché.
func (r *RDAP) fetch(ctx context.Context, target string) (*rdapResponse, error) {
	path := "domain/" + extractBaseDomain(target)
	if validator.IsDottedQuad(target) {
		path = "ip/" + target
	}

	if cached, ok := r.cache.Get(path); ok {
		r.Logger.Debug("RDAP response found in cache", "path", path)
		return cached, nil
	}

	var doc rdapResponse
	if err := r.Client.DecodeJSON(ctx, r.Endpoint(path), &doc); err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return nil, errors.Wrapf(err, "RDAP HTTP %d", statusErr.Code)
		}
		return nil, errors.Wrapf(err, "RDAP query failed for %s", target)
	}

	r.cache.Set(path, &doc, cacheTTL)
	return &doc, nil
}

// extractBaseDomain extracts the base domain (eTLD+1) from a target value.
// Handles complex TLDs like .co.uk, .com.br using the Public Suffix List.
//
// Examples:
//   - subdomain.example.com -> example.com
//   - test.example.co.uk -> example.co.uk
func extractBaseDomain(target string) string {
	target = validator.NormalizeHost(target)
	eTLDPlusOne, err := publicsuffix.EffectiveTLDPlusOne(target)
	if err != nil {
		// localhost, sufijos públicos sin etiqueta registrable, ...
		return target
	}
	return eTLDPlusOne
}
