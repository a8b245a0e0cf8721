// Package crtsh implements the certificate transparency searcher used by the
// subdomain enumerator.
package crtsh

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
)

const defaultURL = "https://crt.sh"

// certRecord es la parte del JSON de crt.sh que usamos.
type certRecord struct {
	IssuerName string `json:"issuer_name"`
	CommonName string `json:"common_name"`
	NameValue  string `json:"name_value"`
	NotBefore  string `json:"not_before"`
	NotAfter   string `json:"not_after"`
}

// CRT consulta la base de datos de crt.sh.
type CRT struct {
	config  httpclient.Config
	client  *httpclient.Client
	baseURL string
	logger  logx.Logger
}

var _ ports.CTSearcher = (*CRT)(nil)

// Option ajusta el cliente HTTP del searcher.
type Option func(*httpclient.Config)

// WithProxy enruta las consultas a crt.sh por un proxy HTTP. Vacío no hace nada.
func WithProxy(proxyURL string) Option {
	return func(cfg *httpclient.Config) {
		cfg.ProxyURL = proxyURL
	}
}

// New crea el searcher. baseURL vacío usa crt.sh.
func New(baseURL string, timeout time.Duration, logger logx.Logger, opts ...Option) *CRT {
	if logger == nil {
		logger = logx.NewDiscard()
	}
	if baseURL == "" {
		baseURL = defaultURL
	}

	cfg := httpclient.DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.MaxRetries = 2
	cfg.RetryBackoff = 2 * time.Second
	cfg.RateLimit = 2.0 // ser respetuoso con crt.sh
	for _, opt := range opts {
		opt(&cfg)
	}

	return &CRT{
		config:  cfg,
		client:  httpclient.New(cfg, logger),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("source", "crtsh"),
	}
}

// Search devuelve todos los nombres de los certificados emitidos para
// domain y sus subdominios, sin filtrar. name_value puede contener varios
// nombres separados por \n.
func (c *CRT) Search(ctx context.Context, domain string) ([]string, error) {
	endpoint := c.baseURL + "/?" + url.Values{"q": {"%." + domain}, "output": {"json"}}.Encode()

	body, err := c.client.FetchJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var records []certRecord
	if err := json.Unmarshal(body, &records); err != nil {
		// crt.sh devuelve HTML cuando está saturado
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "crt.sh returned non-JSON body: %v", err)
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		if ctx.Err() != nil {
			return names, ctx.Err()
		}
		for _, name := range strings.Split(record.NameValue, "\n") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	c.logger.Debug("crtsh search finished", "domain", domain, "records", len(records), "names", len(names))
	return names, nil
}
