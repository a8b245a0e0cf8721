package doh

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/miekg/dns"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/sources/common"
)

const (
	cloudflareName = "cloudflare-doh"
	cloudflareURL  = "https://cloudflare-dns.com"

	dnsMessageType = "application/dns-message"
)

var cloudflareTypes = []string{"A", "AAAA", "MX", "NS", "TXT", "CNAME"}

func init() {
	registry.Global().MustRegister(cloudflareName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return NewCloudflare(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "Cloudflare DNS over HTTPS (RFC 8484 wire format)",
			Tools:       tools,
			Priority:    7,
			Endpoint:    cloudflareURL,
		},
	)
}

// Cloudflare resuelve con mensajes DNS binarios sobre GET /dns-query?dns=.
type Cloudflare struct {
	common.BaseHTTPSource
	types []string
}

// NewCloudflare crea el provider.
func NewCloudflare(cfg ports.SourceConfig, logger logx.Logger) *Cloudflare {
	return &Cloudflare{
		BaseHTTPSource: common.NewBaseHTTPSource(cloudflareName, tools, cloudflareURL, cfg, logger),
		types:          registry.GetSliceConfig(cfg.Custom, "record_types", cloudflareTypes),
	}
}

// Resolve implements ports.DNSResolver
func (c *Cloudflare) Resolve(ctx context.Context, name string, qtype uint16) ([]domain.DNSRecord, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(name), qtype)
	query.Id = 0 // RFC 8484 4.1
	packed, err := query.Pack()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "pack query for %s: %v", name, err)
	}

	u := c.Endpoint("dns-query") + "?dns=" + base64.RawURLEncoding.EncodeToString(packed)
	resp, err := c.Client.Get(ctx, u, map[string]string{"Accept": dnsMessageType})
	if err != nil {
		return nil, err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	answer := new(dns.Msg)
	if err := answer.Unpack(body); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "unpack answer for %s: %v", name, err)
	}
	ok, err := rcodeErr(answer.Rcode)
	if err != nil || !ok {
		return []domain.DNSRecord{}, err
	}

	records := make([]domain.DNSRecord, 0, len(answer.Answer))
	for _, rr := range answer.Answer {
		records = append(records, fromRR(rr))
	}
	c.Logger.Debug("resolved", "name", name, "type", dns.TypeToString[qtype], "answers", len(records))
	return records, nil
}

// Lookup implements ports.Source
func (c *Cloudflare) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	defer c.Elapsed(tool, target, time.Now())
	switch tool {
	case domain.ToolDNS:
		return dnsReport(ctx, c.Resolve, target, c.types)
	case domain.ToolReverseDNS:
		return ptrReport(ctx, c.Resolve, target)
	default:
		return "", c.Unsupported(tool)
	}
}
