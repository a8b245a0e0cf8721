// Package ipwhois implements the ipwhois.app provider (whois and geoip).
package ipwhois

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/sources/common"
)

const (
	sourceName = "ipwhois"
	defaultURL = "https://ipwhois.app/json"
)

var tools = []domain.Tool{domain.ToolWhois, domain.ToolGeoIP}

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "ipwhois.app IP whois and geolocation",
			Tools:       tools,
			Priority:    7,
			Endpoint:    defaultURL,
		},
	)
}

type response struct {
	Success     *bool   `json:"success"`
	Message     string  `json:"message"`
	IP          string  `json:"ip"`
	Type        string  `json:"type"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	ASN         string  `json:"asn"`
}

// IPWhois consulta ipwhois.app.
type IPWhois struct {
	common.BaseHTTPSource
}

// New crea el provider.
func New(cfg ports.SourceConfig, logger logx.Logger) *IPWhois {
	return &IPWhois{BaseHTTPSource: common.NewBaseHTTPSource(sourceName, tools, defaultURL, cfg, logger)}
}

// Lookup implements ports.Source
func (p *IPWhois) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	if tool != domain.ToolWhois && tool != domain.ToolGeoIP {
		return "", p.Unsupported(tool)
	}
	defer p.Elapsed(tool, target, time.Now())

	var resp response
	if err := p.Client.DecodeJSON(ctx, p.Endpoint(url.PathEscape(target)), &resp); err != nil {
		return "", err
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "lookup failed"
		}
		return "", errors.Wrap(errors.ErrInvalidResponse, msg)
	}

	var out common.Lines
	out.Add("IP", resp.IP)
	if tool == domain.ToolWhois {
		out.Add("Type", resp.Type).
			Add("Country", fmt.Sprintf("%s (%s)", common.Value(resp.Country), common.Value(resp.CountryCode))).
			Add("Region", resp.Region).
			Add("City", resp.City).
			Add("ISP", resp.ISP).
			Add("Org", resp.Org).
			Add("ASN", resp.ASN)
		return out.String(), nil
	}

	out.Add("Country", resp.Country).
		Add("Region", resp.Region).
		Add("City", resp.City).
		Add("Latitude", resp.Latitude).
		Add("Longitude", resp.Longitude).
		Add("Timezone", resp.Timezone).
		Add("ISP", resp.ISP).
		Add("Org", resp.Org).
		Add("ASN", resp.ASN)
	return out.String(), nil
}
