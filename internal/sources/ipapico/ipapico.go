// Package ipapico implements the ipapi.co geolocation provider.
package ipapico

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
	sourceName = "ipapico"
	defaultURL = "https://ipapi.co"
)

var tools = []domain.Tool{domain.ToolGeoIP}

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "ipapi.co geolocation",
			Tools:       tools,
			Priority:    6,
			Endpoint:    defaultURL,
		},
	)
}

type response struct {
	Error       bool    `json:"error"`
	Reason      string  `json:"reason"`
	IP          string  `json:"ip"`
	CountryName string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Postal      string  `json:"postal"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	Org         string  `json:"org"`
	ASN         string  `json:"asn"`
}

// IPAPICo consulta ipapi.co.
type IPAPICo struct {
	common.BaseHTTPSource
}

// New crea el provider.
func New(cfg ports.SourceConfig, logger logx.Logger) *IPAPICo {
	return &IPAPICo{BaseHTTPSource: common.NewBaseHTTPSource(sourceName, tools, defaultURL, cfg, logger)}
}

// Lookup implements ports.Source
func (p *IPAPICo) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	if tool != domain.ToolGeoIP {
		return "", p.Unsupported(tool)
	}
	defer p.Elapsed(tool, target, time.Now())

	var resp response
	if err := p.Client.DecodeJSON(ctx, p.Endpoint(url.PathEscape(target)+"/json/"), &resp); err != nil {
		return "", err
	}
	if resp.Error {
		return "", errors.Wrap(errors.ErrInvalidResponse, common.FirstNonEmpty(resp.Reason, "lookup failed"))
	}

	var out common.Lines
	out.Add("IP", resp.IP).
		Add("Country", fmt.Sprintf("%s (%s)", common.Value(resp.CountryName), common.Value(resp.CountryCode))).
		Add("Region", resp.Region).
		Add("City", resp.City).
		Add("Postal", resp.Postal).
		Add("Latitude", resp.Latitude).
		Add("Longitude", resp.Longitude).
		Add("Timezone", resp.Timezone).
		Add("ISP", resp.Org).
		Add("ASN", resp.ASN)
	return out.String(), nil
}
