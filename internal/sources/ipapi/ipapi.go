// Package ipapi implements the ip-api.com provider (geoip and asn).
// The free endpoint is plain HTTP only.
package ipapi

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
	sourceName = "ipapi"
	defaultURL = "http://ip-api.com/json"

	geoFields = "status,message,country,countryCode,region,regionName,city,zip,lat,lon,timezone,isp,org,as,asname,reverse,query"
	asnFields = "status,message,as,asname,isp,org,query"
)

var tools = []domain.Tool{domain.ToolGeoIP, domain.ToolASN}

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "ip-api.com geolocation and AS data",
			Tools:       tools,
			Priority:    8,
			RateLimit:   0.75, // 45 req/min en el plan gratuito
			Endpoint:    defaultURL,
		},
	)
}

type response struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Query       string  `json:"query"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	ASName      string  `json:"asname"`
	Reverse     string  `json:"reverse"`
}

// IPAPI consulta ip-api.com.
type IPAPI struct {
	common.BaseHTTPSource
}

// New crea el provider.
func New(cfg ports.SourceConfig, logger logx.Logger) *IPAPI {
	return &IPAPI{BaseHTTPSource: common.NewBaseHTTPSource(sourceName, tools, defaultURL, cfg, logger)}
}

// Lookup implements ports.Source
func (p *IPAPI) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	var fields string
	switch tool {
	case domain.ToolGeoIP:
		fields = geoFields
	case domain.ToolASN:
		fields = asnFields
	default:
		return "", p.Unsupported(tool)
	}
	defer p.Elapsed(tool, target, time.Now())

	endpoint := p.Endpoint(url.PathEscape(target)) + "?" + url.Values{"fields": {fields}}.Encode()
	var resp response
	if err := p.Client.DecodeJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	if resp.Status == "fail" {
		return "", errors.Wrap(errors.ErrInvalidResponse, common.FirstNonEmpty(resp.Message, "lookup failed"))
	}

	var out common.Lines
	out.Add("IP", resp.Query)
	if tool == domain.ToolASN {
		out.Add("AS", resp.AS).
			Add("AS Name", resp.ASName).
			Add("ISP", resp.ISP).
			Add("Org", resp.Org)
		return out.String(), nil
	}

	out.Add("Country", fmt.Sprintf("%s (%s)", common.Value(resp.Country), common.Value(resp.CountryCode))).
		Add("Region", fmt.Sprintf("%s (%s)", common.Value(resp.RegionName), common.Value(resp.Region))).
		Add("City", resp.City).
		Add("ZIP", resp.Zip).
		Add("Latitude", resp.Lat).
		Add("Longitude", resp.Lon).
		Add("Timezone", resp.Timezone).
		Add("ISP", resp.ISP).
		Add("Org", resp.Org).
		Add("AS", resp.AS).
		Add("AS Name", resp.ASName).
		Add("Reverse DNS", resp.Reverse)
	return out.String(), nil
}
