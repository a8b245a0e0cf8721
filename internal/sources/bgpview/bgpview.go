// Package bgpview implements the BGPView ASN provider.
package bgpview

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/platform/validator"
	"webnmap/internal/sources/common"
)

const (
	sourceName = "bgpview"
	defaultURL = "https://api.bgpview.io"
)

var tools = []domain.Tool{domain.ToolASN}

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "BGPView prefix and ASN data",
			Tools:       tools,
			Priority:    7,
			Endpoint:    defaultURL,
		},
	)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type ipData struct {
	IP       string `json:"ip"`
	Prefixes []struct {
		Prefix string `json:"prefix"`
		ASN    struct {
			ASN         int    `json:"asn"`
			Name        string `json:"name"`
			Description string `json:"description"`
			CountryCode string `json:"country_code"`
		} `json:"asn"`
	} `json:"prefixes"`
}

// BGPView consulta api.bgpview.io.
type BGPView struct {
	common.BaseHTTPSource
}

// New crea el provider.
func New(cfg ports.SourceConfig, logger logx.Logger) *BGPView {
	return &BGPView{BaseHTTPSource: common.NewBaseHTTPSource(sourceName, tools, defaultURL, cfg, logger)}
}

// Lookup implements ports.Source. Una IP devuelve sus prefijos anunciados;
// cualquier otro término se resuelve con el endpoint de búsqueda.
func (b *BGPView) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	if tool != domain.ToolASN {
		return "", b.Unsupported(tool)
	}
	defer b.Elapsed(tool, target, time.Now())

	isIP := validator.IsDottedQuad(target)
	endpoint := b.Endpoint("search") + "?" + url.Values{"query_term": {target}}.Encode()
	if isIP {
		endpoint = b.Endpoint("ip/" + target)
	}

	var env envelope
	if err := b.Client.DecodeJSON(ctx, endpoint, &env); err != nil {
		return "", err
	}
	if env.Status != "ok" {
		return "", errors.Wrapf(errors.ErrInvalidResponse, "bgpview status %q", env.Status)
	}

	if !isIP {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return "", errors.Wrap(errors.ErrNotFound, "No ASN data found")
		}
		pretty, err := json.MarshalIndent(env.Data, "", "  ")
		if err != nil {
			return "", errors.Wrapf(errors.ErrInvalidResponse, "decode bgpview data: %v", err)
		}
		return string(pretty), nil
	}

	var data ipData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", errors.Wrapf(errors.ErrInvalidResponse, "decode bgpview data: %v", err)
	}
	if len(data.Prefixes) == 0 {
		return "", errors.Wrap(errors.ErrNotFound, "No ASN data found")
	}

	var out common.Lines
	for _, p := range data.Prefixes {
		out.Add("IP", data.IP).
			Add("Prefix", p.Prefix).
			Add("ASN", p.ASN.ASN).
			Add("AS Name", p.ASN.Name).
			Add("Description", p.ASN.Description).
			Add("Country", p.ASN.CountryCode).
			Raw("\n")
	}
	return out.String(), nil
}
