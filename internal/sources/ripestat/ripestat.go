// Package ripestat implements the RIPEstat traceroute provider.
package ripestat

import (
	"context"
	"encoding/json"
	"fmt"
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
	sourceName = "ripestat"
	defaultURL = "https://stat.ripe.net/data"
)

var tools = []domain.Tool{domain.ToolTraceroute}

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "RIPEstat traceroute data",
			Tools:       tools,
			Priority:    6,
			Endpoint:    defaultURL,
		},
	)
}

type response struct {
	Data *struct {
		Result json.RawMessage `json:"result"`
	} `json:"data"`
}

type hop struct {
	From string   `json:"from"`
	RTT  *float64 `json:"rtt"`
}

// RIPEStat consulta stat.ripe.net.
type RIPEStat struct {
	common.BaseHTTPSource
}

// New crea el provider.
func New(cfg ports.SourceConfig, logger logx.Logger) *RIPEStat {
	return &RIPEStat{BaseHTTPSource: common.NewBaseHTTPSource(sourceName, tools, defaultURL, cfg, logger)}
}

// Lookup implements ports.Source
func (r *RIPEStat) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	if tool != domain.ToolTraceroute {
		return "", r.Unsupported(tool)
	}
	defer r.Elapsed(tool, target, time.Now())

	endpoint := r.Endpoint("traceroute/data.json") + "?" + url.Values{"resource": {target}}.Encode()
	var resp response
	if err := r.Client.DecodeJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	if resp.Data == nil || len(resp.Data.Result) == 0 || string(resp.Data.Result) == "null" {
		return "", errors.Wrap(errors.ErrNotFound, "No traceroute data")
	}

	var hops []hop
	if err := json.Unmarshal(resp.Data.Result, &hops); err != nil {
		// resultados que no son lista se muestran tal cual
		pretty, perr := json.MarshalIndent(resp.Data.Result, "", "  ")
		if perr != nil {
			return "", errors.Wrapf(errors.ErrInvalidResponse, "decode traceroute: %v", err)
		}
		return string(pretty), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Traceroute to %s:\n", target)
	for i, h := range hops {
		from := h.From
		if from == "" {
			from = "*"
		}
		rtt := "?"
		if h.RTT != nil {
			rtt = fmt.Sprintf("%g", *h.RTT)
		}
		fmt.Fprintf(&sb, "%d\t%s\t%s ms\n", i+1, from, rtt)
	}
	return sb.String(), nil
}
