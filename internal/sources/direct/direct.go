// Package direct implements the tools that talk to the target itself:
// response headers, HTTP "ping" and page link extraction.
package direct

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sort"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/sources/common"
)

const (
	sourceName = "direct"

	pingCount   = 4
	pingTimeout = 5 * time.Second
)

var tools = []domain.Tool{domain.ToolHTTPHeaders, domain.ToolPing, domain.ToolPageLinks}

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "Direct requests to the target (headers, ping, links)",
			Tools:       tools,
			Priority:    9,
		},
	)
}

// Direct hace las peticiones contra el propio objetivo.
type Direct struct {
	client      *httpclient.Client
	pingClient  *httpclient.Client
	pingCount   int
	pingTimeout time.Duration
	logger      logx.Logger
}

// New crea el provider. Los certificados no se verifican: se inspecciona
// el servidor, no se confía en él.
func New(cfg ports.SourceConfig, logger logx.Logger) *Direct {
	if logger == nil {
		logger = logx.NewDiscard()
	}
	logger = logger.With("source", sourceName)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pt := registry.GetDurationConfig(cfg.Custom, "ping_timeout", pingTimeout)

	base := httpclient.Config{
		Timeout:            timeout,
		MaxRetries:         0,
		InsecureSkipVerify: true,
		ProxyURL:           registry.GetStringConfig(cfg.Custom, common.ProxyKey, ""),
	}
	return &Direct{
		client:      httpclient.New(base, logger),
		pingClient:  httpclient.New(httpclient.ProbeConfig(pt), logger),
		pingCount:   registry.GetIntConfig(cfg.Custom, "ping_count", pingCount),
		pingTimeout: pt,
		logger:      logger,
	}
}

// Name implements ports.Source
func (d *Direct) Name() string { return sourceName }

// Tools implements ports.Source
func (d *Direct) Tools() []domain.Tool { return tools }

// Lookup implements ports.Source
func (d *Direct) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	u := targetURL(target)
	switch tool {
	case domain.ToolHTTPHeaders:
		return d.headers(ctx, u)
	case domain.ToolPing:
		return d.ping(ctx, target, u), nil
	case domain.ToolPageLinks:
		return d.pageLinks(ctx, u)
	default:
		return "", errors.Wrapf(errors.ErrInvalidInput, "%s does not support %s", sourceName, tool)
	}
}

// targetURL usa el objetivo tal cual si ya trae esquema; si no, https.
func targetURL(target string) string {
	if strings.HasPrefix(target, "http") {
		return target
	}
	return "https://" + target
}

func (d *Direct) headers(ctx context.Context, u string) (string, error) {
	resp, err := d.client.Head(ctx, u)
	if err != nil {
		return "", err
	}
	if len(resp.Header) == 0 {
		return "", errors.Wrap(errors.ErrInvalidResponse, "no headers returned")
	}

	lines := make([]string, 0, len(resp.Header))
	for key, values := range resp.Header {
		lines = append(lines, strings.ToLower(key)+": "+strings.Join(values, ", "))
	}
	sort.Strings(lines)

	return fmt.Sprintf("HTTP/%d %s\n\n%s\n", resp.StatusCode, http.StatusText(resp.StatusCode), strings.Join(lines, "\n")), nil
}

// ping mide el tiempo de ida y vuelta de varias peticiones. Un error que
// llega antes del timeout sigue contando como respuesta del servidor.
func (d *Direct) ping(ctx context.Context, target, u string) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Ping %s:\n\n", target)

	var times []int64
	for i := 1; i <= d.pingCount; i++ {
		start := time.Now()
		resp, err := d.pingClient.Get(ctx, fmt.Sprintf("%s%s_ping=%d", u, sep, rand.Int64()), nil)
		elapsed := time.Since(start)
		if resp != nil {
			resp.Body.Close()
		}

		if err != nil && (errors.IsTimeout(err) || errors.IsCanceled(err) || elapsed >= d.pingTimeout) {
			fmt.Fprintf(&sb, "Reply %d: timeout\n", i)
			continue
		}
		ms := elapsed.Milliseconds()
		times = append(times, ms)
		fmt.Fprintf(&sb, "Reply %d: time=%dms\n", i, ms)
	}

	minMS, maxMS, avgMS := stats(times)
	loss := 100
	if d.pingCount > 0 {
		loss = (d.pingCount - len(times)) * 100 / d.pingCount
	}
	fmt.Fprintf(&sb, "\nMin: %dms  Max: %dms  Avg: %dms  Loss: %d%%\n", minMS, maxMS, avgMS, loss)
	return sb.String()
}

func stats(times []int64) (minMS, maxMS, avgMS int64) {
	if len(times) == 0 {
		return 0, 0, 0
	}
	minMS, maxMS = times[0], times[0]
	var sum int64
	for _, t := range times {
		minMS = min(minMS, t)
		maxMS = max(maxMS, t)
		sum += t
	}
	return minMS, maxMS, sum / int64(len(times))
}
