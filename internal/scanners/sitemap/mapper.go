// Package sitemap reads robots.txt and discovers sitemaps of a site.
package sitemap

import (
	"bufio"
	"context"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
)

// DefaultTimeout de cada petición del mapper.
const DefaultTimeout = 10 * time.Second

// Mapper implements ports.StructureMapper
type Mapper struct {
	client *httpclient.Client
	scheme string
	logger logx.Logger
}

var _ ports.StructureMapper = (*Mapper)(nil)

// New crea el mapper. Los certificados no se verifican.
func New(timeout time.Duration, logger logx.Logger) *Mapper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logx.NewDiscard()
	}
	logger = logger.With("component", "sitemap")
	return &Mapper{
		client: httpclient.New(httpclient.Config{
			Timeout:            timeout,
			MaxRetries:         0,
			InsecureSkipVerify: true,
		}, logger),
		scheme: "https",
		logger: logger,
	}
}

// Analyze descarga https://<host>/robots.txt y extrae Disallow y Sitemap.
// Si no se declara ningún sitemap se comprueba /sitemap.xml directamente.
func (m *Mapper) Analyze(ctx context.Context, host string) domain.SiteStructure {
	base := m.scheme + "://" + host
	result := domain.SiteStructure{
		Robots:     domain.RobotsNotFound,
		Sitemaps:   []string{},
		Disallowed: []string{},
	}

	resp, err := m.client.Get(ctx, base+"/robots.txt", nil)
	switch {
	case err != nil:
		m.logger.Debug("robots.txt unreachable", "host", host, "error", err.Error())
		result.Robots = domain.RobotsError
	case httpclient.CheckStatus(resp) != nil:
		resp.Body.Close()
	default:
		body, rerr := httpclient.ReadBody(resp)
		if rerr != nil {
			result.Robots = domain.RobotsError
			break
		}
		disallowed, sitemaps, perr := parseRobots(string(body))
		if perr != nil {
			m.logger.Debug("robots.txt unreadable", "host", host, "error", perr.Error())
			result.Robots = domain.RobotsError
			break
		}
		result.Robots = domain.RobotsFound
		result.Disallowed, result.Sitemaps = disallowed, sitemaps
	}

	if len(result.Sitemaps) == 0 {
		if head, err := m.client.Head(ctx, base+"/sitemap.xml"); err == nil && httpclient.CheckStatus(head) == nil {
			result.Sitemaps = append(result.Sitemaps, base+"/sitemap.xml")
		}
	}
	return result
}

// parseRobots devuelve las rutas Disallow y los Sitemap declarados. Las
// directivas no distinguen mayúsculas; el valor es lo que sigue a los
// primeros dos puntos. Una línea nunca supera el buffer: el límite es el
// propio cuerpo.
func parseRobots(text string) (disallowed, sitemaps []string, err error) {
	disallowed, sitemaps = []string{}, []string{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), len(text)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "disallow:"):
			disallowed = append(disallowed, value(line))
		case strings.HasPrefix(lower, "sitemap:"):
			sitemaps = append(sitemaps, value(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return disallowed, sitemaps, nil
}

func value(line string) string {
	_, after, _ := strings.Cut(line, ":")
	return strings.TrimSpace(after)
}
