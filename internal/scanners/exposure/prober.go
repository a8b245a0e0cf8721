// Package exposure looks for sensitive files left reachable on a web server
// and flags server versions with known issues.
package exposure

import (
	"context"
	"net/http"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
)

// DefaultTimeout por comprobación.
const DefaultTimeout = time.Second

// SensitivePaths son las rutas que se comprueban, en orden.
var SensitivePaths = []string{
	"/.env",
	"/.git/HEAD",
	"/wp-config.php.bak",
	"/config.php.bak",
	"/.vscode/sftp.json",
	"/server-status",
}

// Prober implements ports.ExposureProber
type Prober struct {
	client  *httpclient.Client
	scheme  string
	timeout time.Duration
	logger  logx.Logger
}

var _ ports.ExposureProber = (*Prober)(nil)

// New crea el prober.
func New(timeout time.Duration, logger logx.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logx.NewDiscard()
	}
	logger = logger.With("component", "exposure")
	return &Prober{
		client:  httpclient.New(httpclient.ProbeConfig(timeout), logger),
		scheme:  "https",
		timeout: timeout,
		logger:  logger,
	}
}

// Probe hace HEAD sobre cada ruta sensible; un 200 es un hallazgo HIGH.
func (p *Prober) Probe(ctx context.Context, host string) []domain.Finding {
	findings := make([]domain.Finding, 0)
	for _, path := range SensitivePaths {
		if ctx.Err() != nil {
			break
		}
		if p.reachable(ctx, p.scheme+"://"+host+path) {
			findings = append(findings, domain.Finding{
				Type:     "Exposed File",
				Severity: domain.SeverityHigh,
				Detail:   "Found reachable file: " + path,
			})
		}
	}
	if len(findings) > 0 {
		p.logger.Info("exposed files found", "host", host, "count", len(findings))
	}
	return findings
}

func (p *Prober) reachable(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.client.Head(ctx, url)
	return err == nil && resp.StatusCode == http.StatusOK
}

// versionRule marca una cabecera Server que contiene un patrón.
type versionRule struct {
	pattern string
	finding domain.Finding
}

var versionRules = []versionRule{
	{"Apache/2.4.49", domain.Finding{Type: "CVE-2021-41773", Severity: domain.SeverityCritical, Detail: "Apache Path Traversal"}},
	{"PHP/5.", domain.Finding{Type: "EOL Software", Severity: domain.SeverityMedium, Detail: "PHP 5.x is End of Life"}},
}

// VersionVulns devuelve los hallazgos de versiones conocidas en la cabecera Server.
func VersionVulns(server string) []domain.Finding {
	out := make([]domain.Finding, 0)
	if server == "" {
		return out
	}
	for _, rule := range versionRules {
		if strings.Contains(server, rule.pattern) {
			out = append(out, rule.finding)
		}
	}
	return out
}
