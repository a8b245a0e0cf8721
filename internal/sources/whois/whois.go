// Package whois implements a port-43 WHOIS provider on top of
// github.com/likexian/whois, summarised with github.com/likexian/whois-parser.
package whois

import (
	"context"
	"fmt"
	"strings"
	"time"

	likewhois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
	"webnmap/internal/platform/validator"
)

const sourceName = "whois"

func init() {
	registry.Global().MustRegister(sourceName,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Description: "Direct WHOIS (port 43) with parsed summary",
			Tools:       []domain.Tool{domain.ToolWhois},
			Priority:    6,
		},
	)
}

// queryFunc hace la consulta WHOIS en bruto.
type queryFunc func(ctx context.Context, target string) (string, error)

// Whois implements ports.Source
type Whois struct {
	query  queryFunc
	logger logx.Logger
}

// New crea el provider. cfg.Custom["server"] fuerza un servidor WHOIS
// concreto en lugar de seguir las referencias de IANA.
func New(cfg ports.SourceConfig, logger logx.Logger) *Whois {
	if logger == nil {
		logger = logx.NewDiscard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	server := registry.GetStringConfig(cfg.Custom, "server", "")

	client := likewhois.NewClient().SetTimeout(timeout)
	return &Whois{
		query:  clientQuery(client, server),
		logger: logger.With("source", sourceName),
	}
}

// clientQuery adapta el cliente (sin contexto) a una consulta cancelable.
func clientQuery(client *likewhois.Client, server string) queryFunc {
	return func(ctx context.Context, target string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		type reply struct {
			text string
			err  error
		}
		ch := make(chan reply, 1)
		go func() {
			var servers []string
			if server != "" {
				servers = []string{server}
			}
			text, err := client.Whois(target, servers...)
			ch <- reply{text, err}
		}()

		select {
		case r := <-ch:
			return r.text, r.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Name implements ports.Source
func (w *Whois) Name() string { return sourceName }

// Tools implements ports.Source
func (w *Whois) Tools() []domain.Tool { return []domain.Tool{domain.ToolWhois} }

// Lookup implements ports.Source
func (w *Whois) Lookup(ctx context.Context, tool domain.Tool, target string) (string, error) {
	if tool != domain.ToolWhois {
		return "", errors.Wrapf(errors.ErrInvalidInput, "%s does not support %s", sourceName, tool)
	}

	target = validator.NormalizeHost(target)
	raw, err := w.query(ctx, target)
	if err != nil {
		return "", errors.Wrapf(err, "whois %s", target)
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if raw == "" {
		return "", errors.Wrap(errors.ErrInvalidResponse, "empty whois response")
	}

	if validator.IsDottedQuad(target) {
		return raw + "\n", nil
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		if errors.Is(err, whoisparser.ErrNotFoundDomain) {
			return "", errors.Wrapf(errors.ErrNotFound, "whois: %s is not registered", target)
		}
		w.logger.Debug("whois summary unavailable", "target", target, "error", err.Error())
		return raw + "\n", nil
	}
	return summary(info) + "\n" + raw + "\n", nil
}

// summary renderiza los campos principales del registro parseado.
func summary(info whoisparser.WhoisInfo) string {
	var sb strings.Builder
	line := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", key, value)
		}
	}

	if d := info.Domain; d != nil {
		line("Domain", d.Domain)
		line("Created", d.CreatedDate)
		line("Updated", d.UpdatedDate)
		line("Expires", d.ExpirationDate)
		line("Status", strings.Join(d.Status, ", "))
		line("Name Servers", strings.Join(d.NameServers, ", "))
		if d.DNSSec {
			line("DNSSEC", "signed")
		} else {
			line("DNSSEC", "unsigned")
		}
	}
	if r := info.Registrar; r != nil {
		line("Registrar", r.Name)
		line("Registrar URL", r.ReferralURL)
	}
	if r := info.Registrant; r != nil {
		line("Registrant", strings.TrimSpace(r.Organization+" "+r.Country))
		line("Registrant Email", r.Email)
	}
	return sb.String()
}
