// Package common provides shared abstractions for source implementations.
package common

import (
	"fmt"
	"strings"
	"time"

	"webnmap/internal/core/domain"
	"webnmap/internal/core/ports"
	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/httpclient"
	"webnmap/internal/platform/logx"
	"webnmap/internal/platform/registry"
)

// NotAvailable es el texto para campos ausentes en las respuestas.
const NotAvailable = "N/A"

// BaseHTTPSource agrupa lo que comparten los providers HTTP: nombre,
// herramientas declaradas, cliente con retry/rate limit y endpoint.
//
// Usage:
//  1. Embed BaseHTTPSource en el struct del provider
//  2. Construirlo con NewBaseHTTPSource desde la factory
//  3. Implementar Lookup usando Client y Endpoint
type BaseHTTPSource struct {
	name    string
	tools   []domain.Tool
	baseURL string

	Client *httpclient.Client
	Logger logx.Logger
}

// ProxyKey es la clave de SourceConfig.Custom con el proxy de salida.
const ProxyKey = "proxy_url"

// NewBaseHTTPSource crea la base con la configuración del provider.
// cfg.BaseURL reemplaza defaultURL cuando no está vacío.
func NewBaseHTTPSource(name string, tools []domain.Tool, defaultURL string, cfg ports.SourceConfig, logger logx.Logger) BaseHTTPSource {
	if logger == nil {
		logger = logx.NewDiscard()
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	if cfg.Retries >= 0 {
		httpCfg.MaxRetries = cfg.Retries
	}
	httpCfg.RateLimit = cfg.RateLimit
	httpCfg.ProxyURL = registry.GetStringConfig(cfg.Custom, ProxyKey, "")

	baseURL := defaultURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	scoped := logger.With("source", name)
	return BaseHTTPSource{
		name:    name,
		tools:   tools,
		baseURL: strings.TrimRight(baseURL, "/"),
		Client:  httpclient.New(httpCfg, scoped),
		Logger:  scoped,
	}
}

// Name implements ports.Source
func (b *BaseHTTPSource) Name() string { return b.name }

// Tools implements ports.Source
func (b *BaseHTTPSource) Tools() []domain.Tool { return b.tools }

// Endpoint une el endpoint base con path.
func (b *BaseHTTPSource) Endpoint(path string) string {
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Unsupported es el error para una herramienta no declarada.
func (b *BaseHTTPSource) Unsupported(tool domain.Tool) error {
	return errors.Wrapf(errors.ErrInvalidInput, "%s does not support %s", b.name, tool)
}

// Elapsed registra la duración de una consulta a nivel debug.
func (b *BaseHTTPSource) Elapsed(tool domain.Tool, target string, start time.Time) {
	b.Logger.Debug("lookup finished", "tool", tool, "target", target, "elapsed", time.Since(start).String())
}

// Lines construye la salida "Clave: valor" que devuelven los providers.
type Lines struct {
	sb strings.Builder
}

// Add añade una línea; valores vacíos o nil se muestran como N/A.
func (l *Lines) Add(key string, value any) *Lines {
	fmt.Fprintf(&l.sb, "%s: %s\n", key, Value(value))
	return l
}

// Raw añade texto sin formato.
func (l *Lines) Raw(s string) *Lines {
	l.sb.WriteString(s)
	return l
}

// String retorna el texto acumulado.
func (l *Lines) String() string {
	return l.sb.String()
}

// Value formatea un campo de respuesta JSON.
func Value(v any) string {
	switch val := v.(type) {
	case nil:
		return NotAvailable
	case string:
		if val == "" {
			return NotAvailable
		}
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

// FirstNonEmpty devuelve el primer valor no vacío o N/A.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return NotAvailable
}
